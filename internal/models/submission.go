package models

// Submission is the raw lead-form payload as posted by the site. It is a
// closed set of optional field groups (contact, location, product interest,
// insurance detail, agent application) plus security and tracking fields;
// validation enumerates exactly these fields and nothing else.
type Submission struct {
	// Contact (required group)
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Phone     string `json:"phone" validate:"required,usphone"`

	// Location
	Zip   string `json:"zip" validate:"omitempty,uszip"`
	State string `json:"state" validate:"omitempty,len=2,alpha"`

	// Product interest
	ProductInterest string `json:"productInterest" validate:"omitempty,oneof=final-expense mortgage-protection iul other"`
	BestTime        string `json:"bestTime" validate:"omitempty,oneof=morning afternoon evening"`
	Message         string `json:"message" validate:"omitempty,max=2000"`

	// Insurance detail
	Gender    string `json:"gender" validate:"omitempty,oneof=male female"`
	BirthDate string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Tobacco   string `json:"tobacco" validate:"omitempty,oneof=yes no"`
	Coverage  string `json:"coverage" validate:"omitempty,number"`

	// Agent application
	AgentLicense string `json:"agentLicense" validate:"omitempty,max=50"`
	Experience   string `json:"experience" validate:"omitempty,max=500"`

	// Security
	CSRF     string `json:"csrf" validate:"required,min=32"`
	Honeypot string `json:"honeypot" validate:"omitempty,max=0"`

	// Client-recorded form-start time, RFC 3339. Trusted only as a bot
	// heuristic; trivially spoofable and never a security control.
	Timestamp string `json:"timestamp" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`

	// Tracking
	Referrer    string `json:"referrer" validate:"omitempty,url,max=500"`
	LandingURL  string `json:"landing_url" validate:"omitempty,url"`
	UserAgent   string `json:"user_agent" validate:"omitempty,max=500"`
	UTMSource   string `json:"utm_source" validate:"omitempty,max=100"`
	UTMMedium   string `json:"utm_medium" validate:"omitempty,max=100"`
	UTMCampaign string `json:"utm_campaign" validate:"omitempty,max=100"`
	UTMTerm     string `json:"utm_term" validate:"omitempty,max=100"`
	UTMContent  string `json:"utm_content" validate:"omitempty,max=100"`
	GCLID       string `json:"gclid" validate:"omitempty,max=200"`
	FBCLID      string `json:"fbclid" validate:"omitempty,max=200"`
	ClickID     string `json:"click_id" validate:"omitempty,max=200"`
}
