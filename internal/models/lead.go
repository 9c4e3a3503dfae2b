package models

import "time"

// Lead is the durable record of an accepted submission. Once inserted it is
// immutable except for explicit deletion.
type Lead struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Contact
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	// Location
	Zip   string `json:"zip,omitempty"`
	State string `json:"state,omitempty"`

	// Product interest
	ProductInterest string `json:"productInterest,omitempty"`
	BestTime        string `json:"bestTime,omitempty"`
	Message         string `json:"message,omitempty"`

	// Insurance detail (coverage calculator / final-expense quote)
	Gender    string `json:"gender,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Tobacco   string `json:"tobacco,omitempty"`
	Coverage  string `json:"coverage,omitempty"`

	// Agent application
	AgentLicense string `json:"agentLicense,omitempty"`
	Experience   string `json:"experience,omitempty"`

	// Captured request metadata
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Referrer  string `json:"referrer,omitempty"`

	// Attribution
	LandingURL  string `json:"landing_url,omitempty"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
	GCLID       string `json:"gclid,omitempty"`
	FBCLID      string `json:"fbclid,omitempty"`
	ClickID     string `json:"click_id,omitempty"`
}

// LeadFilter narrows lead queries. Zero values mean "no filter".
type LeadFilter struct {
	StartDate       *time.Time
	EndDate         *time.Time
	Email           string
	ProductInterest string
	Limit           int
	Offset          int
}
