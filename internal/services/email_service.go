package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/lifecarechoice/leadgate/internal/models"
)

// Notifier sends the best-effort ops-mailbox notification for an accepted
// lead. Failures are reported to the caller but never to the submitting
// client.
type Notifier interface {
	Notify(ctx context.Context, lead *models.Lead) error
	Configured() bool
}

// AWSSESNotifier sends lead notifications using AWS SES.
type AWSSESNotifier struct {
	sesClient     *ses.Client
	fromAddress   string
	notifyAddress string
	logger        *slog.Logger
}

func NewAWSSESNotifier(region, fromAddress, notifyAddress string, logger *slog.Logger) (*AWSSESNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESNotifier{
		sesClient:     ses.NewFromConfig(cfg),
		fromAddress:   fromAddress,
		notifyAddress: notifyAddress,
		logger:        logger,
	}, nil
}

// Configured reports whether both a sender and a notification mailbox are
// set; with either missing, notifications are silently disabled.
func (s *AWSSESNotifier) Configured() bool {
	return s.fromAddress != "" && s.notifyAddress != ""
}

// Notify emails the ops mailbox a plain-text summary of the lead.
func (s *AWSSESNotifier) Notify(ctx context.Context, lead *models.Lead) error {
	if !s.Configured() {
		return fmt.Errorf("email notifications not configured")
	}

	subject := fmt.Sprintf("New Lead: %s %s - %s",
		lead.FirstName, lead.LastName, productLabel(lead.ProductInterest))

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.notifyAddress},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(buildNotificationBody(lead)),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send lead notification via SES",
			slog.String("lead_id", lead.ID),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("lead notification sent",
		slog.String("lead_id", lead.ID),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}

func productLabel(productInterest string) string {
	if productInterest == "" {
		return "General Inquiry"
	}
	return productInterest
}

func buildNotificationBody(lead *models.Lead) string {
	var b strings.Builder

	b.WriteString("New Lead Submission - Life Care Choice\n")
	b.WriteString("=====================================\n\n")
	b.WriteString("Contact Information:\n")
	b.WriteString("--------------------\n")
	fmt.Fprintf(&b, "Name: %s %s\n", lead.FirstName, lead.LastName)
	fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	fmt.Fprintf(&b, "Phone: %s\n", lead.Phone)
	writeIfSet(&b, "ZIP", lead.Zip)
	writeIfSet(&b, "State", lead.State)
	b.WriteString("\n")
	writeIfSet(&b, "Product Interest", lead.ProductInterest)
	writeIfSet(&b, "Best Time to Call", lead.BestTime)
	if lead.Message != "" {
		fmt.Fprintf(&b, "\nMessage:\n%s\n", lead.Message)
	}
	if lead.Coverage != "" {
		fmt.Fprintf(&b, "Coverage Amount: $%s\n", lead.Coverage)
	}
	writeIfSet(&b, "Tobacco User", lead.Tobacco)
	b.WriteString("\nTracking Information:\n")
	b.WriteString("---------------------\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", lead.CreatedAt.UTC().Format(time.RFC3339))
	writeIfSet(&b, "IP Address", lead.IPAddress)
	writeIfSet(&b, "Source", lead.UTMSource)
	writeIfSet(&b, "Campaign", lead.UTMCampaign)
	writeIfSet(&b, "Google Click ID", lead.GCLID)
	writeIfSet(&b, "Facebook Click ID", lead.FBCLID)
	fmt.Fprintf(&b, "\nLead ID: %s\n", lead.ID)

	return b.String()
}

func writeIfSet(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}
