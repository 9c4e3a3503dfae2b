package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifecarechoice/leadgate/internal/background"
	"github.com/lifecarechoice/leadgate/internal/models"
)

type mockTokenValidator struct {
	ValidateFunc func(ctx context.Context, token, clientID string) bool
}

func (m *mockTokenValidator) Validate(ctx context.Context, token, clientID string) bool {
	return m.ValidateFunc(ctx, token, clientID)
}

type mockLeadInserter struct {
	InsertFunc func(ctx context.Context, lead *models.Lead) (string, error)
}

func (m *mockLeadInserter) Insert(ctx context.Context, lead *models.Lead) (string, error) {
	return m.InsertFunc(ctx, lead)
}

type mockCSVAppender struct {
	AppendFunc func(lead *models.Lead) error
}

func (m *mockCSVAppender) Append(lead *models.Lead) error {
	return m.AppendFunc(lead)
}

type mockNotifier struct {
	configured bool
	NotifyFunc func(ctx context.Context, lead *models.Lead) error
}

func (m *mockNotifier) Configured() bool { return m.configured }
func (m *mockNotifier) Notify(ctx context.Context, lead *models.Lead) error {
	return m.NotifyFunc(ctx, lead)
}

type mockForwarder struct {
	configured  bool
	ForwardFunc func(ctx context.Context, lead *models.Lead) error
}

func (m *mockForwarder) Configured() bool { return m.configured }
func (m *mockForwarder) Forward(ctx context.Context, lead *models.Lead) error {
	return m.ForwardFunc(ctx, lead)
}

type mockTaskQueue struct {
	tasks []background.Task
}

func (m *mockTaskQueue) Enqueue(task background.Task) bool {
	m.tasks = append(m.tasks, task)
	return true
}

type serviceFixture struct {
	service   *LeadService
	tokens    *mockTokenValidator
	inserter  *mockLeadInserter
	appender  *mockCSVAppender
	notifier  *mockNotifier
	forwarder *mockForwarder
	queue     *mockTaskQueue
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		tokens: &mockTokenValidator{
			ValidateFunc: func(ctx context.Context, token, clientID string) bool { return true },
		},
		inserter: &mockLeadInserter{
			InsertFunc: func(ctx context.Context, lead *models.Lead) (string, error) { return lead.ID, nil },
		},
		appender: &mockCSVAppender{
			AppendFunc: func(lead *models.Lead) error { return nil },
		},
		notifier:  &mockNotifier{configured: true, NotifyFunc: func(ctx context.Context, lead *models.Lead) error { return nil }},
		forwarder: &mockForwarder{configured: true, ForwardFunc: func(ctx context.Context, lead *models.Lead) error { return nil }},
		queue:     &mockTaskQueue{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = NewLeadService(
		f.tokens,
		f.inserter,
		f.appender,
		f.notifier,
		f.forwarder,
		f.queue,
		LeadServiceConfig{MinSubmitTime: 3 * time.Second},
		logger,
	)
	return f
}

func validSubmission() *models.Submission {
	return &models.Submission{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane.doe@example.com",
		Phone:     "555-123-4567",
		CSRF:      strings.Repeat("a", 64),
		Timestamp: time.Now().Add(-time.Minute).Format(time.RFC3339),
	}
}

func testMeta() RequestMeta {
	return RequestMeta{
		IPAddress: "203.0.113.10",
		UserAgent: "test-agent",
	}
}

func TestLeadService_Submit_Success(t *testing.T) {
	f := newServiceFixture()

	result, err := f.service.Submit(context.Background(), validSubmission(), testMeta())
	require.NoError(t, err)
	assert.NotEmpty(t, result.LeadID)
	assert.Equal(t, []string{"postgres", "csv"}, result.Stored)
}

func TestLeadService_Submit_EnqueuesDeliveries(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.Submit(context.Background(), validSubmission(), testMeta())
	require.NoError(t, err)

	require.Len(t, f.queue.tasks, 2)
	assert.Equal(t, "email_notification", f.queue.tasks[0].Name)
	assert.Equal(t, "webhook_forward", f.queue.tasks[1].Name)
}

func TestLeadService_Submit_SkipsUnconfiguredDeliveries(t *testing.T) {
	f := newServiceFixture()
	f.notifier.configured = false
	f.forwarder.configured = false

	_, err := f.service.Submit(context.Background(), validSubmission(), testMeta())
	require.NoError(t, err)
	assert.Empty(t, f.queue.tasks)
}

func TestLeadService_Submit_HoneypotRejectsFirst(t *testing.T) {
	f := newServiceFixture()
	tokenChecked := false
	f.tokens.ValidateFunc = func(ctx context.Context, token, clientID string) bool {
		tokenChecked = true
		return true
	}

	sub := validSubmission()
	sub.Honeypot = "filled by a bot"
	sub.CSRF = "" // would otherwise fail the token check

	_, err := f.service.Submit(context.Background(), sub, testMeta())
	assert.ErrorIs(t, err, models.ErrBotDetected)
	assert.False(t, tokenChecked, "honeypot rejects before any other check runs")
}

func TestLeadService_Submit_TooFast(t *testing.T) {
	f := newServiceFixture()

	sub := validSubmission()
	sub.Timestamp = time.Now().Add(-time.Second).Format(time.RFC3339)

	_, err := f.service.Submit(context.Background(), sub, testMeta())
	assert.ErrorIs(t, err, models.ErrTooFast)
}

func TestLeadService_Submit_MissingTimestampSkipsFillTimeCheck(t *testing.T) {
	f := newServiceFixture()

	sub := validSubmission()
	sub.Timestamp = ""

	// Schema validation still requires the timestamp, but the fill-time
	// heuristic itself must not reject.
	_, err := f.service.Submit(context.Background(), sub, testMeta())
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestLeadService_Submit_UnparseableTimestampSkipsFillTimeCheck(t *testing.T) {
	f := newServiceFixture()
	assert.False(t, f.service.tooFast("not a timestamp"))
}

func TestLeadService_Submit_InvalidToken(t *testing.T) {
	f := newServiceFixture()
	f.tokens.ValidateFunc = func(ctx context.Context, token, clientID string) bool { return false }

	_, err := f.service.Submit(context.Background(), validSubmission(), testMeta())
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestLeadService_Submit_EmptyToken(t *testing.T) {
	f := newServiceFixture()
	f.tokens.ValidateFunc = func(ctx context.Context, token, clientID string) bool {
		t.Fatal("validator should not be called with an empty token")
		return false
	}

	sub := validSubmission()
	sub.CSRF = ""

	_, err := f.service.Submit(context.Background(), sub, testMeta())
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestLeadService_Submit_ValidationFailure(t *testing.T) {
	f := newServiceFixture()

	sub := validSubmission()
	sub.Email = "not-an-email"

	_, err := f.service.Submit(context.Background(), sub, testMeta())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "email", ve.Fields[0].Field)
}

func TestLeadService_Submit_StoreFailureDoesNotBlockCSV(t *testing.T) {
	f := newServiceFixture()
	f.inserter.InsertFunc = func(ctx context.Context, lead *models.Lead) (string, error) {
		return "", errors.New("database down")
	}

	result, err := f.service.Submit(context.Background(), validSubmission(), testMeta())
	require.NoError(t, err, "sink failures never surface to the submitter")
	assert.Equal(t, []string{"csv"}, result.Stored)
	assert.NotEmpty(t, result.LeadID)
}

func TestLeadService_Submit_CSVFailureDoesNotBlockStore(t *testing.T) {
	f := newServiceFixture()
	f.appender.AppendFunc = func(lead *models.Lead) error {
		return errors.New("disk full")
	}

	result, err := f.service.Submit(context.Background(), validSubmission(), testMeta())
	require.NoError(t, err)
	assert.Equal(t, []string{"postgres"}, result.Stored)
}

func TestLeadService_Submit_AllSinksFailStillAccepted(t *testing.T) {
	f := newServiceFixture()
	f.inserter.InsertFunc = func(ctx context.Context, lead *models.Lead) (string, error) {
		return "", errors.New("database down")
	}
	f.appender.AppendFunc = func(lead *models.Lead) error {
		return errors.New("disk full")
	}

	result, err := f.service.Submit(context.Background(), validSubmission(), testMeta())
	require.NoError(t, err)
	assert.Empty(t, result.Stored)
}

func TestLeadService_Submit_SanitizesBeforeValidation(t *testing.T) {
	f := newServiceFixture()

	var inserted *models.Lead
	f.inserter.InsertFunc = func(ctx context.Context, lead *models.Lead) (string, error) {
		inserted = lead
		return lead.ID, nil
	}

	sub := validSubmission()
	sub.FirstName = "  <b>Jane</b>  "
	sub.Message = "javascript:alert(1)"

	_, err := f.service.Submit(context.Background(), sub, testMeta())
	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, "bJane/b", inserted.FirstName)
	assert.Equal(t, "alert(1)", inserted.Message)
}

func TestLeadService_Submit_NormalizesStateToUpper(t *testing.T) {
	f := newServiceFixture()

	var inserted *models.Lead
	f.inserter.InsertFunc = func(ctx context.Context, lead *models.Lead) (string, error) {
		inserted = lead
		return lead.ID, nil
	}

	sub := validSubmission()
	sub.State = "ca"

	_, err := f.service.Submit(context.Background(), sub, testMeta())
	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, "CA", inserted.State)
}

func TestLeadService_Submit_CapturesRequestMeta(t *testing.T) {
	f := newServiceFixture()

	var inserted *models.Lead
	f.inserter.InsertFunc = func(ctx context.Context, lead *models.Lead) (string, error) {
		inserted = lead
		return lead.ID, nil
	}

	meta := RequestMeta{
		IPAddress: "203.0.113.10",
		UserAgent: "Mozilla/5.0",
		Referrer:  "https://www.google.com/",
	}

	_, err := f.service.Submit(context.Background(), validSubmission(), meta)
	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, "203.0.113.10", inserted.IPAddress)
	assert.Equal(t, "Mozilla/5.0", inserted.UserAgent)
	assert.Equal(t, "https://www.google.com/", inserted.Referrer)
	assert.False(t, inserted.CreatedAt.IsZero())
}
