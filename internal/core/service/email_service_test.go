package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubEmailRepo struct {
	templates map[domain.TemplateType]*domain.EmailTemplate
	global    *domain.GlobalTemplate
	logs      []*domain.EmailLog
}

func newStubEmailRepo() *stubEmailRepo {
	return &stubEmailRepo{
		templates: map[domain.TemplateType]*domain.EmailTemplate{
			domain.TemplateParentInvitation: {
				ID:           primitive.NewObjectID().Hex(),
				TemplateType: domain.TemplateParentInvitation,
				Subject:      "Invitation from __PARTNER_NAME__",
				BodyHTML:     "<p>Hi __PARENT_NAME__, __PARTNER_NAME__ invited you.</p>",
				BodyText:     "Hi __PARENT_NAME__",
				Variables:    []string{"PARENT_NAME", "PARTNER_NAME"},
				IsActive:     true,
			},
		},
		global: &domain.GlobalTemplate{
			ID:         primitive.NewObjectID().Hex(),
			HeaderHTML: "<html><body>",
			FooterHTML: "</body></html>",
			IsActive:   true,
		},
	}
}

func (r *stubEmailRepo) TemplateByType(_ context.Context, t domain.TemplateType) (*domain.EmailTemplate, error) {
	tpl, ok := r.templates[t]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	clone := *tpl
	return &clone, nil
}

func (r *stubEmailRepo) GlobalTemplate(_ context.Context) (*domain.GlobalTemplate, error) {
	if r.global == nil {
		return nil, domain.ErrGlobalTemplateNotFound
	}
	clone := *r.global
	return &clone, nil
}

func (r *stubEmailRepo) CreateLog(_ context.Context, log *domain.EmailLog) error {
	clone := *log
	clone.ID = primitive.NewObjectID().Hex()
	r.logs = append(r.logs, &clone)
	return nil
}

func (r *stubEmailRepo) FailedLogs(_ context.Context, limit int) ([]*domain.EmailLog, error) {
	var out []*domain.EmailLog
	for _, l := range r.logs {
		if l.Status != domain.EmailFailed || l.RetriedAt != nil {
			continue
		}
		clone := *l
		out = append(out, &clone)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubEmailRepo) MarkLogRetried(_ context.Context, id string) error {
	for _, l := range r.logs {
		if l.ID == id {
			now := time.Now().UTC()
			l.RetriedAt = &now
			return nil
		}
	}
	return errors.New("log not found")
}

func (r *stubEmailRepo) statuses() []domain.EmailStatus {
	out := make([]domain.EmailStatus, 0, len(r.logs))
	for _, l := range r.logs {
		out = append(out, l.Status)
	}
	return out
}

type stubSender struct {
	failures int // fail this many calls before succeeding
	calls    int
	lastTo   string
	lastName string
	last     ports.CompiledEmail
}

func (s *stubSender) Send(_ context.Context, to, recipientName string, email ports.CompiledEmail) error {
	s.calls++
	s.lastTo = to
	s.lastName = recipientName
	s.last = email
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp: connection refused")
	}
	return nil
}

func newEmailFixture(maxRetries int, delay time.Duration) (*EmailService, *stubEmailRepo, *stubSender, *[]time.Duration) {
	repo := newStubEmailRepo()
	sender := &stubSender{}
	svc := NewEmailService(repo, sender, maxRetries, delay, discardLogger)

	var sleeps []time.Duration
	svc.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return svc, repo, sender, &sleeps
}

func inviteInput() ports.SendEmailInput {
	return ports.SendEmailInput{
		To:            "parent@example.com",
		RecipientName: "Asha Gupta",
		TemplateType:  domain.TemplateParentInvitation,
		Variables: map[string]string{
			"PARENT_NAME":  "Asha",
			"PARTNER_NAME": "Bright Steps Therapy",
		},
	}
}

func statusesEqual(got []domain.EmailStatus, want ...domain.EmailStatus) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// SendEmail
// ---------------------------------------------------------------------------

func TestEmailService_SendEmail_Success(t *testing.T) {
	svc, repo, sender, _ := newEmailFixture(3, time.Second)

	if err := svc.SendEmail(context.Background(), inviteInput()); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}

	if sender.calls != 1 {
		t.Errorf("sender calls = %d, want 1", sender.calls)
	}
	if sender.lastTo != "parent@example.com" || sender.lastName != "Asha Gupta" {
		t.Errorf("recipient = %q <%s>", sender.lastName, sender.lastTo)
	}

	if !statusesEqual(repo.statuses(), domain.EmailPending, domain.EmailSent) {
		t.Errorf("log statuses = %v, want [PENDING SENT]", repo.statuses())
	}
	sent := repo.logs[1]
	if sent.SentAt == nil {
		t.Error("SENT row missing sent_at")
	}
	if sent.Variables["PARENT_NAME"] != "Asha" {
		t.Error("variables not persisted on audit row")
	}
}

func TestEmailService_SendEmail_CompilesAndWraps(t *testing.T) {
	svc, _, sender, _ := newEmailFixture(0, time.Second)

	if err := svc.SendEmail(context.Background(), inviteInput()); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}

	if sender.last.Subject != "Invitation from Bright Steps Therapy" {
		t.Errorf("subject = %q", sender.last.Subject)
	}
	want := "<html><body><p>Hi Asha, Bright Steps Therapy invited you.</p></body></html>"
	if sender.last.HTML != want {
		t.Errorf("html = %q, want %q", sender.last.HTML, want)
	}
	if sender.last.Text != "Hi Asha" {
		t.Errorf("text = %q", sender.last.Text)
	}
}

func TestEmailService_SendEmail_CaseInsensitiveVariables(t *testing.T) {
	svc, _, sender, _ := newEmailFixture(0, time.Second)

	input := inviteInput()
	input.Variables = map[string]string{
		"parent_name":  "Asha",
		"Partner_Name": "Bright Steps Therapy",
	}
	if err := svc.SendEmail(context.Background(), input); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}
	if !strings.Contains(sender.last.HTML, "Hi Asha, Bright Steps Therapy") {
		t.Errorf("lowercase keys not substituted: %q", sender.last.HTML)
	}
}

func TestEmailService_SendEmail_SubjectOverride(t *testing.T) {
	svc, repo, sender, _ := newEmailFixture(0, time.Second)

	input := inviteInput()
	input.SubjectOverride = "Reminder: your invitation"
	if err := svc.SendEmail(context.Background(), input); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}
	if sender.last.Subject != "Reminder: your invitation" {
		t.Errorf("subject = %q", sender.last.Subject)
	}
	if repo.logs[0].Subject != "Reminder: your invitation" {
		t.Errorf("audit subject = %q", repo.logs[0].Subject)
	}
}

func TestEmailService_SendEmail_MissingVariables(t *testing.T) {
	svc, repo, sender, _ := newEmailFixture(3, time.Second)

	input := inviteInput()
	delete(input.Variables, "PARTNER_NAME")
	err := svc.SendEmail(context.Background(), input)

	var missing *domain.MissingVariablesError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingVariablesError, got %v", err)
	}
	if len(missing.Missing) != 1 || missing.Missing[0] != "PARTNER_NAME" {
		t.Errorf("missing = %v", missing.Missing)
	}
	if sender.calls != 0 {
		t.Errorf("sender called %d times on validation failure", sender.calls)
	}
	// The attempt is recorded but never transitions: PENDING only, no FAILED.
	if !statusesEqual(repo.statuses(), domain.EmailPending) {
		t.Errorf("log statuses = %v, want [PENDING]", repo.statuses())
	}
}

func TestEmailService_SendEmail_TemplateNotFound(t *testing.T) {
	svc, repo, sender, _ := newEmailFixture(3, time.Second)

	input := inviteInput()
	input.TemplateType = domain.TemplateWelcome
	if err := svc.SendEmail(context.Background(), input); !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if sender.calls != 0 || len(repo.logs) != 0 {
		t.Error("missing template must fail before any log or send")
	}
}

func TestEmailService_SendEmail_GlobalTemplateNotFound(t *testing.T) {
	svc, repo, sender, _ := newEmailFixture(3, time.Second)
	repo.global = nil

	if err := svc.SendEmail(context.Background(), inviteInput()); !errors.Is(err, domain.ErrGlobalTemplateNotFound) {
		t.Fatalf("expected ErrGlobalTemplateNotFound, got %v", err)
	}
	if sender.calls != 0 || len(repo.logs) != 0 {
		t.Error("missing global template must fail before any log or send")
	}
}

func TestEmailService_SendEmail_RetryThenSuccess(t *testing.T) {
	svc, repo, sender, sleeps := newEmailFixture(3, time.Second)
	sender.failures = 2

	if err := svc.SendEmail(context.Background(), inviteInput()); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}

	if sender.calls != 3 {
		t.Errorf("sender calls = %d, want 3", sender.calls)
	}
	// Linear backoff: attempt n sleeps n*delay before retrying.
	if len(*sleeps) != 2 || (*sleeps)[0] != time.Second || (*sleeps)[1] != 2*time.Second {
		t.Errorf("sleeps = %v, want [1s 2s]", *sleeps)
	}
	if !statusesEqual(repo.statuses(), domain.EmailPending, domain.EmailSent) {
		t.Errorf("log statuses = %v, want [PENDING SENT]", repo.statuses())
	}
}

func TestEmailService_SendEmail_RetriesExhausted(t *testing.T) {
	svc, repo, sender, sleeps := newEmailFixture(2, time.Second)
	sender.failures = 10

	err := svc.SendEmail(context.Background(), inviteInput())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	if sender.calls != 3 { // initial attempt + 2 retries
		t.Errorf("sender calls = %d, want 3", sender.calls)
	}
	if len(*sleeps) != 2 {
		t.Errorf("sleeps = %v, want 2 entries", *sleeps)
	}
	if !statusesEqual(repo.statuses(), domain.EmailPending, domain.EmailFailed) {
		t.Fatalf("log statuses = %v, want [PENDING FAILED]", repo.statuses())
	}
	failed := repo.logs[1]
	if !strings.Contains(failed.ErrorMessage, "connection refused") {
		t.Errorf("error message = %q", failed.ErrorMessage)
	}
}

// ---------------------------------------------------------------------------
// RetryFailed
// ---------------------------------------------------------------------------

func TestEmailService_RetryFailed_Replays(t *testing.T) {
	svc, repo, sender, _ := newEmailFixture(0, time.Second)

	// First send fails and leaves a FAILED audit row.
	sender.failures = 1
	if err := svc.SendEmail(context.Background(), inviteInput()); err == nil {
		t.Fatal("expected first send to fail")
	}

	sent, err := svc.RetryFailed(context.Background(), 10)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}

	// Replay used the persisted variables.
	if !strings.Contains(sender.last.HTML, "Hi Asha, Bright Steps Therapy") {
		t.Errorf("replayed html = %q", sender.last.HTML)
	}
	if sender.lastTo != "parent@example.com" {
		t.Errorf("replayed to = %q", sender.lastTo)
	}

	// The original FAILED row is stamped so the next sweep skips it.
	if repo.logs[1].Status != domain.EmailFailed || repo.logs[1].RetriedAt == nil {
		t.Error("original FAILED row not marked retried")
	}
	if remaining, _ := repo.FailedLogs(context.Background(), 10); len(remaining) != 0 {
		t.Errorf("still %d rows eligible for retry", len(remaining))
	}
}

func TestEmailService_RetryFailed_FailedReplayLeavesFreshRow(t *testing.T) {
	svc, repo, sender, _ := newEmailFixture(0, time.Second)

	sender.failures = 2 // original send and the replay both fail
	if err := svc.SendEmail(context.Background(), inviteInput()); err == nil {
		t.Fatal("expected first send to fail")
	}

	sent, err := svc.RetryFailed(context.Background(), 10)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}

	// PENDING+FAILED from the original, PENDING+FAILED from the replay.
	if !statusesEqual(repo.statuses(), domain.EmailPending, domain.EmailFailed, domain.EmailPending, domain.EmailFailed) {
		t.Fatalf("log statuses = %v", repo.statuses())
	}
	if repo.logs[1].RetriedAt == nil {
		t.Error("original FAILED row not marked retried")
	}
	// Only the fresh FAILED row stays eligible.
	eligible, _ := repo.FailedLogs(context.Background(), 10)
	if len(eligible) != 1 || eligible[0].ID != repo.logs[3].ID {
		t.Errorf("eligible rows = %d", len(eligible))
	}
}

func TestEmailService_RetryFailed_NothingToDo(t *testing.T) {
	svc, _, sender, _ := newEmailFixture(0, time.Second)

	sent, err := svc.RetryFailed(context.Background(), 10)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if sent != 0 || sender.calls != 0 {
		t.Errorf("sent = %d, calls = %d, want 0/0", sent, sender.calls)
	}
}
