package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/api/metrics"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/ports"
)

// EmailService renders templates and drives the SMTP transport with a
// bounded linear-backoff retry. Every send leaves an audit trail: a PENDING
// row when the attempt chain starts and a SENT or FAILED row when it ends.
type EmailService struct {
	repo       ports.EmailRepository
	sender     ports.EmailSender
	maxRetries int
	retryDelay time.Duration
	log        zerolog.Logger
	sleep      func(time.Duration)
	now        func() time.Time
}

func NewEmailService(repo ports.EmailRepository, sender ports.EmailSender, maxRetries int, retryDelay time.Duration, log zerolog.Logger) *EmailService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &EmailService{
		repo:       repo,
		sender:     sender,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		log:        log,
		sleep:      time.Sleep,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SendEmail renders and delivers one message. Template problems and missing
// variables fail before any SMTP attempt; transport failures are retried up
// to maxRetries with delays of attempt*retryDelay, then surfaced.
func (s *EmailService) SendEmail(ctx context.Context, input ports.SendEmailInput) error {
	tpl, err := s.repo.TemplateByType(ctx, input.TemplateType)
	if err != nil {
		return err
	}
	global, err := s.repo.GlobalTemplate(ctx)
	if err != nil {
		return err
	}

	subject := input.SubjectOverride
	if subject == "" {
		subject = tpl.Subject
	}

	s.writeLog(ctx, input, subject, domain.EmailPending, "", nil)

	compiled, err := compileEmail(tpl, global, input.Variables, input.SubjectOverride)
	if err != nil {
		return err
	}

	start := s.now()
	lastErr := s.deliver(ctx, input, compiled)
	metrics.EmailSendDuration.WithLabelValues(string(input.TemplateType)).Observe(time.Since(start).Seconds())

	if lastErr != nil {
		s.writeLog(ctx, input, compiled.Subject, domain.EmailFailed, lastErr.Error(), nil)
		metrics.EmailsSentTotal.WithLabelValues(string(input.TemplateType), "failed").Inc()
		return fmt.Errorf("send email: %w", lastErr)
	}

	sentAt := s.now()
	s.writeLog(ctx, input, compiled.Subject, domain.EmailSent, "", &sentAt)
	metrics.EmailsSentTotal.WithLabelValues(string(input.TemplateType), "sent").Inc()
	return nil
}

// deliver runs the attempt chain: one initial try plus up to maxRetries
// retries, sleeping attempt*retryDelay before each retry.
func (s *EmailService) deliver(ctx context.Context, input ports.SendEmailInput, compiled ports.CompiledEmail) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.EmailRetriesTotal.Inc()
			s.sleep(time.Duration(attempt) * s.retryDelay)
		}

		lastErr = s.sender.Send(ctx, input.To, input.RecipientName, compiled)
		if lastErr == nil {
			return nil
		}
		s.log.Warn().Err(lastErr).
			Str("to", input.To).
			Int("attempt", attempt+1).
			Msg("email send attempt failed")
	}
	return lastErr
}

// RetryFailed replays up to limit FAILED sends, oldest first, using the
// variables persisted on each audit row. Returns how many succeeded.
func (s *EmailService) RetryFailed(ctx context.Context, limit int) (int, error) {
	logs, err := s.repo.FailedLogs(ctx, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, l := range logs {
		// Stamp before resending: a failed replay writes its own fresh
		// FAILED row, so the old one must not be picked up twice.
		if err := s.repo.MarkLogRetried(ctx, l.ID); err != nil {
			s.log.Error().Err(err).Str("log_id", l.ID).Msg("failed to mark email log retried")
			continue
		}
		err := s.SendEmail(ctx, ports.SendEmailInput{
			To:              l.To,
			RecipientName:   l.RecipientName,
			TemplateType:    l.TemplateType,
			Variables:       l.Variables,
			SubjectOverride: l.Subject,
		})
		if err != nil {
			s.log.Warn().Err(err).Str("to", l.To).Msg("email retry failed")
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *EmailService) writeLog(ctx context.Context, input ports.SendEmailInput, subject string, status domain.EmailStatus, errMsg string, sentAt *time.Time) {
	entry := &domain.EmailLog{
		To:            input.To,
		RecipientName: input.RecipientName,
		TemplateType:  input.TemplateType,
		Subject:       subject,
		Variables:     input.Variables,
		Status:        status,
		ErrorMessage:  errMsg,
		SentAt:        sentAt,
		CreatedAt:     s.now(),
	}
	// Audit writes never block the send path.
	if err := s.repo.CreateLog(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("to", input.To).Str("status", string(status)).Msg("failed to write email log")
	}
}
