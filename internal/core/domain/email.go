package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TemplateType identifies a transactional email template.
type TemplateType string

const (
	TemplateParentInvitation TemplateType = "PARENT_INVITATION"
	TemplateWelcome          TemplateType = "WELCOME"
	TemplatePasswordReset    TemplateType = "PASSWORD_RESET"
)

// EmailStatus is the audit state of a single send attempt chain.
type EmailStatus string

const (
	EmailPending EmailStatus = "PENDING"
	EmailSent    EmailStatus = "SENT"
	EmailFailed  EmailStatus = "FAILED"
)

var ErrTemplateNotFound = errors.New("email template not found")
var ErrGlobalTemplateNotFound = errors.New("global email template not found")

// MissingVariablesError is returned when a template declares variables the
// caller did not provide. The send is aborted before any SMTP attempt.
type MissingVariablesError struct {
	Missing []string
}

func (e *MissingVariablesError) Error() string {
	return fmt.Sprintf("missing required variables: %s", strings.Join(e.Missing, ", "))
}

// EmailTemplate is an admin-managed template. Bodies use __KEY__ placeholders;
// Variables lists the keys a caller must supply.
type EmailTemplate struct {
	ID           string       `json:"id"`
	TemplateType TemplateType `json:"template_type"`
	Subject      string       `json:"subject"`
	BodyHTML     string       `json:"body_html"`
	BodyText     string       `json:"body_text,omitempty"`
	Variables    []string     `json:"variables"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// GlobalTemplate carries the header/footer every outgoing email is wrapped in.
type GlobalTemplate struct {
	ID         string    `json:"id"`
	HeaderHTML string    `json:"header_html"`
	FooterHTML string    `json:"footer_html"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EmailLog is one audit row. Variables are persisted so failed sends can be
// replayed with the exact values of the original attempt.
type EmailLog struct {
	ID            string            `json:"id"`
	To            string            `json:"to"`
	RecipientName string            `json:"recipient_name,omitempty"`
	TemplateType  TemplateType      `json:"template_type"`
	Subject       string            `json:"subject"`
	Variables     map[string]string `json:"variables,omitempty"`
	Status        EmailStatus       `json:"status"`
	ErrorMessage  string            `json:"error_message,omitempty"`
	SentAt        *time.Time        `json:"sent_at,omitempty"`
	RetriedAt     *time.Time        `json:"retried_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
