package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
)

const (
	collectionEmailTemplates  = "email_templates"
	collectionGlobalTemplates = "global_email_templates"
	collectionEmailLogs       = "email_logs"
)

type EmailRepository struct {
	templates *mongo.Collection
	globals   *mongo.Collection
	logs      *mongo.Collection
}

func NewEmailRepository(db *mongo.Database) *EmailRepository {
	return &EmailRepository{
		templates: db.Collection(collectionEmailTemplates),
		globals:   db.Collection(collectionGlobalTemplates),
		logs:      db.Collection(collectionEmailLogs),
	}
}

type emailTemplateDoc struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	TemplateType domain.TemplateType `bson:"template_type"`
	Subject      string              `bson:"subject"`
	BodyHTML     string              `bson:"body_html"`
	BodyText     string              `bson:"body_text,omitempty"`
	Variables    []string            `bson:"variables"`
	IsActive     bool                `bson:"is_active"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

type globalTemplateDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	HeaderHTML string             `bson:"header_html"`
	FooterHTML string             `bson:"footer_html"`
	IsActive   bool               `bson:"is_active"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

type emailLogDoc struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	To            string              `bson:"to"`
	RecipientName string              `bson:"recipient_name,omitempty"`
	TemplateType  domain.TemplateType `bson:"template_type"`
	Subject       string              `bson:"subject"`
	Variables     map[string]string   `bson:"variables,omitempty"`
	Status        domain.EmailStatus  `bson:"status"`
	ErrorMessage  string              `bson:"error_message,omitempty"`
	SentAt        *time.Time          `bson:"sent_at,omitempty"`
	RetriedAt     *time.Time          `bson:"retried_at,omitempty"`
	CreatedAt     time.Time           `bson:"created_at"`
}

// TemplateByType returns the active template for the given type. Inactive and
// missing templates are indistinguishable to callers.
func (r *EmailRepository) TemplateByType(ctx context.Context, t domain.TemplateType) (*domain.EmailTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc emailTemplateDoc
	err := r.templates.FindOne(ctx, bson.M{"template_type": t, "is_active": true}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}

	return &domain.EmailTemplate{
		ID:           doc.ID.Hex(),
		TemplateType: doc.TemplateType,
		Subject:      doc.Subject,
		BodyHTML:     doc.BodyHTML,
		BodyText:     doc.BodyText,
		Variables:    doc.Variables,
		IsActive:     doc.IsActive,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

// GlobalTemplate returns the active header/footer wrapper.
func (r *EmailRepository) GlobalTemplate(ctx context.Context) (*domain.GlobalTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc globalTemplateDoc
	err := r.globals.FindOne(ctx, bson.M{"is_active": true}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGlobalTemplateNotFound
		}
		return nil, err
	}

	return &domain.GlobalTemplate{
		ID:         doc.ID.Hex(),
		HeaderHTML: doc.HeaderHTML,
		FooterHTML: doc.FooterHTML,
		IsActive:   doc.IsActive,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

// CreateLog appends one audit row.
func (r *EmailRepository) CreateLog(ctx context.Context, log *domain.EmailLog) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := emailLogDoc{
		To:            log.To,
		RecipientName: log.RecipientName,
		TemplateType:  log.TemplateType,
		Subject:       log.Subject,
		Variables:     log.Variables,
		Status:        log.Status,
		ErrorMessage:  log.ErrorMessage,
		SentAt:        log.SentAt,
		CreatedAt:     log.CreatedAt,
	}

	_, err := r.logs.InsertOne(ctx, doc)
	return err
}

// FailedLogs returns up to limit FAILED rows, oldest first, for the retrier.
func (r *EmailRepository) FailedLogs(ctx context.Context, limit int) ([]*domain.EmailLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := r.logs.Find(ctx, bson.M{"status": domain.EmailFailed, "retried_at": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var logs []*domain.EmailLog
	for cur.Next(ctx) {
		var doc emailLogDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		logs = append(logs, &domain.EmailLog{
			ID:            doc.ID.Hex(),
			To:            doc.To,
			RecipientName: doc.RecipientName,
			TemplateType:  doc.TemplateType,
			Subject:       doc.Subject,
			Variables:     doc.Variables,
			Status:        doc.Status,
			ErrorMessage:  doc.ErrorMessage,
			SentAt:        doc.SentAt,
			CreatedAt:     doc.CreatedAt,
		})
	}
	return logs, cur.Err()
}

// MarkLogRetried stamps a log row as replayed by the retrier.
func (r *EmailRepository) MarkLogRetried(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.logs.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"retried_at": time.Now().UTC()}},
	)
	return err
}

// EnsureIndexes creates lookup indexes for templates and the audit trail.
func (r *EmailRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.templates.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "template_type", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = r.logs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "to", Value: 1}}},
	})
	return err
}
