package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/ports"
)

const collectionInvitations = "invitations"

type InvitationRepository struct {
	col *mongo.Collection
}

func NewInvitationRepository(db *mongo.Database) *InvitationRepository {
	return &InvitationRepository{col: db.Collection(collectionInvitations)}
}

type invitationDoc struct {
	ID             primitive.ObjectID      `bson:"_id,omitempty"`
	PartnerID      primitive.ObjectID      `bson:"partner_id"`
	PartnerName    string                  `bson:"partner_name"`
	ParentID       primitive.ObjectID      `bson:"parent_id"`
	ParentName     string                  `bson:"parent_name"`
	ParentEmail    string                  `bson:"parent_email"`
	Status         domain.InvitationStatus `bson:"status"`
	CreatedAt      time.Time               `bson:"created_at"`
	ExpiryAt       time.Time               `bson:"expiry_at"`
	ParentActionAt *time.Time              `bson:"parent_action_at,omitempty"`
	DeletedAt      *time.Time              `bson:"deleted_at,omitempty"`
}

func (d *invitationDoc) toDomain() *domain.Invitation {
	return &domain.Invitation{
		ID:             d.ID.Hex(),
		PartnerID:      d.PartnerID.Hex(),
		PartnerName:    d.PartnerName,
		ParentID:       d.ParentID.Hex(),
		ParentName:     d.ParentName,
		ParentEmail:    d.ParentEmail,
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
		ExpiryAt:       d.ExpiryAt,
		ParentActionAt: d.ParentActionAt,
		DeletedAt:      d.DeletedAt,
	}
}

// Create inserts a new invitation document.
func (r *InvitationRepository) Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	partnerOID, err := primitive.ObjectIDFromHex(inv.PartnerID)
	if err != nil {
		return nil, err
	}
	parentOID, err := primitive.ObjectIDFromHex(inv.ParentID)
	if err != nil {
		return nil, err
	}

	doc := invitationDoc{
		PartnerID:   partnerOID,
		PartnerName: inv.PartnerName,
		ParentID:    parentOID,
		ParentName:  inv.ParentName,
		ParentEmail: inv.ParentEmail,
		Status:      inv.Status,
		CreatedAt:   inv.CreatedAt,
		ExpiryAt:    inv.ExpiryAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	created := *inv
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

// FindByID retrieves an invitation by id, including soft-deleted rows so the
// service can distinguish 404 from 410.
func (r *InvitationRepository) FindByID(ctx context.Context, id string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvitationNotFound
	}

	var doc invitationDoc
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// UpdateStatusIfPending atomically flips a PENDING invitation. The status
// guard in the filter makes concurrent accept/reject race-free: only one
// request observes ModifiedCount == 1.
func (r *InvitationRepository) UpdateStatusIfPending(ctx context.Context, id string, status domain.InvitationStatus, actionAt time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrInvitationNotFound
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": domain.InvitationPending, "deleted_at": nil},
		bson.M{"$set": bson.M{"status": status, "parent_action_at": actionAt}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// List returns a page of invitations matching filter and the total count.
func (r *InvitationRepository) List(ctx context.Context, filter ports.ListInvitationsFilter) ([]*domain.Invitation, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	partnerOID, err := primitive.ObjectIDFromHex(filter.PartnerID)
	if err != nil {
		return nil, 0, err
	}

	q := bson.M{"partner_id": partnerOID, "deleted_at": nil}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.ParentName != "" {
		q["parent_name"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.ParentName), Options: "i"}
	}
	dateRange := bson.M{}
	if !filter.DateFrom.IsZero() {
		dateRange["$gte"] = filter.DateFrom
	}
	if !filter.DateTo.IsZero() {
		dateRange["$lte"] = filter.DateTo
	}
	if len(dateRange) > 0 {
		q["created_at"] = dateRange
	}

	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	dir := -1
	if filter.SortAsc {
		dir = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: filter.SortField, Value: dir}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var items []*domain.Invitation
	for cur.Next(ctx) {
		var doc invitationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		items = append(items, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Count returns one statistic bucket.
func (r *InvitationRepository) Count(ctx context.Context, filter ports.CountInvitationsFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	partnerOID, err := primitive.ObjectIDFromHex(filter.PartnerID)
	if err != nil {
		return 0, err
	}

	q := bson.M{"partner_id": partnerOID, "deleted_at": nil}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if !filter.ExpiredBefore.IsZero() {
		q["expiry_at"] = bson.M{"$lt": filter.ExpiredBefore}
	}
	if !filter.ActiveAfter.IsZero() {
		q["expiry_at"] = bson.M{"$gte": filter.ActiveAfter}
	}

	return r.col.CountDocuments(ctx, q)
}

// EnsureIndexes creates the query indexes for the dashboard list.
func (r *InvitationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "partner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "partner_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "parent_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
