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
	collectionUsers    = "users"
	collectionPartners = "partners"
	collectionParents  = "parents"
)

type UserRepository struct {
	users    *mongo.Collection
	partners *mongo.Collection
	parents  *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		users:    db.Collection(collectionUsers),
		partners: db.Collection(collectionPartners),
		parents:  db.Collection(collectionParents),
	}
}

type userDoc struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	Name         string              `bson:"name"`
	Email        string              `bson:"email"`
	PasswordHash string              `bson:"password_hash"`
	Role         string              `bson:"role"`
	PartnerID    *primitive.ObjectID `bson:"partner_id,omitempty"`
	ParentID     *primitive.ObjectID `bson:"parent_id,omitempty"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
	DeletedAt    *time.Time          `bson:"deleted_at,omitempty"`
}

func (d *userDoc) toDomain() *domain.User {
	u := &domain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.PartnerID != nil {
		u.PartnerID = d.PartnerID.Hex()
	}
	if d.ParentID != nil {
		u.ParentID = d.ParentID.Hex()
	}
	return u
}

// Create inserts a new user. A duplicate email surfaces as ErrUserExists via
// the unique index on users.email.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

// FindByEmail retrieves a non-deleted user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	err := r.users.FindOne(ctx, bson.M{"email": email, "deleted_at": nil}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a non-deleted user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var doc userDoc
	err = r.users.FindOne(ctx, bson.M{"_id": oid, "deleted_at": nil}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// CreatePartnerProfile inserts a partner profile for a freshly registered user.
func (r *UserRepository) CreatePartnerProfile(ctx context.Context, userID, companyName string) (string, error) {
	return r.insertProfile(ctx, r.partners, userID, bson.M{"company_name": companyName})
}

// CreateParentProfile inserts a parent profile for a freshly registered user.
func (r *UserRepository) CreateParentProfile(ctx context.Context, userID, name string) (string, error) {
	return r.insertProfile(ctx, r.parents, userID, bson.M{"name": name})
}

func (r *UserRepository) insertProfile(ctx context.Context, col *mongo.Collection, userID string, fields bson.M) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", domain.ErrUserNotFound
	}

	now := time.Now().UTC()
	doc := bson.M{"user_id": oid, "created_at": now, "updated_at": now}
	for k, v := range fields {
		doc[k] = v
	}

	res, err := col.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// LinkProfile writes the created profile id back onto the user document.
func (r *UserRepository) LinkProfile(ctx context.Context, userID, role, profileID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	profileOID, err := primitive.ObjectIDFromHex(profileID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	field := "parent_id"
	if role == domain.RolePartner {
		field = "partner_id"
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": userOID},
		bson.M{"$set": bson.M{field: profileOID, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index plus profile lookups.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	for _, col := range []*mongo.Collection{r.partners, r.parents} {
		_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
