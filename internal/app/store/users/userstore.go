// Package userstore persists admin panel accounts.
package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const CollectionName = "users"

// BcryptCost is the work factor for new password hashes. Tests lower it.
var BcryptCost = 12

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrNotFound       = errors.New("user not found")
	ErrInvalidID      = errors.New("invalid user id")
	errBadRole        = errors.New(`role must be "member"|"editor"|"admin"|"super_admin"`)
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
	errNoEmail        = errors.New("email is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// EnsureIndexes creates the unique case-insensitive email index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_ci", Value: 1}},
		Options: options.Index().SetName("uniq_users_email_ci").SetUnique(true),
	})
	return err
}

// GetByID loads a user by hex id.
func (s *Store) GetByID(ctx context.Context, id string) (*models.SiteUser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.SiteUser, error) {
	return s.findOne(ctx, bson.M{"email_ci": foldEmail(email)})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.SiteUser, error) {
	var u models.SiteUser
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FetchUser loads the session user. A missing user or malformed id yields
// (nil, nil) so the session is treated as signed out.
func (s *Store) FetchUser(ctx context.Context, id string) (*models.SiteUser, error) {
	u, err := s.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidID) {
		return nil, nil
	}
	return u, err
}

// List returns every user sorted by name, then email.
func (s *Store) List(ctx context.Context) ([]models.SiteUser, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "email_ci", Value: 1}}).
		SetProjection(bson.M{"password_hash": 0})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.SiteUser{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Create inserts a new user after normalizing and validating fields.
// PasswordHash must already be set (see HashPassword).
func (s *Store) Create(ctx context.Context, u models.SiteUser) (models.SiteUser, error) {
	u.ID = primitive.NewObjectID()
	u.Email = strings.TrimSpace(u.Email)
	u.EmailCI = foldEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	u.NameCI = text.Fold(u.Name)
	if u.Status == "" {
		u.Status = models.StatusActive
	}

	if u.EmailCI == "" {
		return models.SiteUser{}, errNoEmail
	}
	if _, ok := authz.ParseRole(u.Role); !ok {
		return models.SiteUser{}, errBadRole
	}
	if u.Status != models.StatusActive && u.Status != models.StatusDisabled {
		return models.SiteUser{}, errBadStatus
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = &now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.SiteUser{}, ErrDuplicateEmail
		}
		return models.SiteUser{}, err
	}
	return u, nil
}

// UpdateRole stores a new role for the user.
func (s *Store) UpdateRole(ctx context.Context, id string, role authz.Role) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	if !role.Valid() {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"role":       role.String(),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLogin records a successful sign-in.
func (s *Store) TouchLogin(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login": time.Now().UTC()}})
	return err
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func foldEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
