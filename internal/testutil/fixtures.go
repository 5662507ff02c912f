package testutil

import (
	"context"
	"testing"

	contentstore "github.com/dalemusser/orgsite/internal/app/store/content"
	userstore "github.com/dalemusser/orgsite/internal/app/store/users"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures creates records in a Mongo test database through the real stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an active user with the given role and password.
func (f *Fixtures) CreateUser(ctx context.Context, email, role, password string) models.SiteUser {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	u, err := userstore.New(f.db).Create(ctx, models.SiteUser{
		Email:        email,
		Name:         "Fixture " + role,
		Role:         role,
		PasswordHash: string(hash),
	})
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateContent appends n items to collection and returns their ids in order.
func (f *Fixtures) CreateContent(ctx context.Context, collection string, n int) []string {
	f.t.Helper()

	s := contentstore.New(f.db, nil)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		item, err := s.Create(ctx, collection, map[string]any{"name": collection}, contentstore.Actor{ID: "fixture", Name: "Fixture"})
		if err != nil {
			f.t.Fatalf("failed to create %s item: %v", collection, err)
		}
		ids = append(ids, item.ID.Hex())
	}
	return ids
}
