// internal/domain/models/siteuser.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User status values.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// SiteUser is an account that can sign in to the admin panel.
// Role holds the stored role name; parse it with authz.ParseRole before
// making any permission decision.
type SiteUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"` // lowercased for lookups
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"` // folded for sorting
	Role         string             `bson:"role" json:"role"` // member | editor | admin | super_admin
	Status       string             `bson:"status" json:"status"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	LastLogin *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
}
