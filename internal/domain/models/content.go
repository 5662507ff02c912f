// internal/domain/models/content.go
package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reorderable collections. Documents in these carry an integer "order"
// field that the admin panel rewrites in one batch.
const (
	CollectionTeam      = "team"
	CollectionPrograms  = "programs"
	CollectionResources = "resources"
)

// ReorderableCollections is the fixed allow-list for reorder and content
// endpoints.
var ReorderableCollections = []string{CollectionTeam, CollectionPrograms, CollectionResources}

// IsReorderable reports whether name is in ReorderableCollections.
func IsReorderable(name string) bool {
	for _, c := range ReorderableCollections {
		if c == name {
			return true
		}
	}
	return false
}

// Reserved keys managed by the server; client payloads cannot set them.
var ReservedContentKeys = []string{"_id", "id", "order", "created_at", "updated_at", "updated_by_id", "updated_by_name"}

// ContentItem is one entry of a reorderable collection. The editable
// fields are free-form (name, title, bio, url, ...) and stored inline.
type ContentItem struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Order         int                `bson:"order"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     *time.Time         `bson:"updated_at,omitempty"`
	UpdatedByID   string             `bson:"updated_by_id,omitempty"`
	UpdatedByName string             `bson:"updated_by_name,omitempty"`
	Fields        map[string]any     `bson:",inline"`
}

// MarshalJSON flattens Fields next to id and order.
func (c ContentItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Fields)+4)
	for k, v := range c.Fields {
		out[k] = v
	}
	out["id"] = c.ID.Hex()
	out["order"] = c.Order
	out["created_at"] = c.CreatedAt.UTC().Format(time.RFC3339)
	if c.UpdatedAt != nil {
		out["updated_at"] = c.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(out)
}
