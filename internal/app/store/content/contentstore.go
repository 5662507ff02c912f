// Package contentstore persists the reorderable public collections
// (team, programs, resources). Each collection is its own Mongo collection
// whose documents carry an integer "order" field.
package contentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/orgsite/internal/app/system/txn"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidID         = errors.New("invalid id")
	ErrNotFound          = errors.New("item not found")
)

// Actor is who made a change, stamped on the document.
type Actor struct {
	ID   string
	Name string
}

type Store struct {
	db     *mongo.Database
	client *mongo.Client
	log    *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, client: db.Client(), log: logger}
}

func (s *Store) coll(name string) (*mongo.Collection, error) {
	if !models.IsReorderable(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return s.db.Collection(name), nil
}

// EnsureIndexes creates the order index on every reorderable collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, name := range models.ReorderableCollections {
		_, err := s.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_" + name + "_order"),
		})
		if err != nil {
			return fmt.Errorf("index %s: %w", name, err)
		}
	}
	return nil
}

// List returns every item of collection in display order.
func (s *Store) List(ctx context.Context, collection string) ([]models.ContentItem, error) {
	c, err := s.coll(collection)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []models.ContentItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get loads one item.
func (s *Store) Get(ctx context.Context, collection, id string) (*models.ContentItem, error) {
	c, err := s.coll(collection)
	if err != nil {
		return nil, err
	}
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var item models.ContentItem
	if err := c.FindOne(ctx, bson.M{"_id": oid}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create appends a new item after the current last one. fields must
// already be sanitized; reserved keys are dropped.
func (s *Store) Create(ctx context.Context, collection string, fields map[string]any, by Actor) (models.ContentItem, error) {
	c, err := s.coll(collection)
	if err != nil {
		return models.ContentItem{}, err
	}

	next, err := nextOrder(ctx, c)
	if err != nil {
		return models.ContentItem{}, err
	}

	now := time.Now().UTC()
	item := models.ContentItem{
		ID:            primitive.NewObjectID(),
		Order:         next,
		CreatedAt:     now,
		UpdatedAt:     &now,
		UpdatedByID:   by.ID,
		UpdatedByName: by.Name,
		Fields:        StripReserved(fields),
	}
	if _, err := c.InsertOne(ctx, item); err != nil {
		return models.ContentItem{}, err
	}
	return item, nil
}

// Update sets the given fields on an existing item.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any, by Actor) error {
	c, err := s.coll(collection)
	if err != nil {
		return err
	}
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	set := bson.M{}
	for k, v := range StripReserved(fields) {
		set[k] = v
	}
	set["updated_at"] = time.Now().UTC()
	set["updated_by_id"] = by.ID
	set["updated_by_name"] = by.Name

	res, err := c.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an item. Remaining items keep their order values.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	c, err := s.coll(collection)
	if err != nil {
		return err
	}
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := c.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder sets order = index for every id in ids as one batch. When an id
// repeats, its last position wins. Inside a transaction the whole batch is
// rolled back if any id does not exist; on a standalone server the batch
// runs as a single ordered bulk write.
func (s *Store) Reorder(ctx context.Context, collection string, ids []string) error {
	c, err := s.coll(collection)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(ids))
	for i, id := range ids {
		oid, err := parseID(id)
		if err != nil {
			return err
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": oid}).
			SetUpdate(bson.M{"$set": bson.M{"order": i}}))
	}

	return txn.RunOrFallback(ctx, s.client, s.log, "reorder "+collection, func(ctx context.Context) error {
		res, err := c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
		if err != nil {
			return err
		}
		// Every model matches once per occurrence, repeats included.
		if int(res.MatchedCount) < len(writes) {
			return ErrNotFound
		}
		return nil
	})
}

// StripReserved returns fields without the server-managed keys.
func StripReserved(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for _, k := range models.ReservedContentKeys {
		delete(out, k)
	}
	return out
}

func nextOrder(ctx context.Context, c *mongo.Collection) (int, error) {
	var last struct {
		Order int `bson:"order"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "order", Value: -1}}).
		SetProjection(bson.M{"order": 1})
	err := c.FindOne(ctx, bson.M{}, opts).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return last.Order + 1, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}
