package testutil

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/orgsite/internal/app/store/audit"
	contentstore "github.com/dalemusser/orgsite/internal/app/store/content"
	userstore "github.com/dalemusser/orgsite/internal/app/store/users"
	"github.com/dalemusser/orgsite/internal/app/system/auth"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditStore is an in-memory audit log. FailWith simulates an outage.
type AuditStore struct {
	mu      sync.Mutex
	entries []audit.Entry
	err     error
}

func NewAuditStore() *AuditStore { return &AuditStore{} }

// FailWith makes every subsequent call return err. nil restores normal operation.
func (s *AuditStore) FailWith(err error) *AuditStore {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	return s
}

func (s *AuditStore) Add(_ context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	s.entries = append(s.entries, e)
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *AuditStore) Recent(_ context.Context, limit int64) ([]audit.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]audit.Entry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, s.entries[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Timestamp, out[j].Timestamp
		if ti == nil || tj == nil {
			return ti != nil
		}
		return ti.After(*tj)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Entries returns a copy of everything written, in insertion order.
func (s *AuditStore) Entries() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Entry(nil), s.entries...)
}

// ContentStore is an in-memory stand-in for contentstore.Store with the
// same error contract.
type ContentStore struct {
	mu     sync.Mutex
	items  map[string][]*models.ContentItem
	err    error
	onList func()
}

func NewContentStore() *ContentStore {
	return &ContentStore{items: make(map[string][]*models.ContentItem)}
}

// FailWith makes every subsequent call return err.
func (s *ContentStore) FailWith(err error) *ContentStore {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	return s
}

// OnList runs fn after every List has read its snapshot, to interleave a
// concurrent mutation with an in-flight read.
func (s *ContentStore) OnList(fn func()) *ContentStore {
	s.mu.Lock()
	s.onList = fn
	s.mu.Unlock()
	return s
}

// Seed appends n items named "item-0".. to collection and returns their ids.
func (s *ContentStore) Seed(collection string, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		item, _ := s.Create(context.Background(), collection, map[string]any{"name": "item-" + string(rune('0'+i))}, contentstore.Actor{})
		ids = append(ids, item.ID.Hex())
	}
	return ids
}

// Order returns the stored order of id in collection, or -1.
func (s *ContentStore) Order(collection, id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items[collection] {
		if it.ID.Hex() == id {
			return it.Order
		}
	}
	return -1
}

func (s *ContentStore) check(collection string) error {
	if s.err != nil {
		return s.err
	}
	if !models.IsReorderable(collection) {
		return contentstore.ErrUnknownCollection
	}
	return nil
}

func (s *ContentStore) find(collection, id string) (*models.ContentItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, contentstore.ErrInvalidID
	}
	for _, it := range s.items[collection] {
		if it.ID == oid {
			return it, nil
		}
	}
	return nil, contentstore.ErrNotFound
}

func (s *ContentStore) List(_ context.Context, collection string) ([]models.ContentItem, error) {
	s.mu.Lock()
	if err := s.check(collection); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	out := make([]models.ContentItem, 0, len(s.items[collection]))
	for _, it := range s.items[collection] {
		out = append(out, *it)
	}
	hook := s.onList
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	if hook != nil {
		hook()
	}
	return out, nil
}

func (s *ContentStore) Get(_ context.Context, collection, id string) (*models.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(collection); err != nil {
		return nil, err
	}
	it, err := s.find(collection, id)
	if err != nil {
		return nil, err
	}
	cp := *it
	return &cp, nil
}

func (s *ContentStore) Create(_ context.Context, collection string, fields map[string]any, by contentstore.Actor) (models.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(collection); err != nil {
		return models.ContentItem{}, err
	}
	next := 0
	for _, it := range s.items[collection] {
		if it.Order >= next {
			next = it.Order + 1
		}
	}
	item := &models.ContentItem{
		ID:            primitive.NewObjectID(),
		Order:         next,
		CreatedAt:     time.Now().UTC(),
		UpdatedByID:   by.ID,
		UpdatedByName: by.Name,
		Fields:        contentstore.StripReserved(fields),
	}
	s.items[collection] = append(s.items[collection], item)
	return *item, nil
}

func (s *ContentStore) Update(_ context.Context, collection, id string, fields map[string]any, by contentstore.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(collection); err != nil {
		return err
	}
	it, err := s.find(collection, id)
	if err != nil {
		return err
	}
	for k, v := range contentstore.StripReserved(fields) {
		it.Fields[k] = v
	}
	now := time.Now().UTC()
	it.UpdatedAt = &now
	it.UpdatedByID, it.UpdatedByName = by.ID, by.Name
	return nil
}

func (s *ContentStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(collection); err != nil {
		return err
	}
	it, err := s.find(collection, id)
	if err != nil {
		return err
	}
	list := s.items[collection]
	for i := range list {
		if list[i] == it {
			s.items[collection] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

// Reorder validates every id before touching anything, so a failed call
// leaves the collection unchanged.
func (s *ContentStore) Reorder(_ context.Context, collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(collection); err != nil {
		return err
	}
	targets := make([]*models.ContentItem, len(ids))
	for i, id := range ids {
		it, err := s.find(collection, id)
		if err != nil {
			return err
		}
		targets[i] = it
	}
	for i, it := range targets {
		it.Order = i
	}
	return nil
}

// UserStore is an in-memory stand-in for userstore.Store.
type UserStore struct {
	mu    sync.Mutex
	users []*models.SiteUser
	err   error
}

func NewUserStore() *UserStore { return &UserStore{} }

// FailWith makes every subsequent call return err.
func (s *UserStore) FailWith(err error) *UserStore {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	return s
}

// Add inserts u as-is (assigning an id when missing) and returns a copy.
func (s *UserStore) Add(u models.SiteUser) models.SiteUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.EmailCI = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	cp := u
	s.users = append(s.users, &cp)
	return u
}

func (s *UserStore) byID(id string) (*models.SiteUser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, userstore.ErrInvalidID
	}
	for _, u := range s.users {
		if u.ID == oid {
			return u, nil
		}
	}
	return nil, userstore.ErrNotFound
}

func (s *UserStore) GetByID(_ context.Context, id string) (*models.SiteUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, err := s.byID(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.SiteUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	key := strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.EmailCI == key {
			cp := *u
			return &cp, nil
		}
	}
	return nil, userstore.ErrNotFound
}

func (s *UserStore) FetchUser(ctx context.Context, id string) (*models.SiteUser, error) {
	u, err := s.GetByID(ctx, id)
	if err == userstore.ErrNotFound || err == userstore.ErrInvalidID {
		return nil, nil
	}
	return u, err
}

func (s *UserStore) List(context.Context) ([]models.SiteUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.SiteUser, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		cp.PasswordHash = ""
		out = append(out, cp)
	}
	return out, nil
}

func (s *UserStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.users)), nil
}

func (s *UserStore) Create(_ context.Context, u models.SiteUser) (models.SiteUser, error) {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return models.SiteUser{}, s.err
	}
	key := strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.EmailCI == key {
			s.mu.Unlock()
			return models.SiteUser{}, userstore.ErrDuplicateEmail
		}
	}
	s.mu.Unlock()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	return s.Add(u), nil
}

func (s *UserStore) UpdateRole(_ context.Context, id string, role authz.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	u, err := s.byID(id)
	if err != nil {
		return err
	}
	u.Role = role.String()
	return nil
}

func (s *UserStore) TouchLogin(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			now := time.Now().UTC()
			u.LastLogin = &now
		}
	}
	return nil
}

// Cache records invalidations and stores values in a map. Like the real
// backends it keeps a generation per namespace and drops stale Sets.
type Cache struct {
	mu          sync.Mutex
	data        map[string][]byte
	gens        map[string]int64
	invalidated []string
	err         error
}

func NewCache() *Cache {
	return &Cache{data: make(map[string][]byte), gens: make(map[string]int64)}
}

// FailWith makes Invalidate return err.
func (c *Cache) FailWith(err error) *Cache {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	return c
}

func (c *Cache) Get(_ context.Context, ns, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[ns+"|"+key]
	return v, ok
}

func (c *Cache) Generation(_ context.Context, ns string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[ns], nil
}

func (c *Cache) Set(_ context.Context, ns, key string, gen int64, val []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[ns] != gen {
		return
	}
	c.data[ns+"|"+key] = val
}

func (c *Cache) Invalidate(_ context.Context, ns string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ns)
	if c.err != nil {
		return c.err
	}
	c.gens[ns]++
	for k := range c.data {
		if strings.HasPrefix(k, ns+"|") {
			delete(c.data, k)
		}
	}
	return nil
}

// Invalidated lists the namespaces passed to Invalidate, in call order.
func (c *Cache) Invalidated() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}

// Verifier returns a fixed identity or error for every request.
type Verifier struct {
	Identity auth.Identity
	Err      error
}

func (v Verifier) Verify(*http.Request) (auth.Identity, error) {
	if v.Err != nil {
		return auth.Identity{}, v.Err
	}
	return v.Identity, nil
}

// ByUser returns up to limit entries by userID, newest first.
func (s *AuditStore) ByUser(ctx context.Context, userID string, limit int64) ([]audit.Entry, error) {
	all, err := s.Recent(ctx, 0)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, e := range all {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
