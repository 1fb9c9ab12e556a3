package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/pharmacy-desk/internal/common"
	"github.com/noah-isme/pharmacy-desk/internal/lock"
	"github.com/noah-isme/pharmacy-desk/internal/salesorder"
)

var (
	// ErrNotFound is returned for unknown, expired or foreign drafts.
	ErrNotFound = errors.New("draft: not found")
	// ErrLineNotFound is returned when a line id is not part of the draft.
	ErrLineNotFound = errors.New("draft: line not found")
)

// Draft is an order being edited at the desk. It lives only in Redis until it
// is submitted or expires.
type Draft struct {
	ID        string           `json:"id"`
	OwnerID   string           `json:"ownerId,omitempty"`
	Order     salesorder.Order `json:"order"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Store keeps drafts in Redis. Every write replaces the stored draft and
// refreshes its TTL; writes to one draft are serialised with Locker.
type Store struct {
	R       *redis.Client
	Locker  lock.Locker
	TTL     time.Duration
	LockTTL time.Duration
	Prefix  string
	Now     func() time.Time
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Store) ttl() time.Duration {
	if s.TTL <= 0 {
		return 12 * time.Hour
	}
	return s.TTL
}

func (s *Store) key(id string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "desk"
	}
	return prefix + ":draft:" + id
}

func (s *Store) lockKey(id string) string {
	return s.key(id) + ":lock"
}

// Create starts an empty draft owned by the caller.
func (s *Store) Create(ctx context.Context) (Draft, error) {
	if s == nil || s.R == nil {
		return Draft{}, errors.New("draft store not configured")
	}
	owner, _ := common.UserID(ctx)
	now := s.now()
	d := Draft{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Order:     salesorder.Order{Lines: []salesorder.Line{}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Get loads a draft visible to the caller.
func (s *Store) Get(ctx context.Context, id string) (Draft, error) {
	if s == nil || s.R == nil {
		return Draft{}, errors.New("draft store not configured")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Draft{}, ErrNotFound
	}
	raw, err := s.R.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("load draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	if owner, ok := common.UserID(ctx); ok && d.OwnerID != "" && owner != d.OwnerID {
		return Draft{}, ErrNotFound
	}
	return d, nil
}

// Delete removes a draft. Deleting a missing draft is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return s.R.Del(ctx, s.key(id)).Err()
}

// Update loads the draft under its lock, applies fn and stores the result.
func (s *Store) Update(ctx context.Context, id string, fn func(*Draft) error) (Draft, error) {
	var out Draft
	err := s.WithLock(ctx, id, func(ctx context.Context) error {
		d, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(&d); err != nil {
			return err
		}
		d.UpdatedAt = s.now()
		if err := s.save(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	return out, err
}

// WithLock runs fn while holding the draft's lock.
func (s *Store) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	lockTTL := s.LockTTL
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return s.Locker.WithLock(ctx, s.lockKey(id), lockTTL, fn)
}

func (s *Store) save(ctx context.Context, d Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.R.Set(ctx, s.key(d.ID), raw, s.ttl()).Err(); err != nil {
		return fmt.Errorf("store draft: %w", err)
	}
	return nil
}
