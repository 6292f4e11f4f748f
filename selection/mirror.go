package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultMirrorTTL is how long a mirrored snapshot survives without activity.
const DefaultMirrorTTL = 7 * 24 * time.Hour

// Mirror persists selection snapshots to Redis keyed by user id, so a
// half-built selection survives navigation and new sessions.
type Mirror struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMirror builds a Mirror. A zero ttl falls back to DefaultMirrorTTL.
func NewMirror(client *redis.Client, ttl time.Duration) *Mirror {
	if ttl <= 0 {
		ttl = DefaultMirrorTTL
	}
	return &Mirror{client: client, ttl: ttl}
}

func mirrorKey(userID string) string {
	return "selection:" + userID
}

// Save stores the store's current items for the user.
func (m *Mirror) Save(ctx context.Context, userID string, store *Store) error {
	payload, err := json.Marshal(store.Items())
	if err != nil {
		return fmt.Errorf("selection: marshal snapshot: %w", err)
	}
	if err := m.client.Set(ctx, mirrorKey(userID), payload, m.ttl).Err(); err != nil {
		return fmt.Errorf("selection: save snapshot: %w", err)
	}
	return nil
}

// Load restores the user's snapshot into a fresh store. A missing snapshot
// yields an empty store.
func (m *Mirror) Load(ctx context.Context, userID string) (*Store, error) {
	payload, err := m.client.Get(ctx, mirrorKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewStore(), nil
		}
		return nil, fmt.Errorf("selection: load snapshot: %w", err)
	}

	var items []Selection
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("selection: unmarshal snapshot: %w", err)
	}

	store := NewStore()
	store.Restore(items)
	return store, nil
}

// Clear drops the user's snapshot, used after a round is submitted.
func (m *Mirror) Clear(ctx context.Context, userID string) error {
	if err := m.client.Del(ctx, mirrorKey(userID)).Err(); err != nil {
		return fmt.Errorf("selection: clear snapshot: %w", err)
	}
	return nil
}
