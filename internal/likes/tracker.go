// Package likes keeps the durable set of experience IDs the user has liked.
//
// The set is stored as a JSON array in the settings table and is independent
// of the experience cache: clearing or replacing cached rows never affects it.
package likes

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mrlokans/aroundegypt/internal/entities"
)

// SettingsStore is the key-value slot the tracker persists into.
type SettingsStore interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Tracker records liked experience IDs. It only ever grows.
type Tracker struct {
	store SettingsStore

	mu sync.Mutex
}

func NewTracker(store SettingsStore) *Tracker {
	return &Tracker{store: store}
}

// LikedIDs returns the current liked set; empty when nothing was liked yet.
func (t *Tracker) LikedIDs(ctx context.Context) (map[string]struct{}, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids, err := t.load(ctx)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// IsLiked reports whether id is in the liked set.
func (t *Tracker) IsLiked(ctx context.Context, id string) (bool, error) {
	set, err := t.LikedIDs(ctx)
	if err != nil {
		return false, err
	}
	_, ok := set[id]
	return ok, nil
}

// MarkLiked adds id to the set and persists it before returning.
// Marking an already liked id is a no-op.
func (t *Tracker) MarkLiked(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("mark liked: empty experience id")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ids, err := t.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}

	data, err := json.Marshal(append(ids, id))
	if err != nil {
		return fmt.Errorf("encode liked ids: %w", err)
	}
	if err := t.store.SetSetting(ctx, entities.SettingKeyLikedExperienceIDs, string(data)); err != nil {
		return fmt.Errorf("save liked ids: %w", err)
	}
	return nil
}

func (t *Tracker) load(ctx context.Context) ([]string, error) {
	raw, err := t.store.GetValue(ctx, entities.SettingKeyLikedExperienceIDs)
	if err != nil {
		return nil, fmt.Errorf("load liked ids: %w", err)
	}
	if raw == "" {
		return []string{}, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode liked ids: %w", err)
	}
	return ids, nil
}
