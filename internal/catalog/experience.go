package catalog

import "github.com/mrlokans/aroundegypt/internal/entities"

// Experience is an API experience together with the user's liked state.
// IsLiked is derived on every read and never persisted with the record.
type Experience struct {
	entities.Experience
	IsLiked bool `json:"is_liked"`
}

// MergeLiked decorates items with their liked state. It keeps length and order.
func MergeLiked(items []entities.Experience, liked map[string]struct{}) []Experience {
	out := make([]Experience, len(items))
	for i, item := range items {
		_, ok := liked[item.ID]
		out[i] = Experience{Experience: item, IsLiked: ok}
	}
	return out
}

// relike recomputes IsLiked on already decorated items, returning a copy.
func relike(items []Experience, liked map[string]struct{}) []Experience {
	out := make([]Experience, len(items))
	for i, item := range items {
		_, ok := liked[item.ID]
		item.IsLiked = ok
		out[i] = item
	}
	return out
}

func clone(items []Experience) []Experience {
	if items == nil {
		return nil
	}
	out := make([]Experience, len(items))
	copy(out, items)
	return out
}

func find(items []Experience, id string) (Experience, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return Experience{}, false
}
