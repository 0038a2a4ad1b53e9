package catalog

import (
	"errors"
	"fmt"
)

// Kind classifies a failed catalog operation for the UI.
type Kind string

const (
	// KindNetwork: an online load or search failed in transport or decoding.
	KindNetwork Kind = "network"
	// KindNoCache: offline and nothing cached for the partition or id.
	KindNoCache Kind = "noCache"
	// KindSearchNoResults: a search completed but matched nothing.
	KindSearchNoResults Kind = "searchNoResults"
	// KindDetails: an online detail fetch failed.
	KindDetails Kind = "details"
	// KindLike: a like could not be registered.
	KindLike Kind = "like"
	KindUnknown Kind = "unknown"
)

// ErrOffline is returned by Refresh when there is no network to refresh from.
var ErrOffline = errors.New("catalog: offline")

var messages = map[Kind]string{
	KindNetwork:         "Failed to load data. Please check your connection and try again.",
	KindNoCache:         "No cached data available offline.",
	KindSearchNoResults: "No experiences found for your search.",
	KindDetails:         "Failed to load experience details. Please try again.",
	KindLike:            "Failed to like experience. Please try again.",
	KindUnknown:         "An unknown error occurred.",
}

// Message returns the user-facing text for the kind.
func (k Kind) Message() string {
	if msg, ok := messages[k]; ok {
		return msg
	}
	return messages[KindUnknown]
}

// Error is the value stored in the orchestrator's error slot.
type Error struct {
	Kind Kind
	Op   string
	Err  error // underlying cause, nil for empty-result kinds
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, &catalog.Error{Kind: catalog.KindNoCache}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the kind from err, KindUnknown if it is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
