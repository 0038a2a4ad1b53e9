// Package catalog coordinates every read and write of the experience catalog.
//
// Each operation picks the network or the on-device cache based on the
// connectivity oracle only; a failed online call is reported, it does not
// fall back to the cache. Fetched data is decorated with the liked state and
// written through to the cache partition it belongs to.
//
// User operations never return errors. The outcome of the last failing one
// sits in a single error slot (Err) until ClearError or the next failure.
// Refresh, the background reload, returns its error instead.
package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/aroundegypt/internal/connectivity"
	"github.com/mrlokans/aroundegypt/internal/database/experiences"
	"github.com/mrlokans/aroundegypt/internal/entities"
	"github.com/mrlokans/aroundegypt/internal/metrics"
)

// RemoteSource is the AroundEgypt API.
type RemoteSource interface {
	FetchRecommended(ctx context.Context) ([]entities.Experience, error)
	FetchRecent(ctx context.Context) ([]entities.Experience, error)
	Search(ctx context.Context, query string) ([]entities.Experience, error)
	FetchByID(ctx context.Context, id string) (*entities.Experience, error)
	Like(ctx context.Context, id string) (int, error)
}

// CacheStore is the on-device experience cache.
type CacheStore interface {
	Fetch(ctx context.Context, partition experiences.Partition) ([]entities.Experience, error)
	ReplacePartition(ctx context.Context, partition experiences.Partition, records []entities.Experience) error
	UpdateLikes(ctx context.Context, id string, likes int) error
}

// LikedStore is the durable liked-id set.
type LikedStore interface {
	LikedIDs(ctx context.Context) (map[string]struct{}, error)
	MarkLiked(ctx context.Context, id string) error
}

const (
	OpLoadRecent      = "load_recent"
	OpLoadRecommended = "load_recommended"
	OpSearch          = "search"
	OpFetchDetails    = "fetch_details"
	OpLike            = "like"
)

// State is a point-in-time copy of the orchestrator's in-memory fields.
type State struct {
	Experiences   []Experience `json:"experiences"`
	Recommended   []Experience `json:"recommended"`
	SearchResults []Experience `json:"search_results"`
	SearchQuery   string       `json:"search_query,omitempty"`
	Searching     bool         `json:"searching"`
	Loading       bool         `json:"loading"`
	Error         *Error       `json:"-"`
}

// Orchestrator owns the in-memory catalog. It is safe for concurrent use;
// overlapping loads of the same list are last-writer-wins.
type Orchestrator struct {
	remote RemoteSource
	cache  CacheStore
	likes  LikedStore
	oracle connectivity.Oracle
	logger *zap.Logger

	mu            sync.RWMutex
	experiences   []Experience
	recommended   []Experience
	searchResults []Experience
	searchQuery   string
	searching     bool
	inFlight      int
	err           *Error
}

func New(remote RemoteSource, cache CacheStore, likes LikedStore, oracle connectivity.Oracle, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		remote: remote,
		cache:  cache,
		likes:  likes,
		oracle: oracle,
		logger: logger,
	}
}

// LoadRecent fills Experiences from the full API listing, or from the
// cached non-recommended partition when offline.
func (o *Orchestrator) LoadRecent(ctx context.Context) {
	o.loadRecent(ctx, true)
}

// LoadRecommended fills Recommended from the API, or from the cached
// recommended partition when offline.
func (o *Orchestrator) LoadRecommended(ctx context.Context) {
	o.loadRecommended(ctx, true)
}

// Refresh reloads both lists from the network for background callers. It
// returns ErrOffline without touching anything when disconnected, and
// reports failures through its return value only: the error slot belongs
// to user-initiated operations and is left as it was.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	if !o.oracle.IsConnected() {
		return ErrOffline
	}

	var errs []error
	if err := o.loadRecent(ctx, false); err != nil {
		errs = append(errs, err)
	}
	if err := o.loadRecommended(ctx, false); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) loadRecent(ctx context.Context, record bool) *Error {
	return o.loadPartition(ctx, OpLoadRecent, experiences.PartitionRecent, record, o.remote.FetchRecent, func(items []Experience) {
		o.experiences = items
	})
}

func (o *Orchestrator) loadRecommended(ctx context.Context, record bool) *Error {
	return o.loadPartition(ctx, OpLoadRecommended, experiences.PartitionRecommended, record, o.remote.FetchRecommended, func(items []Experience) {
		o.recommended = items
	})
}

// loadPartition stores its failure in the error slot only when record is
// set; the failure is returned either way.
func (o *Orchestrator) loadPartition(
	ctx context.Context,
	op string,
	partition experiences.Partition,
	record bool,
	fetch func(context.Context) ([]entities.Experience, error),
	assign func([]Experience),
) *Error {
	done := o.begin()
	defer done()

	start := time.Now()
	log := o.logger.With(zap.String("op", op), zap.Stringer("partition", partition))

	if o.oracle.IsConnected() {
		items, err := fetch(ctx)
		if err != nil {
			log.Warn("Online load failed", zap.Error(err))
			observe(op, sourceOnline, KindNetwork, start)
			return o.report(record, KindNetwork, op, err)
		}

		merged := MergeLiked(items, o.likedIDs(ctx))
		o.mu.Lock()
		assign(merged)
		o.mu.Unlock()

		o.writeThrough(ctx, partition, items)
		log.Debug("Loaded from network", zap.Int("count", len(items)))
		observe(op, sourceOnline, "", start)
		return nil
	}

	cached := o.readCache(ctx, partition)
	if len(cached) == 0 {
		log.Info("Offline with empty cache")
		o.mu.Lock()
		assign([]Experience{})
		o.mu.Unlock()
		observe(op, sourceOffline, KindNoCache, start)
		return o.report(record, KindNoCache, op, nil)
	}

	merged := MergeLiked(cached, o.likedIDs(ctx))
	o.mu.Lock()
	assign(merged)
	o.mu.Unlock()

	log.Debug("Loaded from cache", zap.Int("count", len(cached)))
	observe(op, sourceOffline, "", start)
	return nil
}

// Search looks experiences up by title. Online it asks the API; offline it
// filters the experiences already in memory (not the cache), matching the
// title case-insensitively. Results go to a separate slot, see ExitSearch.
// A blank query does nothing.
func (o *Orchestrator) Search(ctx context.Context, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	done := o.begin()
	defer done()

	start := time.Now()
	log := o.logger.With(zap.String("op", OpSearch), zap.String("query", query))

	var results []Experience
	source := sourceOffline

	if o.oracle.IsConnected() {
		source = sourceOnline
		items, err := o.remote.Search(ctx, query)
		if err != nil {
			log.Warn("Online search failed", zap.Error(err))
			o.fail(KindNetwork, OpSearch, err)
			observe(OpSearch, source, KindNetwork, start)
			return
		}
		results = MergeLiked(items, o.likedIDs(ctx))
	} else {
		needle := strings.ToLower(query)
		o.mu.RLock()
		resident := clone(o.experiences)
		o.mu.RUnlock()

		matched := make([]Experience, 0, len(resident))
		for _, item := range resident {
			if strings.Contains(strings.ToLower(item.Title), needle) {
				matched = append(matched, item)
			}
		}
		results = relike(matched, o.likedIDs(ctx))
	}

	o.mu.Lock()
	o.searchResults = results
	o.searchQuery = query
	o.searching = true
	o.mu.Unlock()

	if len(results) == 0 {
		o.fail(KindSearchNoResults, OpSearch, nil)
		observe(OpSearch, source, KindSearchNoResults, start)
		return
	}

	log.Debug("Search completed", zap.String("source", source), zap.Int("count", len(results)))
	observe(OpSearch, source, "", start)
}

// ExitSearch drops the search results so the main listing shows again.
func (o *Orchestrator) ExitSearch() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.searchResults = nil
	o.searchQuery = ""
	o.searching = false
}

// FetchDetails returns a single experience. Online it asks the API; offline
// it scans the whole cache. When the experience is liked, a higher like
// count already held in memory (bumped by a like this session) wins over
// the fetched one.
func (o *Orchestrator) FetchDetails(ctx context.Context, id string) (Experience, bool) {
	done := o.begin()
	defer done()

	start := time.Now()
	log := o.logger.With(zap.String("op", OpFetchDetails), zap.String("id", id))

	var found *entities.Experience
	source := sourceOffline

	if o.oracle.IsConnected() {
		source = sourceOnline
		exp, err := o.remote.FetchByID(ctx, id)
		if err != nil {
			log.Warn("Online detail fetch failed", zap.Error(err))
			o.fail(KindDetails, OpFetchDetails, err)
			observe(OpFetchDetails, source, KindDetails, start)
			return Experience{}, false
		}
		found = exp
	} else {
		for _, item := range o.readCache(ctx, experiences.PartitionAll) {
			if item.ID == id {
				item := item
				found = &item
				break
			}
		}
		if found == nil {
			o.fail(KindNoCache, OpFetchDetails, nil)
			observe(OpFetchDetails, source, KindNoCache, start)
			return Experience{}, false
		}
	}

	result := Experience{Experience: *found}
	if _, liked := o.likedIDs(ctx)[id]; liked {
		result.IsLiked = true

		o.mu.RLock()
		for _, list := range [][]Experience{o.experiences, o.recommended} {
			if local, ok := find(list, id); ok && local.LikesNo > result.LikesNo {
				result.LikesNo = local.LikesNo
			}
		}
		o.mu.RUnlock()
	}

	observe(OpFetchDetails, source, "", start)
	return result, true
}

// Like registers a like for e. It does nothing when e is already liked,
// either by its own flag or by the durable liked set. There is no offline path: without a network the API call fails and the
// failure is reported as KindLike with all state left untouched.
func (o *Orchestrator) Like(ctx context.Context, e Experience) {
	if e.IsLiked {
		return
	}
	if _, liked := o.likedIDs(ctx)[e.ID]; liked {
		return
	}

	done := o.begin()
	defer done()

	start := time.Now()
	log := o.logger.With(zap.String("op", OpLike), zap.String("id", e.ID))

	count, err := o.remote.Like(ctx, e.ID)
	if err != nil {
		log.Warn("Like failed", zap.Error(err))
		o.fail(KindLike, OpLike, err)
		observe(OpLike, sourceOnline, KindLike, start)
		return
	}

	o.mu.Lock()
	for _, list := range [][]Experience{o.experiences, o.recommended, o.searchResults} {
		for i := range list {
			if list[i].ID == e.ID {
				list[i].LikesNo = count
				list[i].IsLiked = true
			}
		}
	}
	o.mu.Unlock()

	if err := o.likes.MarkLiked(ctx, e.ID); err != nil {
		log.Error("Failed to persist liked id", zap.Error(err))
	}
	if err := o.cache.UpdateLikes(ctx, e.ID, count); err != nil {
		log.Warn("Failed to update cached like count", zap.Error(err))
		metrics.CacheWriteErrorsTotal.WithLabelValues(experiences.PartitionAll.String()).Inc()
	}

	log.Debug("Liked", zap.Int("likes", count))
	observe(OpLike, sourceOnline, "", start)
}

// Find returns the in-memory copy of an experience from any list.
func (o *Orchestrator) Find(id string) (Experience, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, list := range [][]Experience{o.experiences, o.recommended, o.searchResults} {
		if item, ok := find(list, id); ok {
			return item, true
		}
	}
	return Experience{}, false
}

// Err returns the current error, nil when the slot is clear.
func (o *Orchestrator) Err() *Error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.err
}

// ClearError resets the error slot.
func (o *Orchestrator) ClearError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = nil
}

// Loading reports whether any operation is in flight.
func (o *Orchestrator) Loading() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.inFlight > 0
}

func (o *Orchestrator) Experiences() []Experience {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return clone(o.experiences)
}

func (o *Orchestrator) Recommended() []Experience {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return clone(o.recommended)
}

func (o *Orchestrator) SearchResults() []Experience {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return clone(o.searchResults)
}

// Snapshot copies the whole in-memory state.
func (o *Orchestrator) Snapshot() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return State{
		Experiences:   clone(o.experiences),
		Recommended:   clone(o.recommended),
		SearchResults: clone(o.searchResults),
		SearchQuery:   o.searchQuery,
		Searching:     o.searching,
		Loading:       o.inFlight > 0,
		Error:         o.err,
	}
}

// begin marks an operation in flight; the returned func must be deferred.
func (o *Orchestrator) begin() func() {
	o.mu.Lock()
	o.inFlight++
	o.mu.Unlock()
	metrics.OperationsInFlight.Inc()

	return func() {
		o.mu.Lock()
		o.inFlight--
		o.mu.Unlock()
		metrics.OperationsInFlight.Dec()
	}
}

func (o *Orchestrator) fail(kind Kind, op string, cause error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = &Error{Kind: kind, Op: op, Err: cause}
}

func (o *Orchestrator) report(record bool, kind Kind, op string, cause error) *Error {
	e := &Error{Kind: kind, Op: op, Err: cause}
	if record {
		o.mu.Lock()
		o.err = e
		o.mu.Unlock()
	}
	return e
}

// likedIDs never fails: an unreadable set merges as empty.
func (o *Orchestrator) likedIDs(ctx context.Context) map[string]struct{} {
	ids, err := o.likes.LikedIDs(ctx)
	if err != nil {
		o.logger.Error("Failed to read liked ids", zap.Error(err))
		return map[string]struct{}{}
	}
	return ids
}

// readCache treats a failing cache like an empty one.
func (o *Orchestrator) readCache(ctx context.Context, partition experiences.Partition) []entities.Experience {
	items, err := o.cache.Fetch(ctx, partition)
	if err != nil {
		o.logger.Error("Failed to read cache", zap.Stringer("partition", partition), zap.Error(err))
		return nil
	}
	return items
}

// writeThrough failures are logged only; the loaded data is already in memory.
func (o *Orchestrator) writeThrough(ctx context.Context, partition experiences.Partition, items []entities.Experience) {
	if err := o.cache.ReplacePartition(ctx, partition, items); err != nil {
		o.logger.Warn("Failed to write through to cache", zap.Stringer("partition", partition), zap.Error(err))
		metrics.CacheWriteErrorsTotal.WithLabelValues(partition.String()).Inc()
	}
}
