package service

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"gobag/internal/cache"
	"gobag/internal/model"
	"gobag/internal/repository"
)

// SubmissionRecord is the slice of a team or participant document the
// aggregation cares about.
type SubmissionRecord struct {
	SelectedItems []string
	IsSubmitted   bool
}

// ComputeResults is one full aggregation pass: per-item counts over the
// current catalog (zero-filled), ranked by count descending with the catalog
// order breaking ties. Selected names no longer in the catalog are ignored.
func ComputeResults(sessionID string, list *model.ItemList, records []SubmissionRecord) *model.SessionResults {
	counts := make([]model.ItemCount, len(list.Items))
	index := make(map[string]int, len(list.Items))
	for i, item := range list.Items {
		counts[i] = model.ItemCount{Name: item.Name, Category: item.Category}
		if _, seen := index[item.Name]; !seen {
			index[item.Name] = i
		}
	}

	submitted := 0
	for _, rec := range records {
		if !rec.IsSubmitted {
			continue
		}
		submitted++
		// The selection is a set; a record counts an item at most once even
		// when the stored array carries repeats.
		counted := make(map[int]struct{}, len(rec.SelectedItems))
		for _, name := range rec.SelectedItems {
			i, ok := index[name]
			if !ok {
				continue
			}
			if _, dup := counted[i]; dup {
				continue
			}
			counted[i] = struct{}{}
			counts[i].Count++
		}
	}

	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Count > counts[b].Count
	})

	return &model.SessionResults{
		SessionID:      sessionID,
		SubmittedCount: submitted,
		TotalCount:     len(records),
		Ranking:        counts,
		ComputedAt:     time.Now(),
	}
}

// AggregationService recomputes a session's results on every change
// notification and fans them out to dashboard subscribers. Recomputation is
// a full pass over all records and the full catalog; at tens of teams and
// tens of items that is cheaper than maintaining incremental counters.
type AggregationService struct {
	sessionRepo     repository.SessionRepo
	listRepo        repository.ItemListRepo
	teamRepo        repository.TeamRepo
	participantRepo repository.ParticipantRepo
	resultsCache    cache.ResultsCache
	broadcaster     Broadcaster
}

// NewAggregationService creates a new aggregation service
func NewAggregationService(
	sessionRepo repository.SessionRepo,
	listRepo repository.ItemListRepo,
	teamRepo repository.TeamRepo,
	participantRepo repository.ParticipantRepo,
	resultsCache cache.ResultsCache,
) *AggregationService {
	return &AggregationService{
		sessionRepo:     sessionRepo,
		listRepo:        listRepo,
		teamRepo:        teamRepo,
		participantRepo: participantRepo,
		resultsCache:    resultsCache,
	}
}

// SetBroadcaster injects the WebSocket broadcaster
func (s *AggregationService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Snapshot recomputes the session's results from the live records and
// refreshes the cached copy.
func (s *AggregationService) Snapshot(ctx context.Context, sessionID string) (*model.SessionResults, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return s.snapshotSession(ctx, session)
}

// Results returns the last computed aggregation, recomputing when the cache
// has nothing.
func (s *AggregationService) Results(ctx context.Context, sessionID string) (*model.SessionResults, error) {
	if cached, err := s.resultsCache.Get(ctx, sessionID); err == nil && cached != nil {
		return cached, nil
	}
	return s.Snapshot(ctx, sessionID)
}

func (s *AggregationService) snapshotSession(ctx context.Context, session *model.Session) (*model.SessionResults, error) {
	list, err := s.listRepo.GetByID(ctx, session.ItemListID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrDanglingItemList
	}

	records, err := s.loadRecords(ctx, session)
	if err != nil {
		return nil, err
	}

	results := ComputeResults(session.ID, list, records)
	if err := s.resultsCache.Set(ctx, session.ID, results); err != nil {
		log.Printf("results cache write failed for %s: %v", session.ID, err)
	}
	return results, nil
}

func (s *AggregationService) loadRecords(ctx context.Context, session *model.Session) ([]SubmissionRecord, error) {
	var records []SubmissionRecord
	if session.Type == model.SessionLesson {
		teams, err := s.teamRepo.ListBySession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range teams {
			records = append(records, SubmissionRecord{SelectedItems: t.SelectedItems, IsSubmitted: t.IsSubmitted})
		}
	} else {
		participants, err := s.participantRepo.ListBySession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range participants {
			records = append(records, SubmissionRecord{SelectedItems: p.SelectedItems, IsSubmitted: p.IsSubmitted})
		}
	}
	return records, nil
}

// Watcher is one live aggregation loop. Stop tears it down; events arriving
// after Stop are dropped rather than acted on.
type Watcher struct {
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Stop tears the watcher down.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.cancel()
}

func (w *Watcher) stopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// WatchSession subscribes to the session's record stream and republishes
// results on every change. An initial snapshot goes out immediately so a
// freshly opened dashboard is not blank until the first toggle.
func (s *AggregationService) WatchSession(ctx context.Context, sessionID string) (*Watcher, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	watchCtx, cancel := context.WithCancel(ctx)
	var events <-chan repository.ChangeEvent
	if session.Type == model.SessionLesson {
		events, err = s.teamRepo.Watch(watchCtx, sessionID)
	} else {
		events, err = s.participantRepo.Watch(watchCtx, sessionID)
	}
	if err != nil {
		cancel()
		return nil, err
	}

	w := &Watcher{cancel: cancel}
	go func() {
		s.publish(watchCtx, session, w)
		for range events {
			if w.stopped() {
				return
			}
			s.publish(watchCtx, session, w)
		}
	}()
	return w, nil
}

func (s *AggregationService) publish(ctx context.Context, session *model.Session, w *Watcher) {
	results, err := s.snapshotSession(ctx, session)
	if err != nil {
		log.Printf("aggregation failed for session %s: %v", session.ID, err)
		return
	}
	if w.stopped() {
		return
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToDashboard(session.ID, "results_update", results)
	}
}
