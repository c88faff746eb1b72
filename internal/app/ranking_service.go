package app

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

// RankingCache stores computed rankings (in Redis or memory) so repeated
// leaderboard reads skip the ledger. Slightly stale reads are acceptable.
type RankingCache interface {
	Get(ctx context.Context, triviaID int64) (domain.Ranking, bool)
	Set(ctx context.Context, triviaID int64, ranking domain.Ranking)
	Invalidate(ctx context.Context, triviaID int64)
}

// RankingService derives leaderboards from completed participations and fans
// out live updates to subscribers whenever an attempt finishes.
type RankingService struct {
	trivias TriviaRepository
	ledger  ParticipationLedger
	cache   RankingCache
	sf      singleflight.Group
	now     func() time.Time

	mu          sync.Mutex
	subscribers map[int64]map[chan domain.Ranking]struct{}
}

func NewRankingService(trivias TriviaRepository, ledger ParticipationLedger, cache RankingCache) *RankingService {
	return &RankingService{
		trivias:     trivias,
		ledger:      ledger,
		cache:       cache,
		now:         time.Now,
		subscribers: make(map[int64]map[chan domain.Ranking]struct{}),
	}
}

// SetClock is test-only for deterministic timestamps.
func (s *RankingService) SetClock(now func() time.Time) { s.now = now }

// Rank returns the leaderboard of a trivia: completed attempts only, score
// descending. Ties go to the earlier finisher, then to the player name.
func (s *RankingService) Rank(ctx context.Context, triviaID int64) (domain.Ranking, error) {
	if _, err := s.trivias.GetTrivia(ctx, triviaID); err != nil {
		return domain.Ranking{}, err
	}

	if s.cache != nil {
		if ranking, ok := s.cache.Get(ctx, triviaID); ok {
			return ranking, nil
		}
	}

	result, err, _ := s.sf.Do(strconv.FormatInt(triviaID, 10), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if s.cache != nil {
			if ranking, ok := s.cache.Get(ctx, triviaID); ok {
				return ranking, nil
			}
		}
		ranking, err := s.compute(ctx, triviaID)
		if err != nil {
			return domain.Ranking{}, err
		}
		if s.cache != nil {
			s.cache.Set(ctx, triviaID, ranking)
		}
		return ranking, nil
	})
	if err != nil {
		return domain.Ranking{}, err
	}
	return result.(domain.Ranking), nil
}

func (s *RankingService) compute(ctx context.Context, triviaID int64) (domain.Ranking, error) {
	completed, err := s.ledger.ListCompleted(ctx, triviaID)
	if err != nil {
		return domain.Ranking{}, err
	}

	sort.Slice(completed, func(i, j int) bool {
		if completed[i].Score != completed[j].Score {
			return completed[i].Score > completed[j].Score
		}
		if !completed[i].CompletedAt.Equal(completed[j].CompletedAt) {
			return completed[i].CompletedAt.Before(completed[j].CompletedAt)
		}
		return completed[i].UserName < completed[j].UserName
	})

	entries := make([]domain.RankingEntry, 0, len(completed))
	for _, p := range completed {
		entries = append(entries, domain.RankingEntry{
			User:        p.UserName,
			Score:       p.Score,
			CompletedAt: p.CompletedAt,
		})
	}
	return domain.Ranking{TriviaID: triviaID, Entries: entries, UpdatedAt: s.now()}, nil
}

// ParticipationCompleted implements CompletionNotifier: it drops the cached
// ranking and pushes a fresh snapshot to live subscribers.
func (s *RankingService) ParticipationCompleted(ctx context.Context, triviaID int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, triviaID)
	}

	s.mu.Lock()
	hasSubscribers := len(s.subscribers[triviaID]) > 0
	s.mu.Unlock()
	if !hasSubscribers {
		return
	}

	ranking, err := s.Rank(ctx, triviaID)
	if err != nil {
		return
	}
	s.broadcast(triviaID, ranking)
}

// Subscribe returns a channel fed with ranking snapshots for a trivia,
// starting with the current one. The caller must invoke the returned cancel
// function to avoid leaks.
func (s *RankingService) Subscribe(ctx context.Context, triviaID int64) (<-chan domain.Ranking, func(), error) {
	initial, err := s.Rank(ctx, triviaID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Ranking, 8)

	s.mu.Lock()
	if s.subscribers[triviaID] == nil {
		s.subscribers[triviaID] = make(map[chan domain.Ranking]struct{})
	}
	s.subscribers[triviaID][ch] = struct{}{}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if subs, ok := s.subscribers[triviaID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(s.subscribers, triviaID)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *RankingService) broadcast(triviaID int64, ranking domain.Ranking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers[triviaID] {
		select {
		case ch <- ranking:
		default:
			// Drop the stale snapshot so a slow client never blocks the rest.
			select {
			case <-ch:
			default:
			}
			ch <- ranking
		}
	}
}
