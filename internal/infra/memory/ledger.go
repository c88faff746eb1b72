package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

type participationKey struct {
	userID   int64
	triviaID int64
}

// Ledger is an in-memory participation ledger. A single mutex around
// Complete gives the same check-and-latch atomicity the Postgres ledger gets
// from its conditional update.
type Ledger struct {
	users *Users

	mu             sync.RWMutex
	participations map[int64]domain.Participation
	byPair         map[participationKey]int64
	answers        map[int64][]domain.Answer // participation ID -> records
	nextID         int64
	nextAnswerID   int64
	now            func() time.Time
}

func NewLedger(users *Users) *Ledger {
	return &Ledger{
		users:          users,
		participations: make(map[int64]domain.Participation),
		byPair:         make(map[participationKey]int64),
		answers:        make(map[int64][]domain.Answer),
		now:            time.Now,
	}
}

// SetClock is test-only for deterministic timestamps.
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

func (l *Ledger) Find(_ context.Context, userID, triviaID int64) (domain.Participation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.byPair[participationKey{userID, triviaID}]
	if !ok {
		return domain.Participation{}, domain.ErrParticipationNotFound
	}
	return l.participations[id], nil
}

func (l *Ledger) FindByUser(_ context.Context, userID int64) ([]domain.Participation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var participations []domain.Participation
	for _, p := range l.participations {
		if p.UserID == userID {
			participations = append(participations, p)
		}
	}
	sort.Slice(participations, func(i, j int) bool { return participations[i].ID < participations[j].ID })
	return participations, nil
}

func (l *Ledger) Create(_ context.Context, userID, triviaID int64) (domain.Participation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := participationKey{userID, triviaID}
	if _, ok := l.byPair[key]; ok {
		return domain.Participation{}, domain.ErrDuplicateParticipation
	}
	l.nextID++
	participation := domain.Participation{
		ID:        l.nextID,
		UserID:    userID,
		TriviaID:  triviaID,
		StartedAt: l.now(),
	}
	l.participations[participation.ID] = participation
	l.byPair[key] = participation.ID
	return participation, nil
}

// Complete latches the participation and appends its answer records in one
// critical section. A participation that is already completed is left
// untouched.
func (l *Ledger) Complete(_ context.Context, participationID int64, score int, completedAt time.Time, answers []domain.Answer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	participation, ok := l.participations[participationID]
	if !ok {
		return domain.ErrParticipationNotFound
	}
	if participation.Completed {
		return domain.ErrAlreadyCompleted
	}

	participation.Score = score
	participation.Completed = true
	participation.CompletedAt = &completedAt
	l.participations[participationID] = participation

	for _, ans := range answers {
		l.nextAnswerID++
		ans.ID = l.nextAnswerID
		ans.ParticipationID = participationID
		l.answers[participationID] = append(l.answers[participationID], ans)
	}
	return nil
}

func (l *Ledger) ListCompleted(ctx context.Context, triviaID int64) ([]domain.CompletedParticipation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var completed []domain.CompletedParticipation
	for _, p := range l.participations {
		if p.TriviaID != triviaID || !p.Completed {
			continue
		}
		name := ""
		if user, err := l.users.GetUser(ctx, p.UserID); err == nil {
			name = user.Name
		}
		completed = append(completed, domain.CompletedParticipation{
			UserID:      p.UserID,
			UserName:    name,
			Score:       p.Score,
			CompletedAt: *p.CompletedAt,
		})
	}
	return completed, nil
}

// Answers returns the recorded answers of a participation, for tests and
// inspection.
func (l *Ledger) Answers(participationID int64) []domain.Answer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Answer(nil), l.answers[participationID]...)
}
