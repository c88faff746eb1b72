package domain

import "time"

// Role distinguishes question/trivia authors from invited players.
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

// User is a registered account. Credential mechanics live outside the core;
// only identity and display name matter here.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Option represents a possible answer owned by a single question.
type Option struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	Correct    bool   `json:"is_correct"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID         int64      `json:"id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
	Options    []Option   `json:"options"`
}

// CorrectOption returns the option flagged correct, if any.
func (q Question) CorrectOption() (Option, bool) {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt, true
		}
	}
	return Option{}, false
}

// Trivia is a named, fixed set of questions offered to an invited roster.
type Trivia struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Participation is one player's attempt against one trivia: the unit of
// scoring and completion state. Completed is a one-way latch; once set, the
// score is fixed and never recomputed.
type Participation struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	TriviaID    int64      `json:"trivia_id"`
	Score       int        `json:"score"`
	Completed   bool       `json:"completed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Answer is the append-only record of a single scored pair.
type Answer struct {
	ID               int64 `json:"id"`
	ParticipationID  int64 `json:"participation_id"`
	QuestionID       int64 `json:"question_id"`
	SelectedOptionID int64 `json:"selected_option_id"`
	Correct          bool  `json:"is_correct"`
	PointsAwarded    int   `json:"points_awarded"`
}

// AnswerSubmission is one (question, option) pair from a player's batch.
type AnswerSubmission struct {
	QuestionID int64 `json:"question_id"`
	OptionID   int64 `json:"option_id"`
}

// PlayOption is the sanitized view of an option served during play.
// It deliberately carries no correctness flag.
type PlayOption struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// PlayQuestion is the sanitized view of a question served during play.
// It deliberately carries no difficulty.
type PlayQuestion struct {
	ID      int64        `json:"id"`
	Text    string       `json:"text"`
	Options []PlayOption `json:"options"`
}

// SanitizedQuestion strips the answer key from a question for play.
func SanitizedQuestion(q Question) PlayQuestion {
	opts := make([]PlayOption, 0, len(q.Options))
	for _, opt := range q.Options {
		opts = append(opts, PlayOption{ID: opt.ID, Text: opt.Text})
	}
	return PlayQuestion{ID: q.ID, Text: q.Text, Options: opts}
}

// PlaySheet is what a player sees when opening an attempt. For a completed
// attempt only the stored score is reported and Questions stays empty.
type PlaySheet struct {
	Trivia    Trivia         `json:"trivia"`
	Completed bool           `json:"completed"`
	Score     int            `json:"score"`
	Questions []PlayQuestion `json:"questions,omitempty"`
}

// ParticipationStatus summarizes one of a player's attempts.
type ParticipationStatus struct {
	Trivia    Trivia `json:"trivia"`
	Score     int    `json:"score"`
	Completed bool   `json:"completed"`
}

// RankingEntry is one row of a trivia leaderboard.
type RankingEntry struct {
	User        string    `json:"user"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

// Ranking captures the ordered leaderboard of completed attempts.
type Ranking struct {
	TriviaID  int64          `json:"trivia_id"`
	Entries   []RankingEntry `json:"entries"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CompletedParticipation is the ledger's view of a finished attempt,
// resolved with the player's display name for ranking.
type CompletedParticipation struct {
	UserID      int64
	UserName    string
	Score       int
	CompletedAt time.Time
}
