package domain

import "testing"

func TestScoreTable(t *testing.T) {
	cases := []struct {
		difficulty Difficulty
		correct    bool
		want       int
	}{
		{Easy, true, 1},
		{Medium, true, 2},
		{Hard, true, 3},
		{Easy, false, 0},
		{Medium, false, 0},
		{Hard, false, 0},
	}
	for _, tc := range cases {
		if got := Score(tc.difficulty, tc.correct); got != tc.want {
			t.Errorf("Score(%s, %v) = %d, want %d", tc.difficulty, tc.correct, got, tc.want)
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Score(Hard, true); got != 3 {
			t.Fatalf("expected 3 every time, got %d", got)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	for raw, want := range map[string]Difficulty{
		"EASY":   Easy,
		"medium": Medium,
		" Hard ": Hard,
	} {
		got, err := ParseDifficulty(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q = %s, want %s", raw, got, want)
		}
	}
}

func TestParseDifficultyRejectsUnknown(t *testing.T) {
	// Unknown labels must not silently fall back to EASY.
	if _, err := ParseDifficulty("IMPOSSIBLE"); err == nil {
		t.Fatal("expected error for unknown difficulty")
	}
	if _, err := ParseDifficulty(""); err == nil {
		t.Fatal("expected error for empty difficulty")
	}
}

func TestSanitizedQuestionHidesAnswerKey(t *testing.T) {
	q := Question{
		ID:         1,
		Text:       "Pick one",
		Difficulty: Hard,
		Options: []Option{
			{ID: 10, QuestionID: 1, Text: "A", Correct: false},
			{ID: 11, QuestionID: 1, Text: "B", Correct: true},
		},
	}
	view := SanitizedQuestion(q)
	if len(view.Options) != 2 {
		t.Fatalf("expected both options, got %d", len(view.Options))
	}
	for _, opt := range view.Options {
		if opt.ID == 0 || opt.Text == "" {
			t.Fatalf("expected id and text on option, got %+v", opt)
		}
	}
}
