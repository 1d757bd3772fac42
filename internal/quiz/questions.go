package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"quizgame/internal/models"
)

// Column limits of quiz_questions.
const (
	MaxQuestionLen = 255
	MaxOptionLen   = 150
)

// ReadQuestions parses a question file. Both {"questions": [...]} (the API
// response shape) and a bare JSON array are accepted. Every question is
// validated; the first invalid one aborts the read.
func ReadQuestions(r io.Reader) ([]models.Question, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}

	var questions []models.Question
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &questions)
	} else {
		var list models.QuestionList
		err = json.Unmarshal(trimmed, &list)
		questions = list.Questions
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse questions: %w", err)
	}

	for i := range questions {
		if questions[i].ID == 0 {
			questions[i].ID = i + 1
		}
		if err := Validate(questions[i]); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return questions, nil
}

// LoadFile reads and validates the question file at path.
func LoadFile(path string) ([]models.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open question file: %w", err)
	}
	defer f.Close()
	return ReadQuestions(f)
}

// Validate checks that a question can be played and stored: it has text, at
// least two distinct options and its answer is one of them.
func Validate(q models.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text is empty")
	}
	if n := utf8.RuneCountInString(q.Text); n > MaxQuestionLen {
		return fmt.Errorf("question text is %d characters, max %d", n, MaxQuestionLen)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("need at least 2 options, got %d", len(q.Options))
	}
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("option text is empty")
		}
		if n := utf8.RuneCountInString(o); n > MaxOptionLen {
			return fmt.Errorf("option is %d characters, max %d", n, MaxOptionLen)
		}
		if seen[o] {
			return fmt.Errorf("duplicate option %q", o)
		}
		seen[o] = true
	}
	if !seen[q.Answer] {
		return fmt.Errorf("answer %q is not one of the options", q.Answer)
	}
	return nil
}

// Shuffle returns a shuffled copy of questions, leaving the input untouched.
func Shuffle(questions []models.Question) []models.Question {
	shuffled := make([]models.Question, len(questions))
	copy(shuffled, questions)

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
