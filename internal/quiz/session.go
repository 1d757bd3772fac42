package quiz

import (
	"errors"
	"math"

	"quizgame/internal/models"
)

// Phase describes how far a quiz session has progressed.
type Phase int

const (
	PhaseNotStarted Phase = iota // Questions loaded, waiting for start
	PhaseInProgress              // Serving questions
	PhaseFinished                // Last question answered and confirmed
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseInProgress:
		return "in-progress"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

var (
	ErrNoQuestions   = errors.New("quiz: no questions to play")
	ErrNotInProgress = errors.New("quiz: session is not in progress")
	ErrUnknownOption = errors.New("quiz: option does not belong to the current question")
)

// Session is the quiz state machine. It is not safe for concurrent use; the
// caller drives it from a single event loop.
type Session struct {
	questions []models.Question
	index     int
	selected  string
	answered  bool
	score     int
	wrong     int
	phase     Phase
}

// NewSession returns a session in PhaseNotStarted over the given questions.
// The slice is copied so later changes by the caller are not observed.
func NewSession(questions []models.Question) *Session {
	s := &Session{}
	s.Load(questions)
	return s
}

// Load replaces the question list and resets the session to PhaseNotStarted.
func (s *Session) Load(questions []models.Question) {
	s.questions = append([]models.Question(nil), questions...)
	s.reset()
	s.phase = PhaseNotStarted
}

// Start moves a not-started session into PhaseInProgress. Starting a session
// that is already running is a no-op.
func (s *Session) Start() error {
	if len(s.questions) == 0 {
		return ErrNoQuestions
	}
	if s.phase == PhaseNotStarted {
		s.phase = PhaseInProgress
	}
	return nil
}

// Answer records the selected option for the current question and reports
// whether it was correct. Once an option has been selected, further calls for
// the same question change nothing and report the first selection's result.
func (s *Session) Answer(option string) (bool, error) {
	if s.phase != PhaseInProgress {
		return false, ErrNotInProgress
	}
	q := s.questions[s.index]
	if s.answered {
		return s.selected == q.Answer, nil
	}
	if !hasOption(q, option) {
		return false, ErrUnknownOption
	}

	s.selected = option
	s.answered = true
	correct := option == q.Answer
	if correct {
		s.score++
	} else {
		s.wrong++
	}
	return correct, nil
}

// Next clears the selection and advances to the following question, or
// finishes the session after the last one. A question left unanswered counts
// as wrong, so Score()+Wrong() always equals the questions completed.
func (s *Session) Next() error {
	if s.phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if !s.answered {
		s.wrong++
	}
	s.selected = ""
	s.answered = false
	if s.index < len(s.questions)-1 {
		s.index++
		return nil
	}
	s.phase = PhaseFinished
	return nil
}

// Restart resets index, score and selection. The session goes straight back
// to PhaseInProgress, or to PhaseNotStarted when there is nothing to play.
func (s *Session) Restart() {
	s.reset()
	if len(s.questions) == 0 {
		s.phase = PhaseNotStarted
		return
	}
	s.phase = PhaseInProgress
}

func (s *Session) reset() {
	s.index = 0
	s.selected = ""
	s.answered = false
	s.score = 0
	s.wrong = 0
}

// ProgressPercent is completed/total rounded to the nearest integer, where
// completed is the current index while in progress and the total once finished.
func (s *Session) ProgressPercent() int {
	total := len(s.questions)
	if total == 0 {
		return 0
	}
	var completed int
	switch s.phase {
	case PhaseInProgress:
		completed = s.index
	case PhaseFinished:
		completed = total
	default:
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Current returns the question being shown. ok is false outside PhaseInProgress.
func (s *Session) Current() (q models.Question, ok bool) {
	if s.phase != PhaseInProgress {
		return models.Question{}, false
	}
	return s.questions[s.index], true
}

func (s *Session) Phase() Phase { return s.phase }
func (s *Session) Index() int { return s.index }
func (s *Session) Total() int { return len(s.questions) }
func (s *Session) Score() int { return s.score }
func (s *Session) Wrong() int { return s.wrong }
func (s *Session) Answered() bool { return s.answered }
func (s *Session) Selected() string { return s.selected }
func (s *Session) IsLast() bool { return s.index == len(s.questions)-1 }
func (s *Session) HasQuestions() bool { return len(s.questions) > 0 }

func hasOption(q models.Question, option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}
