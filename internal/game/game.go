package game

import (
	"context"
	"errors"
	"fmt"

	"quizgame/internal/models"
	"quizgame/internal/quiz"
)

// Screen is what the player is currently looking at.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenLoadError
	ScreenEmpty
	ScreenWelcome
	ScreenQuestion
	ScreenFinished
)

func (s Screen) String() string {
	switch s {
	case ScreenLoading:
		return "loading"
	case ScreenLoadError:
		return "load_error"
	case ScreenEmpty:
		return "empty"
	case ScreenWelcome:
		return "welcome"
	case ScreenQuestion:
		return "question"
	case ScreenFinished:
		return "finished"
	default:
		return "unknown"
	}
}

var ErrWrongScreen = errors.New("action not available on this screen")

type QuestionSource interface {
	FetchQuestions(ctx context.Context) ([]models.Question, error)
}

type ScoreSink interface {
	SubmitScore(ctx context.Context, req models.SubmitScoreRequest) (*models.Score, error)
}

type Options struct {
	PlayerName string
	Difficulty string
	// Sink receives the result of every finished run. Nil disables submission.
	Sink ScoreSink
}

// Game drives a quiz.Session through the screens of the quiz: loading the
// questions, the welcome card, one card per question and the final score.
type Game struct {
	source QuestionSource
	opts   Options

	session *quiz.Session
	screen  Screen
	loadErr error

	submitted bool
	submitErr error
	recorded  *models.Score
}

func New(source QuestionSource, opts Options) *Game {
	return &Game{
		source:  source,
		opts:    opts,
		session: quiz.NewSession(nil),
		screen:  ScreenLoading,
	}
}

// Load fetches the questions. Failure moves to ScreenLoadError.
func (g *Game) Load(ctx context.Context) error {
	g.screen = ScreenLoading
	g.loadErr = nil

	questions, err := g.source.FetchQuestions(ctx)
	if err != nil {
		g.loadErr = err
		g.screen = ScreenLoadError
		return err
	}

	g.session.Load(questions)
	g.resetSubmission()
	if g.session.HasQuestions() {
		g.screen = ScreenWelcome
	} else {
		g.screen = ScreenEmpty
	}
	return nil
}

// Retry reloads after a failed or empty load.
func (g *Game) Retry(ctx context.Context) error {
	if g.screen != ScreenLoadError && g.screen != ScreenEmpty {
		return ErrWrongScreen
	}
	return g.Load(ctx)
}

func (g *Game) Start() error {
	if g.screen != ScreenWelcome {
		return ErrWrongScreen
	}
	if err := g.session.Start(); err != nil {
		return err
	}
	g.screen = ScreenQuestion
	return nil
}

// Answer selects option for the current question and reports whether the
// first selection was correct.
func (g *Game) Answer(option string) (bool, error) {
	if g.screen != ScreenQuestion {
		return false, ErrWrongScreen
	}
	return g.session.Answer(option)
}

// Next moves to the following question, or to ScreenFinished after the last
// one, where the result is submitted once.
func (g *Game) Next(ctx context.Context) error {
	if g.screen != ScreenQuestion {
		return ErrWrongScreen
	}
	if err := g.session.Next(); err != nil {
		return err
	}
	if g.session.Phase() == quiz.PhaseFinished {
		g.screen = ScreenFinished
		g.submit(ctx)
	}
	return nil
}

func (g *Game) Restart() error {
	if g.screen != ScreenFinished && g.screen != ScreenQuestion {
		return ErrWrongScreen
	}
	g.session.Restart()
	g.resetSubmission()
	if g.session.Phase() == quiz.PhaseInProgress {
		g.screen = ScreenQuestion
	} else {
		g.screen = ScreenEmpty
	}
	return nil
}

func (g *Game) Screen() Screen { return g.screen }
func (g *Game) Session() *quiz.Session { return g.session }
func (g *Game) LoadErr() error { return g.loadErr }
func (g *Game) SubmitErr() error { return g.submitErr }
func (g *Game) Recorded() *models.Score { return g.recorded }

// Result is the submission for the current run.
func (g *Game) Result() models.SubmitScoreRequest {
	return models.SubmitScoreRequest{
		PlayerName: g.opts.PlayerName,
		Score:      g.session.Score(),
		Wrong:      g.session.Wrong(),
		Difficulty: g.opts.Difficulty,
	}
}

func (g *Game) submit(ctx context.Context) {
	if g.opts.Sink == nil || g.submitted {
		return
	}
	g.submitted = true

	score, err := g.opts.Sink.SubmitScore(ctx, g.Result())
	if err != nil {
		g.submitErr = fmt.Errorf("failed to submit score: %w", err)
		return
	}
	g.recorded = score
}

func (g *Game) resetSubmission() {
	g.submitted = false
	g.submitErr = nil
	g.recorded = nil
}
