package game

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizgame/internal/models"
)

var sampleQuestions = []models.Question{
	{ID: 1, Text: "2 + 2?", Options: []string{"3", "4"}, Answer: "4"},
	{ID: 2, Text: "Capital of France?", Options: []string{"Paris", "Rome"}, Answer: "Paris"},
	{ID: 3, Text: "Largest planet?", Options: []string{"Mars", "Jupiter"}, Answer: "Jupiter"},
}

type fakeSource struct {
	questions []models.Question
	errs      []error
	calls     int
}

func (f *fakeSource) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.questions, nil
}

type fakeSink struct {
	requests []models.SubmitScoreRequest
	err      error
}

func (f *fakeSink) SubmitScore(ctx context.Context, req models.SubmitScoreRequest) (*models.Score, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Score{PlayerName: req.PlayerName, Score: req.Score}, nil
}

func playThrough(t *testing.T, g *Game, answers ...string) {
	t.Helper()
	for _, a := range answers {
		_, err := g.Answer(a)
		require.NoError(t, err)
		require.NoError(t, g.Next(context.Background()))
	}
}

func TestLoad_FailureThenRetry(t *testing.T) {
	src := &fakeSource{questions: sampleQuestions, errs: []error{errors.New("connection refused")}}
	g := New(src, Options{})

	err := g.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, ScreenLoadError, g.Screen())
	assert.EqualError(t, g.LoadErr(), "connection refused")

	require.NoError(t, g.Retry(context.Background()))
	assert.Equal(t, ScreenWelcome, g.Screen())
	assert.Nil(t, g.LoadErr())
	assert.Equal(t, 2, src.calls)
}

func TestLoad_Empty(t *testing.T) {
	g := New(&fakeSource{}, Options{})
	require.NoError(t, g.Load(context.Background()))
	assert.Equal(t, ScreenEmpty, g.Screen())
	assert.ErrorIs(t, g.Start(), ErrWrongScreen)
}

func TestRetry_OnlyAfterFailure(t *testing.T) {
	g := New(&fakeSource{questions: sampleQuestions}, Options{})
	require.NoError(t, g.Load(context.Background()))
	assert.ErrorIs(t, g.Retry(context.Background()), ErrWrongScreen)
}

func TestFullRun_SubmitsOnce(t *testing.T) {
	sink := &fakeSink{}
	g := New(&fakeSource{questions: sampleQuestions}, Options{PlayerName: "alice", Difficulty: "medium", Sink: sink})
	require.NoError(t, g.Load(context.Background()))
	require.NoError(t, g.Start())
	assert.Equal(t, ScreenQuestion, g.Screen())

	playThrough(t, g, "4", "Rome", "Jupiter")

	assert.Equal(t, ScreenFinished, g.Screen())
	assert.Equal(t, 100, g.Session().ProgressPercent())
	require.Len(t, sink.requests, 1)
	assert.Equal(t, models.SubmitScoreRequest{PlayerName: "alice", Score: 2, Wrong: 1, Difficulty: "medium"}, sink.requests[0])
	assert.NotNil(t, g.Recorded())

	assert.ErrorIs(t, g.Next(context.Background()), ErrWrongScreen)
	assert.Len(t, sink.requests, 1)
}

func TestRestart_SubmitsAgainForNewRun(t *testing.T) {
	sink := &fakeSink{}
	g := New(&fakeSource{questions: sampleQuestions}, Options{Sink: sink})
	require.NoError(t, g.Load(context.Background()))
	require.NoError(t, g.Start())
	playThrough(t, g, "4", "Paris", "Jupiter")

	require.NoError(t, g.Restart())
	assert.Equal(t, ScreenQuestion, g.Screen())
	assert.Equal(t, 0, g.Session().Score())
	assert.Equal(t, 0, g.Session().Index())
	assert.Nil(t, g.Recorded())

	playThrough(t, g, "3", "Rome", "Mars")
	require.Len(t, sink.requests, 2)
	assert.Equal(t, 0, sink.requests[1].Score)
	assert.Equal(t, 3, sink.requests[1].Wrong)
}

func TestSubmitFailureDoesNotChangeGame(t *testing.T) {
	sink := &fakeSink{err: errors.New("server down")}
	g := New(&fakeSource{questions: sampleQuestions[:1]}, Options{Sink: sink})
	require.NoError(t, g.Load(context.Background()))
	require.NoError(t, g.Start())
	playThrough(t, g, "4")

	assert.Equal(t, ScreenFinished, g.Screen())
	assert.Equal(t, 1, g.Session().Score())
	require.Error(t, g.SubmitErr())
	assert.Nil(t, g.Recorded())
}

func TestNoSink(t *testing.T) {
	g := New(&fakeSource{questions: sampleQuestions[:1]}, Options{})
	require.NoError(t, g.Load(context.Background()))
	require.NoError(t, g.Start())
	playThrough(t, g, "3")

	assert.Equal(t, ScreenFinished, g.Screen())
	assert.NoError(t, g.SubmitErr())
	assert.Equal(t, 0, g.Result().Score)
	assert.Equal(t, 1, g.Result().Wrong)
}

func TestAnswerOutsideQuestionScreen(t *testing.T) {
	g := New(&fakeSource{questions: sampleQuestions}, Options{})
	require.NoError(t, g.Load(context.Background()))
	_, err := g.Answer("4")
	assert.ErrorIs(t, err, ErrWrongScreen)
}

func TestFileSourceAndShuffled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	data := `[{"question":"2 + 2?","options":["3","4"],"answer":"4"},{"question":"1 + 1?","options":["2","3"],"answer":"2"}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	qs, err := Shuffled(FileSource{Path: path}).FetchQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.ElementsMatch(t, []string{"2 + 2?", "1 + 1?"}, []string{qs[0].Text, qs[1].Text})

	_, err = Shuffled(FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}).FetchQuestions(context.Background())
	require.Error(t, err)
}

func TestScreenString(t *testing.T) {
	assert.Equal(t, "load_error", ScreenLoadError.String())
	assert.Equal(t, "finished", ScreenFinished.String())
	assert.Equal(t, "unknown", Screen(42).String())
}

func TestResult_SkippedQuestionsMatchSession(t *testing.T) {
	g := New(&fakeSource{questions: sampleQuestions}, Options{})
	require.NoError(t, g.Load(context.Background()))
	require.NoError(t, g.Start())

	_, err := g.Answer("4")
	require.NoError(t, err)
	require.NoError(t, g.Next(context.Background()))
	require.NoError(t, g.Next(context.Background()))

	assert.Equal(t, 1, g.Result().Score)
	assert.Equal(t, 1, g.Result().Wrong)
	assert.Equal(t, g.Session().Wrong(), g.Result().Wrong)
}
