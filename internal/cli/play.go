package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizgame/internal/apiclient"
	"quizgame/internal/authsession"
	"quizgame/internal/game"
	"quizgame/internal/models"
)

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().String("questions", "", "Play questions from a local JSON file instead of the server")
	cmd.Flags().Bool("shuffle", false, "Shuffle question order")
	cmd.Flags().String("name", "", "Player name for guest scores")
	cmd.Flags().String("difficulty", "", "Difficulty recorded with the score (easy, medium, hard)")
	cmd.Flags().Bool("no-submit", false, "Do not submit the final score")
}

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd)
		},
	}
	addPlayFlags(cmd)
	return cmd
}

// apiScoreSink submits results with the session's token, if any.
type apiScoreSink struct {
	client  *apiclient.Client
	session *authsession.Session
}

func (s apiScoreSink) SubmitScore(ctx context.Context, req models.SubmitScoreRequest) (*models.Score, error) {
	return s.client.SubmitScore(ctx, s.session.Token(), req)
}

func runPlay(cmd *cobra.Command) error {
	a := appFrom(cmd)
	ctx := cmd.Context()

	var source game.QuestionSource = a.client
	if a.cfg.QuestionsFile != "" {
		source = game.FileSource{Path: a.cfg.QuestionsFile}
	}
	if a.cfg.Shuffle {
		source = game.Shuffled(source)
	}

	player := a.cfg.PlayerName
	opts := game.Options{PlayerName: player, Difficulty: a.cfg.Difficulty}

	// Local files are practice runs; only server games go on the leaderboard.
	if a.cfg.QuestionsFile == "" {
		if err := a.session.Restore(ctx); err != nil {
			a.logger.Warn("could not restore session", zap.Error(err))
		}
		if u := a.session.User(); u != nil {
			player = u.Username
		}
		if !a.cfg.NoSubmit {
			opts.Sink = apiScoreSink{client: a.client, session: a.session}
		}
	}

	g := game.New(source, opts)
	a.logger.Info("starting game", zap.Bool("local", a.cfg.QuestionsFile != ""), zap.String("difficulty", a.cfg.Difficulty))
	return a.loop(ctx, g, player)
}

// loop renders the current screen and applies one line of input at a time
// until the player quits or input ends.
func (a *app) loop(ctx context.Context, g *game.Game, player string) error {
	for {
		switch g.Screen() {
		case game.ScreenLoading:
			if err := g.Load(ctx); err != nil {
				a.logger.Warn("failed to load questions", zap.Error(err))
			}

		case game.ScreenLoadError:
			a.println(renderLoadError(g.LoadErr()))
			line, ok := a.prompt("[r]etry or [q]uit:")
			if !ok || isQuit(line) {
				return nil
			}
			if strings.EqualFold(line, "r") || line == "" {
				g.Retry(ctx)
			}

		case game.ScreenEmpty:
			a.println(renderEmpty())
			line, ok := a.prompt("[r]eload or [q]uit:")
			if !ok || isQuit(line) {
				return nil
			}
			g.Retry(ctx)

		case game.ScreenWelcome:
			a.println(renderWelcome(g.Session().Total(), player))
			line, ok := a.prompt("Press Enter to start (q to quit):")
			if !ok || isQuit(line) {
				return nil
			}
			if err := g.Start(); err != nil {
				return err
			}

		case game.ScreenQuestion:
			s := g.Session()
			a.println(renderQuestion(s))
			if !s.Answered() {
				line, ok := a.prompt("Your answer (letter, number or text, q to quit):")
				if !ok || isQuit(line) {
					return nil
				}
				q, _ := s.Current()
				option, found := resolveOption(q, line)
				if !found {
					a.println(errorStyle.Render("Pick one of the listed options."))
					continue
				}
				if _, err := g.Answer(option); err != nil {
					return err
				}
				continue
			}

			label := "Enter for Next Question:"
			if s.IsLast() {
				label = "Enter to Finish Quiz:"
			}
			line, ok := a.prompt(label)
			if !ok || isQuit(line) {
				return nil
			}
			if err := g.Next(ctx); err != nil {
				return err
			}
			if g.Screen() == game.ScreenFinished {
				a.logResult(g)
			}

		case game.ScreenFinished:
			a.println(renderFinished(g))
			line, ok := a.prompt("[r]estart or [q]uit:")
			if !ok || !strings.EqualFold(line, "r") {
				return nil
			}
			if err := g.Restart(); err != nil {
				return err
			}
		}
	}
}

func (a *app) logResult(g *game.Game) {
	fields := []zap.Field{
		zap.Int("score", g.Session().Score()),
		zap.Int("total", g.Session().Total()),
	}
	if err := g.SubmitErr(); err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			fields = append(fields, zap.Int("status", apiErr.Status))
		}
		a.logger.Warn("score submission failed", append(fields, zap.Error(err))...)
		return
	}
	a.logger.Info("game finished", fields...)
}

func isQuit(line string) bool {
	return strings.EqualFold(line, "q") || strings.EqualFold(line, "quit")
}

// resolveOption accepts the exact option text, then an option letter, then
// its 1-based number. Text wins so an option literally named "A" is never
// shadowed by the first option's label.
func resolveOption(q models.Question, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	for _, opt := range q.Options {
		if opt == input {
			return opt, true
		}
	}
	for i, opt := range q.Options {
		if strings.EqualFold(input, optionLabel(i)) {
			return opt, true
		}
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1], true
	}
	return "", false
}
