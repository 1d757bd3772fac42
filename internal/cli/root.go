package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"quizgame/internal/apiclient"
	"quizgame/internal/authsession"
	"quizgame/internal/logging"
)

// app carries what every command needs once flags and config are resolved.
type app struct {
	cfg     *Config
	logger  *zap.Logger
	client  *apiclient.Client
	session *authsession.Session
	stdin   io.Reader
	in      *bufio.Reader
	out     io.Writer
}

type appKey struct{}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "quiz",
		Short:         "Multiple-choice quiz in the terminal",
		Long:          "quiz plays multiple-choice quizzes served by a quiz server or read from a local file, with optional accounts and a leaderboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger := logging.NewFile(cfg.LogFile, cfg.Debug)
			client := apiclient.New(cfg.APIURL, nil)
			a := &app{
				cfg:     cfg,
				logger:  logger,
				client:  client,
				session: authsession.New(client, authsession.NewFileTokenStore(cfg.TokenFile), logger),
				stdin:   cmd.InOrStdin(),
				in:      bufio.NewReader(cmd.InOrStdin()),
				out:     cmd.OutOrStdout(),
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a := appFrom(cmd); a != nil {
				a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a config file (default <config dir>/quiz/config.yaml)")
	flags.String("api-url", "", "Quiz server base URL (overrides QUIZ_API_URL)")
	flags.String("token-file", "", "Where the login token is kept")
	flags.String("log-file", "", "Log file path")
	flags.Bool("debug", false, "Enable debug logging")

	addPlayFlags(rootCmd)

	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newScoresCmd())

	return rootCmd
}

func appFrom(cmd *cobra.Command) *app {
	if cmd.Context() == nil {
		return nil
	}
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}

// prompt prints label and returns the next input line. ok is false at end of
// input.
func (a *app) prompt(label string) (line string, ok bool) {
	fmt.Fprint(a.out, hintStyle.Render(label)+" ")
	text, err := a.in.ReadString('\n')
	if err != nil && text == "" {
		fmt.Fprintln(a.out)
		return "", false
	}
	return strings.TrimSpace(text), true
}

// flagOrPrompt returns the flag value, asking for it when it was not given.
func (a *app) flagOrPrompt(cmd *cobra.Command, name, label string) (string, error) {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v, nil
	}
	v, ok := a.prompt(label)
	if !ok {
		return "", fmt.Errorf("missing --%s", name)
	}
	return v, nil
}

// secretFlagOrPrompt is flagOrPrompt without echo when stdin is a terminal.
func (a *app) secretFlagOrPrompt(cmd *cobra.Command, name, label string) (string, error) {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v, nil
	}
	f, ok := a.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return a.flagOrPrompt(cmd, name, label)
	}

	fmt.Fprint(a.out, hintStyle.Render(label)+" ")
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s: %w", name, err)
	}
	return string(secret), nil
}
