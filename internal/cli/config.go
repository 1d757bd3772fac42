package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"quizgame/internal/models"
	"quizgame/pkg/validator"
)

type Config struct {
	APIURL        string `mapstructure:"api_url" validate:"required,url"`
	TokenFile     string `mapstructure:"token_file"`
	LogFile       string `mapstructure:"log_file"`
	Debug         bool   `mapstructure:"debug"`
	QuestionsFile string `mapstructure:"questions_file"`
	Shuffle       bool   `mapstructure:"shuffle"`
	PlayerName    string `mapstructure:"player_name" validate:"max=100"`
	Difficulty    string `mapstructure:"difficulty" validate:"oneof=easy medium hard"`
	NoSubmit      bool   `mapstructure:"no_submit"`
}

// flagKeys maps config keys to the cobra flags that override them.
var flagKeys = map[string]string{
	"api_url":        "api-url",
	"token_file":     "token-file",
	"log_file":       "log-file",
	"debug":          "debug",
	"questions_file": "questions",
	"shuffle":        "shuffle",
	"player_name":    "name",
	"difficulty":     "difficulty",
	"no_submit":      "no-submit",
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "quiz"), nil
}

// loadConfig layers flags over QUIZ_* environment variables over the config
// file over defaults.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	v.SetDefault("api_url", "http://localhost:8000")
	v.SetDefault("token_file", filepath.Join(dir, "token.json"))
	v.SetDefault("log_file", filepath.Join(dir, "quiz.log"))
	v.SetDefault("debug", false)
	v.SetDefault("questions_file", "")
	v.SetDefault("shuffle", false)
	v.SetDefault("player_name", "")
	v.SetDefault("difficulty", models.DifficultyEasy)
	v.SetDefault("no_submit", false)

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.ValidateStruct(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
