package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DaBoss786/medswipe/internal/identity"
	"github.com/DaBoss786/medswipe/internal/profile"
	"github.com/DaBoss786/medswipe/internal/questions"
	"github.com/DaBoss786/medswipe/internal/store"
)

// appEnv bundles the per-command dependencies: config, store and the
// caller's session. Built once at command start, closed on exit.
type appEnv struct {
	cfg   *viper.Viper
	store *store.Store
	sess  identity.Session
}

// openEnv loads configuration, opens the store and begins the session.
func openEnv(cmd *cobra.Command) (*appEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &appEnv{
		cfg:   cfg,
		store: st,
		sess:  identity.Begin(cfg.GetString("user_id")),
	}, nil
}

func (e *appEnv) Close() {
	if err := e.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to close store: %v\n", err)
	}
}

// loadConfig reads the optional YAML config, with MEDSWIPE_* env
// overrides. A missing config file is not an error.
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDSWIPE")
	v.AutomaticEnv()
	v.SetDefault("leaderboard_size", 10)

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolve home dir: %w", err)
			}
			configHome = filepath.Join(home, ".config")
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(configHome, "medswipe"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// loadBank fetches the configured question bank.
func (e *appEnv) loadBank(ctx context.Context) ([]questions.Question, error) {
	source := e.cfg.GetString("question_bank")
	if source == "" {
		return nil, errors.New("no question bank configured: set question_bank in the config file or MEDSWIPE_QUESTION_BANK")
	}
	return questions.Load(ctx, source)
}

// loadRecord reads the user's progress record, returning a fresh one if
// none exists yet.
func (e *appEnv) loadRecord(ctx context.Context) (*profile.Record, error) {
	rec := profile.NewRecord()
	err := e.store.Get(ctx, profile.UserDocPath(e.sess.UserID), rec)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	rec.EnsureDefaults()
	return rec, nil
}
