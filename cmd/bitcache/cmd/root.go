package cmd

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aweris/bitcache"
	"github.com/aweris/bitcache/internal/gitstore"
)

var rootCmd = &cobra.Command{
	Use:   "bitcache",
	Short: "Binary artifact cache backed by a git repository",
	Long: "Caches build binaries (bitstreams) in a git repository, keyed by the MD5 of\n" +
		"the source that produced them. Publishing and retrieval always work against\n" +
		"the remote's current state; concurrent publishers are reconciled by retrying.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/bitcache/config.yaml)")
	rootCmd.PersistentFlags().String("repo", "", "git URL of the artifact store")
	rootCmd.PersistentFlags().String("ssh-key", "", "SSH private key handed to the git transport")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log operation detail to stderr")

	viper.BindPFlag("repo", rootCmd.PersistentFlags().Lookup("repo"))
	viper.BindPFlag("ssh_key", rootCmd.PersistentFlags().Lookup("ssh-key"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BITCACHE")
	viper.AutomaticEnv()
	viper.SetDefault("max_attempts", bitcache.DefaultMaxAttempts)
	viper.SetDefault("backoff", bitcache.DefaultBackoff)
	viper.SetDefault("timeout", gitstore.DefaultTimeout)
	viper.SetDefault("compression_level", 2)

	viper.ReadInConfig()
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bitcache")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "bitcache")
	}
	return ".bitcache"
}

func newStore() (*gitstore.Store, error) {
	repo := viper.GetString("repo")
	if repo == "" {
		return nil, errors.New("no repository configured (use --repo, BITCACHE_REPO, or the config file)")
	}
	opts := []gitstore.Option{gitstore.WithTimeout(viper.GetDuration("timeout"))}
	if key := viper.GetString("ssh_key"); key != "" {
		opts = append(opts, gitstore.WithSSHKey(key))
	}
	return gitstore.New(repo, opts...), nil
}

func newLogger() *slog.Logger {
	var w io.Writer = io.Discard
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		w = os.Stderr
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func workflowOptions() []bitcache.Option {
	return []bitcache.Option{
		bitcache.WithMaxAttempts(viper.GetInt("max_attempts")),
		bitcache.WithBackoff(viper.GetDuration("backoff")),
		bitcache.WithLogger(newLogger()),
	}
}
