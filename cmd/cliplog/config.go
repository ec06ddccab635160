package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/ipc"
	"go.klb.dev/cliplog/internal/logging"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPLOG_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPLOG_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("cliplog")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/cliplog/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/cliplog", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for the daemon, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addStorageFlags adds the flags locating the history, lock and socket.
func addStorageFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("data-dir", defaultDataDir(), "directory holding the history and lock files")
	f.String("history-file", "", "history file (default: <data-dir>/history.json)")
	f.String("lock-file", "", "single-instance lock file (default: <data-dir>/cliplog.lock)")
	f.String("socket", "", "daemon IPC socket (default: derived from the lock file, under $XDG_RUNTIME_DIR or the temp dir)")
}

// addClientFlags adds everything a command talking to the daemon needs.
func addClientFlags(cmd *cobra.Command) {
	addStorageFlags(cmd)
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: warn)")
	addConfigFlag(cmd)
}

// setupLogging reads logging flags from viper and configures slog for the
// daemon.
func setupLogging(v *viper.Viper) {
	p := logging.Daemon
	p.Interactive = v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	logging.Setup(p, v.GetString("log-format"), v.GetString("log-level"))
}

// setupClientLogging keeps one-shot commands quiet unless asked otherwise.
func setupClientLogging(v *viper.Viper) {
	logging.Setup(logging.Command, v.GetString("log-format"), v.GetString("log-level"))
}

type paths struct {
	history string
	lock    string
	socket  string
}

func resolvePaths(v *viper.Viper) paths {
	dir := v.GetString("data-dir")
	p := paths{
		history: v.GetString("history-file"),
		lock:    v.GetString("lock-file"),
		socket:  v.GetString("socket"),
	}
	if p.history == "" {
		p.history = filepath.Join(dir, "history.json")
	}
	if p.lock == "" {
		p.lock = filepath.Join(dir, "cliplog.lock")
	}
	p.history = absPath(p.history)
	p.lock = absPath(p.lock)
	if p.socket == "" {
		p.socket = ipc.SocketPath(p.lock)
	}
	return p
}

// absPath makes the history and lock paths comparable with what a daemon
// reports, whatever directory the command runs from.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "cliplog")
	}
	return filepath.Join(os.TempDir(), "cliplog")
}
