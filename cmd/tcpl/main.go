// Package main implements the tcpl command line interface.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tcpl/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger   *zap.Logger
	logLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tcpl",
	Short: "tcpl - tolerant cyclomatic complexity scanner for PHP",
	Long: `tcpl reads a PHP codebase, measures the cyclomatic complexity of every
class it can find, and ranks the results so the scariest files surface
first.

The parser is deliberately tolerant: a file that no longer parses as a
whole still contributes whatever can be salvaged from it. Point tcpl at
a legacy codebase and start reading from the top.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg = zap.NewDevelopmentConfig()
			logLevel.SetLevel(zapcore.DebugLevel)
		}
		zcfg.Level = logLevel
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// versionCmd prints the build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tcpl %s\n", buildVersion())
	},
}

// buildVersion reads the module version and VCS revision stamped into
// the binary.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(unknown)"
	}
	version := info.Main.Version
	if version == "" {
		version = "(devel)"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 12 {
			return version + " (" + s.Value[:12] + ")"
		}
	}
	return version
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <root>/"+config.FileName+")")
	rootCmd.Version = buildVersion()
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cmdContext returns the command's context, falling back to Background
// for handlers called outside Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// resolveRoot turns the optional positional argument into an absolute
// scan root, defaulting to the current directory.
func resolveRoot(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("scan root %s is not a directory", root)
	}
	return root, nil
}

// loadConfig reads the config that applies to root. The file's log level
// takes effect here unless --verbose already forced Debug.
func loadConfig(root string) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(root, config.FileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if !verbose {
		if lvl, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
			logLevel.SetLevel(lvl)
		}
	}
	logger.Debug("Configuration resolved",
		zap.String("path", path),
		zap.Strings("extensions", cfg.Scan.Extensions),
		zap.Strings("ignore", cfg.Scan.IgnorePatterns))
	return cfg, nil
}
