package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tcpl/internal/config"
	"tcpl/internal/gitinfo"
	"tcpl/internal/report"
	"tcpl/internal/scan"
)

// scanCmd runs a one-shot scan and prints the ranked report
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a PHP codebase and rank its classes",
	Long: `Reads every PHP file under the given path (default: the current
directory), parses the classes, and prints a ranked report.

Sort orders:
  complexity - average cyclomatic complexity per class (default)
  uses       - how many other classes use the class
  deps       - how many classes the class depends on
  max        - the most complex single function`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	reportFlags(scanCmd)
	rootCmd.AddCommand(scanCmd)
}

// reportFlags registers the view flags shared by scan and browse.
func reportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("top", 0, "Show the top N files (0 uses the config default)")
	f.String("sort", "", "Sort order: complexity, uses, deps or max")
	f.Bool("deps", true, "List each class's dependencies")
	f.Bool("no-deps", false, "Hide the dependency lists")
	f.Int("functions", 0, "Show at most N functions per class (0 = all)")
	f.Bool("statements", true, "Show the branch statements inside each function")
	f.Bool("no-statements", false, "Hide the branch statements")
	f.String("query", "", "Only show classes whose name contains this substring")
	f.Int("git-depth", 0, "Annotate files with commit counts from the last N commits")
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	order, err := resolveOrder(cmd, cfg)
	if err != nil {
		return err
	}

	ctx := cmdContext(cmd)
	res, err := newScanner(cfg).Scan(ctx, root)
	if err != nil {
		return err
	}
	annotateCommits(ctx, root, res, resolveGitDepth(cmd, cfg))
	res.Sort(order)

	renderer := report.New()
	renderer.Summary(os.Stdout, res.Stats)
	renderer.Render(os.Stdout, res, reportOptions(cmd, cfg))
	return nil
}

// newScanner builds a scanner from the resolved config.
func newScanner(cfg *config.Config) *scan.Scanner {
	return scan.New(scan.Options{
		Extensions:     cfg.Scan.Extensions,
		IgnorePatterns: cfg.Scan.IgnorePatterns,
		Logger:         logger,
	})
}

// reportOptions folds the view flags over the config defaults. The
// negative flags win so that --no-deps beats a config file that asks
// for dependency lists.
func reportOptions(cmd *cobra.Command, cfg *config.Config) report.Options {
	opts := report.Options{
		Dependencies: cfg.Report.Dependencies,
		TopFiles:     cfg.Report.TopFiles,
		Functions:    cfg.Report.Functions,
		Statements:   cfg.Report.Statements,
	}
	f := cmd.Flags()
	if f.Changed("top") {
		opts.TopFiles, _ = f.GetInt("top")
	}
	if f.Changed("deps") {
		opts.Dependencies, _ = f.GetBool("deps")
	}
	if noDeps, _ := f.GetBool("no-deps"); noDeps {
		opts.Dependencies = false
	}
	if f.Changed("functions") {
		opts.Functions, _ = f.GetInt("functions")
	}
	if f.Changed("statements") {
		opts.Statements, _ = f.GetBool("statements")
	}
	if noStmts, _ := f.GetBool("no-statements"); noStmts {
		opts.Statements = false
	}
	if query, _ := f.GetString("query"); query != "" {
		opts.Query = query
	}
	return opts
}

// resolveOrder prefers the --sort flag over the config file.
func resolveOrder(cmd *cobra.Command, cfg *config.Config) (scan.Order, error) {
	name := cfg.Report.Sort
	if cmd.Flags().Changed("sort") {
		name, _ = cmd.Flags().GetString("sort")
	}
	if name == "" {
		return scan.OrderComplexity, nil
	}
	return scan.ParseOrder(name)
}

// resolveGitDepth prefers the --git-depth flag over the config file.
func resolveGitDepth(cmd *cobra.Command, cfg *config.Config) int {
	if cmd.Flags().Changed("git-depth") {
		depth, _ := cmd.Flags().GetInt("git-depth")
		return depth
	}
	return cfg.Git.Depth
}

// annotateCommits folds commit counts into the result. Running outside a
// repository is fine, the report just goes without the commit lines.
func annotateCommits(ctx context.Context, root string, res *scan.Result, depth int) {
	if depth <= 0 {
		return
	}
	repo, err := gitinfo.Open(root, logger)
	if err != nil {
		if errors.Is(err, gitinfo.ErrNoRepository) {
			logger.Debug("No git repository above scan root", zap.String("root", root))
		} else {
			logger.Warn("Skipping git annotation", zap.Error(err))
		}
		return
	}
	if err := repo.Annotate(ctx, res, depth); err != nil {
		logger.Warn("Skipping git annotation", zap.Error(err))
		return
	}
	if summary, err := repo.Summarize(); err == nil {
		fmt.Printf("Commit counts from %s, last %d commits.\n", summary.Branch, depth)
	}
}
