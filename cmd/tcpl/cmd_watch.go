package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tcpl/internal/report"
	"tcpl/internal/scan"
	"tcpl/internal/watch"
)

// watchTop bounds the compact listing printed after each rescan.
const watchTop = 5

// watchCmd rescans whenever the codebase changes
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Rescan whenever PHP files change",
	Long: `Scans once, then watches the tree and rescans after changes settle.
Each rescan prints a compact top-5 listing by the configured sort.

The debounce window comes from watch.debounce in the config file
(default 500ms). Ctrl-C stops.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("sort", "", "Sort order: complexity, uses, deps or max")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := newScanner(cfg)
	res, err := scanner.Scan(ctx, root)
	if err != nil {
		return err
	}
	res.Sort(order)
	report.New().Summary(os.Stdout, res.Stats)
	printCompact(os.Stdout, res, order)

	watcher, err := watch.New(watch.Options{
		Root:           root,
		Extensions:     cfg.Scan.Extensions,
		IgnorePatterns: cfg.Scan.IgnorePatterns,
		Debounce:       cfg.DebounceDuration(),
		OnSettle: func(paths []string) {
			logger.Info("Changes settled", zap.Int("files", len(paths)))
			res, err := scanner.Scan(ctx, root)
			if err != nil {
				logger.Warn("Rescan failed", zap.Error(err))
				return
			}
			res.Sort(order)
			printCompact(os.Stdout, res, order)
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Printf("Watching %s. Ctrl-C stops.\n", root)
	<-ctx.Done()

	stats := watcher.GetStats()
	fmt.Printf("\nSaw %d changes across %d rescans.\n",
		stats.Created+stats.Modified+stats.Deleted, stats.Rescans)
	return nil
}

// printCompact lists the top files one per line, the watch-loop sibling
// of the full report.
func printCompact(w io.Writer, res *scan.Result, order scan.Order) {
	n := watchTop
	if len(res.Files) < n {
		n = len(res.Files)
	}
	fmt.Fprintf(w, "\n%s  top %d by %s\n", time.Now().Format("15:04:05"), n, order)
	for i := 0; i < n; i++ {
		f := res.Files[i]
		c := f.Class
		fmt.Fprintf(w, "  %d. %-40s avg %.2f  max %d  used %d\n",
			i+1, c.Name, c.AverageComplexity(), c.MaxFunctionComplexity(),
			res.Usage[c.Name])
	}
}
