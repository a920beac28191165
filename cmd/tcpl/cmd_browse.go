package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tcpl/cmd/tcpl/ui"
)

// browseCmd scans and then opens the interactive browser
var browseCmd = &cobra.Command{
	Use:   "browse [path]",
	Short: "Browse scan results interactively",
	Long: `Scans like the scan command, then opens a full-screen browser over
the results.

Keys: / filters by class name, s cycles the sort order, enter opens a
class, d and f toggle dependency and statement display, c copies the
selected path, q quits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	reportFlags(browseCmd)
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
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
	if len(res.Files) == 0 {
		fmt.Println("Nothing to browse.")
		return nil
	}
	annotateCommits(ctx, root, res, resolveGitDepth(cmd, cfg))

	return ui.Run(res, order, reportOptions(cmd, cfg))
}
