package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"tcpl/internal/scan"
)

// statsCmd counts branch tokens per file
var statsCmd = &cobra.Command{
	Use:   "stats [path]",
	Short: "Count branch tokens per file",
	Long: `Counts the raw branching tokens in every file: if, elseif, for,
foreach, while, switch, match, case, throw, catch, boolean logic and
comparison operators. No parsing involved, so even files the parser
gives up on get a row.

The quick "where does this codebase branch" view.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Int("top", 0, "Show the top N files (0 uses the config default)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	tallies, err := newScanner(cfg).TallyBranches(cmdContext(cmd), root)
	if err != nil {
		return err
	}

	top := cfg.Report.TopFiles
	if cmd.Flags().Changed("top") {
		top, _ = cmd.Flags().GetInt("top")
	}
	if top > 0 && len(tallies) > top {
		tallies = tallies[:top]
	}
	if len(tallies) == 0 {
		fmt.Println("Nothing to count.")
		return nil
	}

	fmt.Println(tallyTable(tallies))
	return nil
}

// tallyTable renders the counts as a bordered table, one file per row,
// already sorted by total.
func tallyTable(tallies []scan.Tally) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	file := lipgloss.NewStyle().Padding(0, 1)
	count := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 0:
				return file
			default:
				return count
			}
		}).
		Headers("file", "if", "elseif", "for", "foreach", "while",
			"switch", "match", "case", "throw", "catch", "&&/||", "cmp", "total")

	for _, tl := range tallies {
		c := tl.Counts
		t.Row(tl.Path,
			strconv.Itoa(c.If), strconv.Itoa(c.Elseif), strconv.Itoa(c.For),
			strconv.Itoa(c.Foreach), strconv.Itoa(c.While), strconv.Itoa(c.Switch),
			strconv.Itoa(c.Match), strconv.Itoa(c.Case), strconv.Itoa(c.Throw),
			strconv.Itoa(c.Catch), strconv.Itoa(c.Logic), strconv.Itoa(c.Comparisons),
			strconv.Itoa(c.Total()))
	}
	return t.Render()
}
