package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"tcpl/internal/config"
)

// initCmd writes the default config file
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default " + config.FileName,
	Long: `Writes the default configuration to ` + config.FileName + ` in the given
directory (default: the current directory). Refuses to overwrite an
existing file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	path := filepath.Join(root, config.FileName)
	if err := config.DefaultConfig().SaveNew(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
