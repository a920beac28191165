package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tcpl/internal/php"
)

// tokensCmd dumps the lexer output for one file
var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Dump the lexer output for one file",
	Long: `Prints one token per line: source line, token type, lexeme. The
fastest way to see what the lexer makes of a stubborn file.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	tokens, err := php.Lex(string(data))
	if err != nil {
		return fmt.Errorf("lex %s: %w", args[0], err)
	}
	for _, tok := range tokens {
		fmt.Printf("%5d  %-18s %s\n", tok.Line, tok.Type, tok.Lexeme)
	}
	return nil
}
