package scan

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"tcpl/internal/php"
)

// Tally pairs one file with its branch-token counts.
type Tally struct {
	Path   string
	Counts php.BranchTally
}

// TallyBranches lexes every candidate file under root and counts its
// branch tokens, most branching first. Files that do not lex are skipped,
// same as in a full scan.
func (s *Scanner) TallyBranches(ctx context.Context, root string) ([]Tally, error) {
	sources, err := s.read(ctx, root)
	if err != nil {
		return nil, err
	}
	tallies := make([]Tally, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tokens, err := php.Lex(src.data)
		if err != nil {
			s.log.Warn("Skipping file that does not lex", zap.String("path", src.path), zap.Error(err))
			continue
		}
		tallies = append(tallies, Tally{Path: src.path, Counts: php.TallyBranches(tokens)})
	}
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].Counts.Total() > tallies[j].Counts.Total()
	})
	return tallies, nil
}
