package scan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tcpl/internal/php"
)

// File is one parsed source file and the class it declares.
type File struct {
	Path         string
	Lines        int
	LastAccessed time.Time
	// Commits is how many recent commits touched the file. Zero until
	// git annotation runs, and zero when the tree is not a repository.
	Commits int
	Class   *php.Class
}

// Stats records what each scan pass covered and how long it took.
type Stats struct {
	FilesRead    int
	ClassesFound int
	// Skipped counts files too corrupted to lex or parse. Files that
	// simply declare no class are not skipped, they are just absent.
	Skipped   int
	ReadTime  time.Duration
	ParseTime time.Duration
	IndexTime time.Duration
}

// Result is a scanned codebase: every class-bearing file plus the usage
// index. Usage maps a class name to how many classes depend on it; names
// appear even when only referenced, never declared.
type Result struct {
	Root  string
	Files []File
	Usage map[string]int
	Stats Stats
}

// Order names a ranking over scanned files.
type Order string

const (
	// OrderComplexity ranks by average cyclomatic complexity.
	OrderComplexity Order = "complexity"
	// OrderUsage ranks by how many other classes use the class.
	OrderUsage Order = "uses"
	// OrderDependencies ranks by how many classes the class depends on.
	OrderDependencies Order = "deps"
	// OrderMaxFunction ranks by the most complex single function.
	OrderMaxFunction Order = "max"
)

// ParseOrder maps a user-supplied name onto an Order.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderComplexity, OrderUsage, OrderDependencies, OrderMaxFunction:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (want complexity, uses, deps or max)", s)
	}
}

// Sort reorders Files in place, highest ranked first. Ties keep their
// scan order.
func (r *Result) Sort(order Order) {
	score := func(f File) float64 {
		switch order {
		case OrderUsage:
			return float64(r.Usage[f.Class.Name])
		case OrderDependencies:
			return float64(len(f.Class.Dependencies))
		case OrderMaxFunction:
			return float64(f.Class.MaxFunctionComplexity())
		default:
			return f.Class.AverageComplexity()
		}
	}
	sort.SliceStable(r.Files, func(i, j int) bool {
		return score(r.Files[i]) > score(r.Files[j])
	})
}

// Filter returns the files whose class name contains query, matched
// case-insensitively. An empty query returns every file.
func (r *Result) Filter(query string) []File {
	if query == "" {
		return r.Files
	}
	q := strings.ToLower(query)
	var out []File
	for _, f := range r.Files {
		if strings.Contains(strings.ToLower(f.Class.Name), q) {
			out = append(out, f)
		}
	}
	return out
}
