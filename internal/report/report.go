// Package report renders scan results as ranked, human-readable text.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"

	"tcpl/internal/php"
	"tcpl/internal/scan"
)

// Options controls how much of each file a report shows.
type Options struct {
	// Dependencies lists every dependency under its file.
	Dependencies bool
	// TopFiles caps how many files are shown. Zero shows them all.
	TopFiles int
	// Functions caps how many functions are shown per class. Zero shows
	// them all.
	Functions int
	// Statements prints the branch statements under each function.
	Statements bool
	// Query keeps only classes whose name contains it.
	Query string
}

// DefaultOptions shows ten files with everything visible.
func DefaultOptions() Options {
	return Options{Dependencies: true, TopFiles: 10, Statements: true}
}

// Renderer writes reports with a fixed style set.
type Renderer struct {
	styles Styles
}

// New returns a Renderer in terminal colors.
func New() *Renderer {
	return &Renderer{styles: DefaultStyles()}
}

// NewPlain returns a Renderer without any styling.
func NewPlain() *Renderer {
	return &Renderer{styles: PlainStyles()}
}

// Render writes one block per file, highest ranked first. Files are taken
// in their current order, so sort the result before rendering.
func (r *Renderer) Render(w io.Writer, res *scan.Result, opts Options) {
	r.title(w, "Top Files")
	files := res.Filter(opts.Query)
	if opts.TopFiles > 0 && len(files) > opts.TopFiles {
		files = files[:opts.TopFiles]
	}
	for i, f := range files {
		r.File(w, i+1, f, res.Usage, opts)
	}
	if len(files) == 0 {
		fmt.Fprintln(w, "Nothing matched.")
	}
}

func (r *Renderer) title(w io.Writer, text string) {
	fmt.Fprintf(w, "\n* --- %s --- *\n\n", r.styles.Title.Render(text))
}

// File writes the block for a single ranked file.
func (r *Renderer) File(w io.Writer, rank int, f scan.File, usage map[string]int, opts Options) {
	class := f.Class
	fmt.Fprintln(w, r.styles.Header.Render(fmt.Sprintf("%d. %s", rank, class.Name)))
	fmt.Fprintf(w, "Last accessed %s\n", humanize.Time(f.LastAccessed))
	fmt.Fprintf(w, "Path: %s\n", f.Path)
	fmt.Fprintf(w, "Lines: %d\n", f.Lines)
	if f.Commits > 0 {
		fmt.Fprintf(w, "Recent commits: %d\n", f.Commits)
	}
	fmt.Fprintf(w, "Used in %d places\n", usage[class.Name])

	if len(class.Dependencies) == 0 {
		fmt.Fprintln(w, "No dependencies")
	} else {
		fmt.Fprintf(w, "Dependencies: %d\n", len(class.Dependencies))
		if opts.Dependencies {
			fmt.Fprintln(w, r.styles.Divider.Render("* ------ *"))
			for i, dep := range class.Dependencies {
				fmt.Fprintf(w, "  %d. %s\n", i+1, dep)
			}
		}
	}

	avg := class.AverageComplexity()
	max := class.MaxFunctionComplexity()
	fmt.Fprintf(w, "Average cyclomatic complexity: %s\n",
		r.styles.complexityStyle(avg).Render(formatFloat(avg)))
	fmt.Fprintf(w, "Max cyclomatic complexity: %s\n",
		r.styles.complexityStyle(float64(max)).Render(strconv.Itoa(max)))
	fmt.Fprintf(w, "Functions: %d\n", len(class.Functions))

	extends := class.Extends
	if extends == "" {
		extends = "None"
	}
	fmt.Fprintf(w, "Extends: %s\n", extends)
	if len(class.Implements) == 0 {
		fmt.Fprintln(w, "Implements: None")
	} else {
		fmt.Fprintln(w, "Implements:")
		for i, iface := range class.Implements {
			fmt.Fprintf(w, " %d. %s\n", i+1, iface)
		}
	}
	fmt.Fprintf(w, "Abstract: %t\n", class.Abstract)

	functions := class.Functions
	if opts.Functions > 0 && len(functions) > opts.Functions {
		functions = functions[:opts.Functions]
	}
	for _, fn := range functions {
		cx := fn.Complexity()
		fmt.Fprintln(w, r.styles.Divider.Render("* -------- *"))
		fmt.Fprintf(w, "  Name: %s\n", fn.Name)
		fmt.Fprintf(w, "  Visibility: %s\n", fn.Visibility)
		fmt.Fprintf(w, "  Return type: %s\n", returnType(fn))
		fmt.Fprintf(w, "  Param count: %d\n", fn.Params)
		fmt.Fprintf(w, "  Cyclomatic complexity: %s\n",
			r.styles.complexityStyle(float64(cx)).Render(strconv.Itoa(cx)))
		if opts.Statements {
			for _, st := range fn.Stmts {
				fmt.Fprintf(w, "  %s\n", FormatStatement(st))
			}
		}
	}
	fmt.Fprintln(w, r.styles.Divider.Render("* ---------- *"))
}

// Summary prints the phase lines a scan finishes with.
func (r *Renderer) Summary(w io.Writer, stats scan.Stats) {
	fmt.Fprintf(w, "Finished reading %s files in %.2f seconds.\n",
		humanize.Comma(int64(stats.FilesRead)), stats.ReadTime.Seconds())
	fmt.Fprintf(w, "Parsed %s classes (%d skipped) in %.2f seconds.\n",
		humanize.Comma(int64(stats.ClassesFound)), stats.Skipped, stats.ParseTime.Seconds())
}

// Overview summarizes a whole scan: corpus counts, the heaviest function,
// and the most depended-on classes.
func (r *Renderer) Overview(w io.Writer, res *scan.Result) {
	r.title(w, "Scan Overview")
	fmt.Fprintf(w, "Root: %s\n", res.Root)
	fmt.Fprintf(w, "Files read: %d\n", res.Stats.FilesRead)
	fmt.Fprintf(w, "Classes found: %d\n", res.Stats.ClassesFound)
	fmt.Fprintf(w, "Files skipped: %d\n", res.Stats.Skipped)

	var functions, edges, abstracts int
	var worst string
	var worstScore int
	for _, f := range res.Files {
		functions += len(f.Class.Functions)
		edges += len(f.Class.Dependencies)
		if f.Class.Abstract {
			abstracts++
		}
		for _, fn := range f.Class.Functions {
			if cx := fn.Complexity(); cx > worstScore {
				worstScore = cx
				worst = f.Class.Name + "::" + fn.Name
			}
		}
	}
	fmt.Fprintf(w, "Functions: %d\n", functions)
	fmt.Fprintf(w, "Abstract classes: %d\n", abstracts)
	fmt.Fprintf(w, "Dependency edges: %d\n", edges)
	if worst != "" {
		fmt.Fprintf(w, "Most complex function: %s (%d)\n", worst, worstScore)
	}
	fmt.Fprintf(w, "Timings: read %s, parse %s, index %s\n",
		res.Stats.ReadTime, res.Stats.ParseTime, res.Stats.IndexTime)

	r.title(w, "Most Used Classes")
	for i, e := range topUsage(res.Usage, 5) {
		fmt.Fprintf(w, "  %d. %s (%d)\n", i+1, e.name, e.count)
	}
}

type usageEntry struct {
	name  string
	count int
}

// topUsage ranks the usage index by count, ties alphabetical.
func topUsage(usage map[string]int, n int) []usageEntry {
	entries := make([]usageEntry, 0, len(usage))
	for name, count := range usage {
		entries = append(entries, usageEntry{name: name, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// FormatStatement renders one branch statement, nesting switch children.
func FormatStatement(st php.Statement) string {
	switch st.Kind {
	case php.StatementSwitch:
		s := fmt.Sprintf("switch (line %d): %d cases", st.Line, st.Cases)
		for _, child := range st.Children {
			s += "\n    " + FormatStatement(child)
		}
		return s
	case php.StatementMatch:
		return fmt.Sprintf("match (line %d): %d arms", st.Line, st.Cases)
	default:
		return fmt.Sprintf("%s (line %d)", st.Kind, st.Line)
	}
}

func returnType(fn php.Function) string {
	if fn.Name == "__construct" {
		return "self"
	}
	if fn.ReturnType == "" {
		return "Not provided"
	}
	return fn.ReturnType
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
