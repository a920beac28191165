// Package scan walks a PHP codebase, parses every class it can find, and
// indexes how often each class is depended on.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"tcpl/internal/php"
)

// Options controls what a Scanner reads and where it reports.
type Options struct {
	// Extensions lists the file suffixes worth parsing. Defaults to .php.
	Extensions []string
	// IgnorePatterns skips matching paths relative to the scan root.
	// Supports simple dir names (e.g. "vendor") and glob patterns
	// (e.g. "cache/*").
	IgnorePatterns []string
	Logger         *zap.Logger
}

// Scanner turns a directory tree into a Result.
type Scanner struct {
	extensions []string
	ignore     []string
	log        *zap.Logger
}

// New builds a Scanner, filling in defaults for anything unset.
func New(opts Options) *Scanner {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".php"}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{extensions: exts, ignore: opts.IgnorePatterns, log: log}
}

// source is one file read off disk, waiting to be parsed.
type source struct {
	path     string
	data     string
	accessed time.Time
}

// Scan runs the three passes over root: read every candidate file, parse
// each one into a class, then index dependency usage across the classes.
// Files that declare no class and files too corrupted to lex are left out
// of the result.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	res := &Result{Root: root, Usage: map[string]int{}}

	start := time.Now()
	sources, err := s.read(ctx, root)
	if err != nil {
		return nil, err
	}
	res.Stats.FilesRead = len(sources)
	res.Stats.ReadTime = time.Since(start)
	s.log.Info("Read source files",
		zap.Int("files", res.Stats.FilesRead),
		zap.Duration("took", res.Stats.ReadTime))

	start = time.Now()
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, ok := s.parse(src)
		if !ok {
			res.Stats.Skipped++
			continue
		}
		if file.Class == nil {
			continue
		}
		res.Files = append(res.Files, file)
	}
	res.Stats.ClassesFound = len(res.Files)
	res.Stats.ParseTime = time.Since(start)
	s.log.Info("Scanned and parsed source files",
		zap.Int("classes", res.Stats.ClassesFound),
		zap.Int("skipped", res.Stats.Skipped),
		zap.Duration("took", res.Stats.ParseTime))

	start = time.Now()
	for _, f := range res.Files {
		if _, ok := res.Usage[f.Class.Name]; !ok {
			res.Usage[f.Class.Name] = 0
		}
		for _, dep := range f.Class.Dependencies {
			res.Usage[dep]++
		}
	}
	res.Stats.IndexTime = time.Since(start)
	s.log.Info("Indexed classes",
		zap.Int("entries", len(res.Usage)),
		zap.Duration("took", res.Stats.IndexTime))

	return res, nil
}

// read collects every parseable file under root along with its access time.
func (s *Scanner) read(ctx context.Context, root string) ([]source, error) {
	var sources []source
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = d.Name()
		}
		if d.IsDir() {
			if path != root && isIgnoredRel(rel, d.Name(), s.ignore) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.wantsExtension(path) {
			return nil
		}
		if isIgnoredRel(rel, d.Name(), s.ignore) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.log.Warn("Skipping unreadable file", zap.String("path", path), zap.Error(err))
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("Skipping unreadable file", zap.String("path", path), zap.Error(err))
			return nil
		}
		sources = append(sources, source{
			path:     path,
			data:     string(data),
			accessed: lastAccessed(info),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

// parse lexes and parses one source. The bool is false when the file was
// too corrupted to read; a nil Class with true means the file simply
// declares no class.
func (s *Scanner) parse(src source) (File, bool) {
	tokens, err := php.Lex(src.data)
	if err != nil {
		s.log.Warn("Skipping file that does not lex", zap.String("path", src.path), zap.Error(err))
		return File{}, false
	}
	class, err := php.Parse(tokens)
	if err != nil {
		s.log.Warn("Skipping file that does not parse", zap.String("path", src.path), zap.Error(err))
		return File{}, false
	}
	lines := 0
	if len(tokens) > 0 {
		lines = tokens[len(tokens)-1].Line
	}
	return File{
		Path:         src.path,
		Lines:        lines,
		LastAccessed: src.accessed,
		Class:        class,
	}, true
}

func (s *Scanner) wantsExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range s.extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
