package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const widgetSrc = `<?php

namespace App\Fixtures;

use App\Support\Clock;
use App\Support\Formatter as Fmt;

class Widget extends Base implements Renderable
{
    public function __construct(private Clock $clock)
    {
    }

    public function render(Fmt $formatter): string
    {
        if ($formatter === null) {
            throw new \RuntimeException('no formatter');
        }
        return $formatter->format($this->clock->now());
    }
}`

const baseSrc = `<?php

namespace App\Fixtures;

abstract class Base
{
    public const VERSION = '1.0';

    public function describe(): string
    {
        if ($this->label() === '') {
            return 'unlabeled';
        }
        return $this->label();
    }

    abstract protected function label(): string;
}`

const dashboardSrc = `<?php

namespace App\Fixtures;

use App\Fixtures\Widget;

class Dashboard
{
    public function draw(Widget $widget): void
    {
        foreach ($widget->panels() as $panel) {
            switch ($panel) {
                case 'wide':
                    echo 'wide panel';
                    break;
                default:
                    echo 'narrow panel';
            }
        }
    }
}`

const renderableSrc = `<?php

namespace App\Fixtures;

interface Renderable
{
    public function render(): string;
}`

const brokenSrc = `<?php

class Broken
{
    public function oops(): void
    {
        echo 'this string never ends;
    }
}`

const junkSrc = `<?php

namespace Vendor\Junk;

class Junk
{
    public function noise(): void
    {
        if (true) {
            echo 'junk';
        }
    }
}`

// writeTree lays out a small codebase: three classes, one interface, one
// file that does not lex, one vendored file, and one non-PHP file.
func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		filepath.Join("app", "widget.php"):     widgetSrc,
		filepath.Join("app", "base.php"):       baseSrc,
		filepath.Join("app", "dashboard.php"):  dashboardSrc,
		filepath.Join("app", "renderable.php"): renderableSrc,
		"broken.php":                           brokenSrc,
		"notes.txt":                            "not php",
		filepath.Join("vendor", "junk.php"):    junkSrc,
	}
	for name, src := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	}
	return root
}

func scanTree(t *testing.T) *Result {
	t.Helper()
	root := writeTree(t)
	s := New(Options{IgnorePatterns: []string{"vendor"}, Logger: zap.NewNop()})
	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	return res
}

func classNames(files []File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Class.Name
	}
	return names
}

func TestScanCollectsClasses(t *testing.T) {
	res := scanTree(t)

	// vendor/ is ignored, notes.txt has the wrong extension.
	assert.Equal(t, 5, res.Stats.FilesRead)
	// broken.php does not lex.
	assert.Equal(t, 1, res.Stats.Skipped)
	// renderable.php declares no class, so three remain.
	assert.Equal(t, 3, res.Stats.ClassesFound)

	assert.Equal(t, []string{
		`App\Fixtures\Base`,
		`App\Fixtures\Dashboard`,
		`App\Fixtures\Widget`,
	}, classNames(res.Files))

	for _, f := range res.Files {
		assert.False(t, f.LastAccessed.IsZero(), f.Path)
		assert.Zero(t, f.Commits)
	}
}

func TestScanRecordsLineCounts(t *testing.T) {
	res := scanTree(t)

	lines := map[string]int{}
	for _, f := range res.Files {
		lines[filepath.Base(f.Path)] = f.Lines
	}
	assert.Equal(t, map[string]int{
		"base.php":      18,
		"dashboard.php": 21,
		"widget.php":    21,
	}, lines)
}

func TestScanResolvesDependencies(t *testing.T) {
	res := scanTree(t)

	var widget *File
	for i := range res.Files {
		if filepath.Base(res.Files[i].Path) == "widget.php" {
			widget = &res.Files[i]
		}
	}
	require.NotNil(t, widget)

	assert.Equal(t, `App\Fixtures\Base`, widget.Class.Extends)
	assert.Equal(t, []string{"Renderable"}, widget.Class.Implements)
	assert.Equal(t, []string{`App\Support\Clock`, `App\Support\Formatter`}, widget.Class.Dependencies)
}

func TestScanIndexesUsage(t *testing.T) {
	res := scanTree(t)

	// Clock and Formatter are referenced but never declared; they still
	// get usage entries. Extending Base does not count as using it.
	assert.Equal(t, map[string]int{
		`App\Fixtures\Base`:      0,
		`App\Fixtures\Dashboard`: 0,
		`App\Fixtures\Widget`:    1,
		`App\Support\Clock`:      1,
		`App\Support\Formatter`:  1,
	}, res.Usage)
}

func TestResultSort(t *testing.T) {
	cases := []struct {
		order Order
		want  []string
	}{
		{OrderComplexity, []string{`App\Fixtures\Dashboard`, `App\Fixtures\Widget`, `App\Fixtures\Base`}},
		{OrderUsage, []string{`App\Fixtures\Widget`, `App\Fixtures\Base`, `App\Fixtures\Dashboard`}},
		{OrderDependencies, []string{`App\Fixtures\Widget`, `App\Fixtures\Dashboard`, `App\Fixtures\Base`}},
		{OrderMaxFunction, []string{`App\Fixtures\Dashboard`, `App\Fixtures\Widget`, `App\Fixtures\Base`}},
	}
	for _, tc := range cases {
		t.Run(string(tc.order), func(t *testing.T) {
			res := scanTree(t)
			res.Sort(tc.order)
			assert.Equal(t, tc.want, classNames(res.Files))
		})
	}
}

func TestResultFilter(t *testing.T) {
	res := scanTree(t)

	assert.Equal(t, []string{`App\Fixtures\Widget`}, classNames(res.Filter("widget")))
	assert.Equal(t, []string{`App\Fixtures\Widget`}, classNames(res.Filter("WIDGET")))
	assert.Len(t, res.Filter(`app\fixtures`), 3)
	assert.Empty(t, res.Filter("nope"))
	assert.Len(t, res.Filter(""), 3)
}

func TestScanHonorsContext(t *testing.T) {
	root := writeTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(Options{Logger: zap.NewNop()})
	_, err := s.Scan(ctx, root)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanMissingRoot(t *testing.T) {
	s := New(Options{Logger: zap.NewNop()})
	_, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestParseOrder(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Order
	}{
		{"complexity", OrderComplexity},
		{"uses", OrderUsage},
		{"deps", OrderDependencies},
		{" Max ", OrderMaxFunction},
	} {
		got, err := ParseOrder(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseOrder("size")
	assert.Error(t, err)
}

func TestTallyBranches(t *testing.T) {
	root := writeTree(t)
	s := New(Options{IgnorePatterns: []string{"vendor"}, Logger: zap.NewNop()})

	tallies, err := s.TallyBranches(context.Background(), root)
	require.NoError(t, err)

	// broken.php does not lex; vendor/ and notes.txt never get read.
	require.Len(t, tallies, 4)

	names := make([]string, len(tallies))
	for i, tally := range tallies {
		names[i] = filepath.Base(tally.Path)
	}
	// dashboard and widget tie at three, walk order breaks the tie.
	assert.Equal(t, []string{"dashboard.php", "widget.php", "base.php", "renderable.php"}, names)

	dashboard := tallies[0].Counts
	assert.Equal(t, 1, dashboard.Foreach)
	assert.Equal(t, 1, dashboard.Switch)
	assert.Equal(t, 1, dashboard.Case)
	assert.Equal(t, 3, dashboard.Total())

	widget := tallies[1].Counts
	assert.Equal(t, 1, widget.If)
	assert.Equal(t, 1, widget.Throw)
	assert.Equal(t, 1, widget.Comparisons)

	assert.Zero(t, tallies[3].Counts.Total())
}

func TestIgnorePatterns(t *testing.T) {
	cases := []struct {
		name     string
		rel      string
		base     string
		patterns []string
		want     bool
	}{
		{"plain dir name", "vendor", "vendor", []string{"vendor"}, true},
		{"nested under dir", "vendor/pkg/a.php", "a.php", []string{"vendor"}, true},
		{"prefix form", "vendor/pkg", "pkg", []string{"vendor"}, true},
		{"glob", "cache/x.php", "x.php", []string{"cache/*"}, true},
		{"no match", "app/widget.php", "widget.php", []string{"vendor"}, false},
		{"empty pattern", "app", "app", []string{""}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isIgnoredRel(tc.rel, tc.base, tc.patterns))
		})
	}
}
