package php

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T, name string) *Class {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return parseSource(t, string(src))
}

func parseSource(t *testing.T, src string) *Class {
	t.Helper()
	tokens, err := Lex(src)
	require.NoError(t, err)
	class, err := Parse(tokens)
	require.NoError(t, err)
	require.NotNil(t, class)
	return class
}

func findFunction(t *testing.T, class *Class, name string) Function {
	t.Helper()
	for _, fn := range class.Functions {
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %q not found in %s", name, class.Name)
	return Function{}
}

func TestParseBar(t *testing.T) {
	class := parseFixture(t, "bar.php")

	assert.Equal(t, `\Bar`, class.Name)
	assert.Empty(t, class.Extends)
	assert.Empty(t, class.Implements)
	assert.False(t, class.Abstract)
	assert.Empty(t, class.Dependencies)
	require.Len(t, class.Functions, 9)

	assert.InDelta(t, 2.125, class.AverageComplexity(), 1e-9)
	assert.Equal(t, 5, class.MaxFunctionComplexity())

	// Most complex first, ties in declaration order.
	wantOrder := []string{
		"switcheroo", "printBar", "printFoobz", "firstLoop", "badStuff",
		"__construct", "getBar", "getFoobz", "poetry",
	}
	wantComplexity := []int{5, 3, 2, 2, 2, 1, 1, 1, 1}
	for i, fn := range class.Functions {
		assert.Equal(t, wantOrder[i], fn.Name)
		assert.Equal(t, wantComplexity[i], fn.Complexity())
	}
}

func TestParseBarConstructor(t *testing.T) {
	class := parseFixture(t, "bar.php")
	ctor := findFunction(t, class, "__construct")

	assert.Equal(t, 2, ctor.Params)
	assert.Equal(t, VisibilityPublic, ctor.Visibility)
	assert.Empty(t, ctor.ReturnType)
	assert.False(t, ctor.Abstract)
	assert.Empty(t, ctor.Stmts)
}

func TestParseBarAccessors(t *testing.T) {
	class := parseFixture(t, "bar.php")
	for _, name := range []string{"getBar", "getFoobz"} {
		fn := findFunction(t, class, name)
		assert.Equal(t, "string", fn.ReturnType)
		assert.Equal(t, 0, fn.Params)
		assert.Equal(t, 1, fn.Complexity())
	}
}

func TestParseBarBranches(t *testing.T) {
	class := parseFixture(t, "bar.php")

	printBar := findFunction(t, class, "printBar")
	require.Len(t, printBar.Stmts, 2)
	assert.Equal(t, StatementIf, printBar.Stmts[0].Kind)
	assert.Equal(t, StatementElseif, printBar.Stmts[1].Kind)

	printFoobz := findFunction(t, class, "printFoobz")
	require.Len(t, printFoobz.Stmts, 1)
	assert.Equal(t, StatementIf, printFoobz.Stmts[0].Kind)

	firstLoop := findFunction(t, class, "firstLoop")
	require.Len(t, firstLoop.Stmts, 1)
	assert.Equal(t, StatementForeach, firstLoop.Stmts[0].Kind)
}

func TestParseBarSwitcheroo(t *testing.T) {
	class := parseFixture(t, "bar.php")
	fn := findFunction(t, class, "switcheroo")

	require.Len(t, fn.Stmts, 2)
	assert.Equal(t, StatementMatch, fn.Stmts[0].Kind)
	assert.Equal(t, 2, fn.Stmts[0].Cases)
	assert.Equal(t, StatementSwitch, fn.Stmts[1].Kind)
	// default arms never count toward the score.
	assert.Equal(t, 2, fn.Stmts[1].Cases)
	assert.Empty(t, fn.Stmts[1].Children)
	assert.Equal(t, 5, fn.Complexity())
}

func TestParseBarThrow(t *testing.T) {
	class := parseFixture(t, "bar.php")
	fn := findFunction(t, class, "badStuff")

	assert.Equal(t, VisibilityPrivate, fn.Visibility)
	require.Len(t, fn.Stmts, 1)
	assert.Equal(t, StatementThrow, fn.Stmts[0].Kind)
	assert.Equal(t, 2, fn.Complexity())
}

// The corrupted copies differ only in surface text. None of the edits
// change the shape the parser recovers.
func TestParseCorruptedVariantsMatchPristine(t *testing.T) {
	pristine := parseFixture(t, "bar.php")
	variants := []string{"bar_no_new.php", "bar_match_echo.php", "bar_missing_semi.php"}
	for _, name := range variants {
		t.Run(name, func(t *testing.T) {
			variant := parseFixture(t, name)
			if diff := cmp.Diff(pristine, variant); diff != "" {
				t.Errorf("structure diverged (-pristine +variant):\n%s", diff)
			}
		})
	}
}

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
}
`

func TestParseNamespacedClass(t *testing.T) {
	class := parseSource(t, widgetSrc)

	assert.Equal(t, `App\Fixtures\Widget`, class.Name)
	assert.Equal(t, `App\Fixtures\Base`, class.Extends)
	// The parent lands on Extends only, never in Dependencies.
	assert.NotContains(t, class.Dependencies, `App\Fixtures\Base`)
	assert.Equal(t, []string{"Renderable"}, class.Implements)
	assert.False(t, class.Abstract)
}

func TestParseAliasedUseResolvesToRealPath(t *testing.T) {
	class := parseSource(t, widgetSrc)

	// Fmt resolves through the alias back to App\Support\Formatter.
	assert.Equal(t, []string{`App\Support\Clock`, `App\Support\Formatter`}, class.Dependencies)

	render := findFunction(t, class, "render")
	assert.Equal(t, 1, render.Params)
	assert.Equal(t, "string", render.ReturnType)
	require.Len(t, render.Stmts, 2)
	assert.Equal(t, StatementIf, render.Stmts[0].Kind)
	assert.Equal(t, StatementThrow, render.Stmts[1].Kind)
}

const registrySrc = `<?php

namespace App\Support;

abstract class Registry
{
    public const LIMIT = 5;

    private static function seed(): void
    {
        for ($i = 0; $i < 3; $i = $i + 1) {
            echo $i;
        }
    }

    abstract protected function lookup(): mixed;
}
`

func TestParseAbstractClass(t *testing.T) {
	class := parseSource(t, registrySrc)

	assert.Equal(t, `App\Support\Registry`, class.Name)
	assert.True(t, class.Abstract)
	require.Len(t, class.Functions, 2)

	seed := findFunction(t, class, "seed")
	assert.Equal(t, VisibilityPrivate, seed.Visibility)
	assert.False(t, seed.Abstract)
	require.Len(t, seed.Stmts, 1)
	assert.Equal(t, StatementFor, seed.Stmts[0].Kind)

	lookup := findFunction(t, class, "lookup")
	assert.True(t, lookup.Abstract)
	assert.Equal(t, VisibilityProtected, lookup.Visibility)
	assert.Equal(t, "mixed", lookup.ReturnType)
	assert.Equal(t, 1, lookup.Complexity())
}

const traitSrc = `<?php

namespace App\Support;

trait Loggy
{
    public function log(string $message): void
    {
        if ($message !== '') {
            echo $message;
        }
    }
}
`

func TestParseTrait(t *testing.T) {
	class := parseSource(t, traitSrc)

	assert.Equal(t, `App\Support\Loggy`, class.Name)
	assert.False(t, class.Abstract)

	log := findFunction(t, class, "log")
	assert.Equal(t, 1, log.Params)
	assert.Equal(t, 2, log.Complexity())
}

const traitUserSrc = `<?php

namespace App;

use App\Support\Loggy;

class Worker
{
    use Loggy;

    public function run(): void
    {
        foreach ($this->jobs as $job) {
            echo $job;
        }
    }
}
`

func TestParseTraitUseBecomesDependency(t *testing.T) {
	class := parseSource(t, traitUserSrc)

	assert.Equal(t, `App\Worker`, class.Name)
	assert.Equal(t, []string{`App\Support\Loggy`}, class.Dependencies)
}

const propertySrc = `<?php

namespace App;

use App\Support\Clock;

class Timed
{
    private Clock $clock;
    public readonly Registry $registry;
    protected int $count = 0;

    public function tick(): void
    {
        if ($this->count > 0) {
            echo $this->count;
        }
    }
}
`

func TestParseTypedProperties(t *testing.T) {
	class := parseSource(t, propertySrc)

	// Class-typed properties count, scalar-typed ones never do.
	assert.Equal(t, []string{`App\Support\Clock`, `App\Registry`}, class.Dependencies)
	require.Len(t, class.Functions, 1)
}

const nestedSrc = `<?php

class Gnarly
{
    public function tangle(int $mode): void
    {
        switch ($mode) {
            case 1:
                if ($mode === 1) {
                    echo 'one';
                }
                break;
            case 2:
                foreach ($this->items as $item) {
                    echo $item;
                }
                break;
        }
    }
}
`

func TestParseNestedSwitch(t *testing.T) {
	class := parseSource(t, nestedSrc)
	tangle := findFunction(t, class, "tangle")

	require.Len(t, tangle.Stmts, 1)
	sw := tangle.Stmts[0]
	assert.Equal(t, StatementSwitch, sw.Kind)
	assert.Equal(t, 2, sw.Cases)
	require.Len(t, sw.Children, 2)
	assert.Equal(t, StatementIf, sw.Children[0].Kind)
	assert.Equal(t, StatementForeach, sw.Children[1].Kind)
	assert.Equal(t, 4, sw.Complexity())
	assert.Equal(t, 5, tangle.Complexity())
}

const rootedSrc = `<?php

namespace App;

class Rooted extends \Vendor\Base
{
    public function wrap(\Vendor\Thing $thing): void
    {
        if ($thing === null) {
            echo 'nope';
        }
    }
}
`

func TestParseFullyQualifiedTypes(t *testing.T) {
	class := parseSource(t, rootedSrc)

	// A leading backslash keeps the name as written, and a name that
	// starts with a backslash fails the uppercase check, so it never
	// lands in the dependency list.
	assert.Equal(t, `\Vendor\Base`, class.Extends)
	assert.Empty(t, class.Dependencies)
}

func TestParseNoClass(t *testing.T) {
	tokens, err := Lex("<?php\necho 'just a script';\n")
	require.NoError(t, err)
	class, err := Parse(tokens)
	require.NoError(t, err)
	assert.Nil(t, class)
}

func TestParseInterfaceFileHasNoClass(t *testing.T) {
	src := `<?php

namespace App;

interface Renderable
{
    public function render(): string;
}
`
	tokens, err := Lex(src)
	require.NoError(t, err)
	class, err := Parse(tokens)
	require.NoError(t, err)
	assert.Nil(t, class)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unmatched bracket", "<?php class Foo { ) }"},
		{"unterminated switch", "<?php class Foo { public function f() { switch ($x) { case 1:"},
		{"unterminated match", "<?php class Foo { public function f() { $y = match ($x) {"},
		{"truncated class body", "<?php class Foo { public function f("},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tokens, err := Lex(tc.src)
			require.NoError(t, err)
			_, err = Parse(tokens)
			require.Error(t, err)
			var syntaxErr *SyntaxError
			assert.ErrorAs(t, err, &syntaxErr)
		})
	}
}
