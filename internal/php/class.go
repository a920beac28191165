package php

import (
	"slices"
	"unicode"
	"unicode/utf8"
)

// Visibility of a class member, as printed in reports.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// StatementType names a branch statement kind. Loops without a branch
// condition of their own (while) carry no statement; for and foreach count
// because they guard their body with an iteration condition.
type StatementType string

const (
	StatementIf      StatementType = "if"
	StatementElseif  StatementType = "elseif"
	StatementFor     StatementType = "for"
	StatementForeach StatementType = "foreach"
	StatementThrow   StatementType = "throw"
	StatementCatch   StatementType = "catch"
	StatementSwitch  StatementType = "switch"
	StatementMatch   StatementType = "match"
)

// Statement is one branch point inside a function body. Switch statements
// carry their case count plus any branch statements nested in the cases;
// match statements carry only their arm count.
type Statement struct {
	Kind     StatementType
	Line     int
	Cases    int
	Children []Statement
}

// Complexity scores one statement: match arms count each, switch counts its
// cases plus everything nested inside, and every other branch counts one.
func (s Statement) Complexity() int {
	switch s.Kind {
	case StatementMatch:
		return s.Cases
	case StatementSwitch:
		sum := s.Cases
		for _, child := range s.Children {
			sum += child.Complexity()
		}
		return sum
	default:
		return 1
	}
}

// Function is a method recovered from a class body.
type Function struct {
	Name       string
	Params     int
	ReturnType string // empty when not declared
	Visibility Visibility
	Abstract   bool
	Stmts      []Statement
}

// Complexity is the cyclomatic complexity: one plus the statement scores.
func (f Function) Complexity() int {
	sum := 1
	for _, s := range f.Stmts {
		sum += s.Complexity()
	}
	return sum
}

// Class is the structure skimmed from one PHP file. Name is namespace
// qualified with a backslash separator, so a file without a namespace
// produces a leading backslash.
type Class struct {
	Name         string
	Functions    []Function
	Extends      string // resolved, empty when the class extends nothing
	Implements   []string
	Abstract     bool
	Dependencies []string
}

// addFunction records a method, registering its return type as a dependency
// the same way a parameter type would be.
func (c *Class) addFunction(fn Function) {
	if fn.ReturnType != "" {
		c.addDependency(fn.ReturnType)
	}
	c.Functions = append(c.Functions, fn)
}

// addDependency keeps only class-like names: the first rune must be upper
// case, which drops scalar builtins, variables, and fully qualified names
// that kept their leading backslash.
func (c *Class) addDependency(dep string) {
	r, _ := utf8.DecodeRuneInString(dep)
	if r == utf8.RuneError || !unicode.IsUpper(r) {
		return
	}
	if slices.Contains(c.Dependencies, dep) {
		return
	}
	c.Dependencies = append(c.Dependencies, dep)
}

// AverageComplexity is the mean complexity of the class's functions,
// excluding the constructor. A class with only a constructor scores zero.
func (c *Class) AverageComplexity() float64 {
	if len(c.Functions) == 0 {
		return 0
	}
	var sum, n float64
	for _, fn := range c.Functions {
		if fn.Name == "__construct" {
			continue
		}
		sum += float64(fn.Complexity())
		n++
	}
	if n == 0 {
		n = 1
	}
	return sum / n
}

// MaxFunctionComplexity is the highest complexity across all functions,
// constructor included.
func (c *Class) MaxFunctionComplexity() int {
	highest := 0
	for _, fn := range c.Functions {
		highest = max(highest, fn.Complexity())
	}
	return highest
}
