package php

// BranchTally counts the branch-flavored tokens of one file. It is a
// lexical measure, so while and logical operators show up here even
// though neither scores cyclomatic complexity.
type BranchTally struct {
	If      int
	Elseif  int
	For     int
	Foreach int
	While   int
	Switch  int
	Match   int
	Case    int
	Throw   int
	Catch   int
	// Logic counts && and ||.
	Logic int
	// Comparisons counts == === != !== < <= > >=.
	Comparisons int
}

// Total sums every counter.
func (t BranchTally) Total() int {
	return t.If + t.Elseif + t.For + t.Foreach + t.While +
		t.Switch + t.Match + t.Case + t.Throw + t.Catch +
		t.Logic + t.Comparisons
}

// TallyBranches counts branch tokens across a token stream. Identifiers
// reached through -> or :: are member names, never keywords, and are not
// counted.
func TallyBranches(tokens []Token) BranchTally {
	var tally BranchTally
	for i, tok := range tokens {
		switch tok.Type {
		case TokenAnd, TokenOr:
			tally.Logic++
		case TokenEqualEqual, TokenEqualEqualEqual, TokenBangEqual, TokenBangEqualEqual,
			TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual:
			tally.Comparisons++
		case TokenIdentifier:
			if i > 0 && (tokens[i-1].Type == TokenArrow || tokens[i-1].Type == TokenDoubleColon) {
				continue
			}
			kw, ok := MatchKeyword(tok)
			if !ok {
				continue
			}
			switch kw {
			case KeywordIf:
				tally.If++
			case KeywordElseif:
				tally.Elseif++
			case KeywordFor:
				tally.For++
			case KeywordForeach:
				tally.Foreach++
			case KeywordWhile:
				tally.While++
			case KeywordSwitch:
				tally.Switch++
			case KeywordMatch:
				tally.Match++
			case KeywordCase:
				tally.Case++
			case KeywordThrow:
				tally.Throw++
			case KeywordCatch:
				tally.Catch++
			}
		}
	}
	return tally
}
