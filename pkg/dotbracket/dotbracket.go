// Package dotbracket tokenizes the dot-bracket(-plus) structure grammar
// (spec.md §4.1, §6):
//
//	structure = strand, { "+", strand } ;
//	strand    = { "(" | ")" | "." } ;   (* nonempty *)
//
// into a flat sequence of Tokens tagged Unpaired, OpenPair, ClosePair or
// StrandBreak, each carrying its source nucleotide index. Strand breaks do
// not consume an index (spec.md §3's Token invariant).
package dotbracket

import (
	"context"

	"cdr.dev/slog"
	"golang.org/x/xerrors"

	"github.com/rnaplot/rnaplot/internal/logging"
)

// Kind tags a Token.
type Kind int

const (
	Unpaired Kind = iota
	OpenPair
	ClosePair
	StrandBreak
)

func (k Kind) String() string {
	switch k {
	case Unpaired:
		return "Unpaired"
	case OpenPair:
		return "OpenPair"
	case ClosePair:
		return "ClosePair"
	case StrandBreak:
		return "StrandBreak"
	default:
		return "Unknown"
	}
}

// Token is one element of the tokenized structure string.
type Token struct {
	Index int
	Kind  Kind
}

// ErrorKind distinguishes the input-error cases of spec.md §4.1.
type ErrorKind int

const (
	UnbalancedBracket ErrorKind = iota
	InvalidCharacter
	EmptyStructure
	EmptyStrand
)

func (k ErrorKind) String() string {
	switch k {
	case UnbalancedBracket:
		return "UnbalancedBracket"
	case InvalidCharacter:
		return "InvalidCharacter"
	case EmptyStructure:
		return "EmptyStructure"
	case EmptyStrand:
		return "EmptyStrand"
	default:
		return "Unknown"
	}
}

// ParseError is a reported input error, per spec.md §7: it always carries
// the offending source index when one is meaningful (-1 otherwise).
type ParseError struct {
	Kind  ErrorKind
	Index int
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Index >= 0 {
		return xerrors.Errorf("dotbracket: %s at index %d: %s", e.Kind, e.Index, e.Msg).Error()
	}
	return xerrors.Errorf("dotbracket: %s: %s", e.Kind, e.Msg).Error()
}

func newErr(kind ErrorKind, index int, msg string) *ParseError {
	return &ParseError{Kind: kind, Index: index, Msg: msg}
}

// Tokenize performs the single left-to-right pass of spec.md §4.1: a stack
// of open-bracket indices, `(` pushes and `)` pops (the pairs themselves
// are matched later, by sstree), strand breaks emit a StrandBreak token
// without advancing the nucleotide index. At EOF the stack must be empty.
func Tokenize(ctx context.Context, raw string) ([]Token, error) {
	log := logging.FromContext(ctx).Named("dotbracket")

	if len(raw) == 0 {
		return nil, newErr(EmptyStructure, -1, "structure string is empty")
	}

	tokens := make([]Token, 0, len(raw))
	var stack []int
	idx := 0
	strandStart := true
	lastWasPlus := false

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch c {
		case '(':
			stack = append(stack, idx)
			tokens = append(tokens, Token{Index: idx, Kind: OpenPair})
			idx++
			strandStart = false
			lastWasPlus = false
		case ')':
			if len(stack) == 0 {
				return nil, newErr(UnbalancedBracket, i, "unmatched ')'")
			}
			stack = stack[:len(stack)-1]
			tokens = append(tokens, Token{Index: idx, Kind: ClosePair})
			idx++
			strandStart = false
			lastWasPlus = false
		case '.':
			tokens = append(tokens, Token{Index: idx, Kind: Unpaired})
			idx++
			strandStart = false
			lastWasPlus = false
		case '+':
			if strandStart {
				return nil, newErr(EmptyStrand, i, "strand break with no preceding strand content")
			}
			tokens = append(tokens, Token{Index: idx, Kind: StrandBreak})
			strandStart = true
			lastWasPlus = true
		default:
			return nil, newErr(InvalidCharacter, i, "character not in { (, ), ., + }")
		}
	}

	if lastWasPlus {
		return nil, newErr(EmptyStrand, len(raw), "trailing '+' with no following strand content")
	}
	if len(stack) != 0 {
		return nil, newErr(UnbalancedBracket, stack[len(stack)-1], "unmatched '('")
	}

	log.Debug(ctx, "tokenized structure", slog.F("tokens", len(tokens)), slog.F("nucleotides", idx))
	return tokens, nil
}
