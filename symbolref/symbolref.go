// Package symbolref implements the external SymbolRef string grammar:
// <file_path>:<start_line>#<name>, plus the path-suffix matching rule used
// to compare refs across relative/absolute path conventions.
package symbolref

import (
	"fmt"
	"strconv"
	"strings"
)

// SymbolRef is a parsed external reference to a definition.
type SymbolRef struct {
	FilePath  string
	StartLine int
	Name      string
}

// String formats ref back into its canonical grammar.
func (r SymbolRef) String() string {
	return fmt.Sprintf("%s:%d#%s", r.FilePath, r.StartLine, r.Name)
}

// ErrInvalid is returned by Parse for malformed input.
type ErrInvalid struct{ Input string }

func (e *ErrInvalid) Error() string { return fmt.Sprintf("invalid symbol ref: %q", e.Input) }

// Parse splits a SymbolRef string. file_path may itself contain colons
// (Windows drive letters); the parser splits on the last ':' that precedes
// the '#' separator, not the first.
func Parse(s string) (SymbolRef, error) {
	hash := strings.LastIndexByte(s, '#')
	if hash < 0 {
		return SymbolRef{}, &ErrInvalid{Input: s}
	}
	head, name := s[:hash], s[hash+1:]
	if name == "" {
		return SymbolRef{}, &ErrInvalid{Input: s}
	}

	colon := strings.LastIndexByte(head, ':')
	if colon < 0 {
		return SymbolRef{}, &ErrInvalid{Input: s}
	}
	filePath, lineStr := head[:colon], head[colon+1:]
	if filePath == "" {
		return SymbolRef{}, &ErrInvalid{Input: s}
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return SymbolRef{}, &ErrInvalid{Input: s}
	}
	return SymbolRef{FilePath: filePath, StartLine: line, Name: name}, nil
}

// PathsMatch reports whether a and b name the same file modulo
// relative/absolute path prefix: true iff either path is a suffix of the
// other along complete '/' segments.
func PathsMatch(a, b string) bool {
	if a == b {
		return true
	}
	sa := strings.Split(strings.Trim(a, "/"), "/")
	sb := strings.Split(strings.Trim(b, "/"), "/")
	short, long := sa, sb
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return false
	}
	offset := len(long) - len(short)
	for i, seg := range short {
		if seg != long[offset+i] {
			return false
		}
	}
	return true
}
