package query

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// QuerySource is one named tree-sitter query pattern to execute against an
// AST. Grouping queries by name (rather than concatenating every capture
// into a single giant query, as a hand-rolled .scm file would) mirrors
// inspector/golang/inspector_tree_sitter.go, which runs one
// sitter.NewQuery/QueryCursor pair per syntactic category (package, import,
// type, func, method, const, var) and lets the caller dispatch on capture
// name afterwards.
type QuerySource struct {
	Name    string
	Pattern string
}

// Run executes every pattern in sources against root and returns every
// capture found: sources in the order given, and each query's captures in
// the order its matches are returned. Duplicate captures for the same node are
// the caller's responsibility to avoid (spec.md §6: "one capture per
// call-expression node").
func Run(root *sitter.Node, src []byte, language *sitter.Language, sources []QuerySource) ([]Capture, error) {
	var out []Capture
	for _, qs := range sources {
		q, err := newQuery(qs.Pattern, language)
		if err != nil {
			return nil, &Error{Source: qs.Name, Err: err}
		}
		cursor := sitter.NewQueryCursor()
		cursor.Exec(q, root)
		for {
			match, ok := cursor.NextMatch()
			if !ok {
				break
			}
			for _, c := range match.Captures {
				name := q.CaptureNameForId(c.Index)
				n := c.Node
				out = append(out, Capture{
					Name:      name,
					Node:      n,
					NodeKind:  n.Type(),
					Text:      string(src[n.StartByte():n.EndByte()]),
					StartByte: n.StartByte(),
					EndByte:   n.EndByte(),
				})
			}
		}
	}
	return out, nil
}

func newQuery(pattern string, language *sitter.Language) (q *sitter.Query, err error) {
	defer func() {
		if r := recover(); r != nil {
			q = nil
			err = &Error{Err: errPanic(r)}
		}
	}()
	return sitter.NewQuery([]byte(pattern), language)
}

// Error wraps a failure to compile or execute one named query; C5 reports
// it as a QueryError diagnostic (spec.md §7).
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Source == "" {
		return e.Err.Error()
	}
	return e.Source + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

type panicError struct{ v interface{} }

func (p panicError) Error() string {
	if err, ok := p.v.(error); ok {
		return err.Error()
	}
	return "query panic"
}

func errPanic(v interface{}) error { return panicError{v} }
