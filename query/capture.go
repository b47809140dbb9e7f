// Package query implements C1, the Query Runner: a pure projection of
// tree-sitter query results into a typed capture stream. It performs no
// interpretation of what a capture means — that is C2-C4's job.
package query

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/CRJFisher/ariadne-sub018/model"
)

// Capture is one named fragment of source matched by a language query.
// Name follows the schema "@category.entity[.qualifier]" (minus the "@"),
// e.g. "local.definition.function", "hoist.scope.function",
// "reference.call.method".
type Capture struct {
	Name      string
	Node      *sitter.Node
	NodeKind  string
	Text      string
	StartByte uint32
	EndByte   uint32
}

// Category returns the capture's leading schema segment (local/hoist/reference).
func (c Capture) Category() string {
	return firstSegment(c.Name)
}

func firstSegment(name string) string {
	for i, r := range name {
		if r == '.' {
			return name[:i]
		}
	}
	return name
}

// NodeLocation converts a tree-sitter node's 0-based row/column span into
// the module's 1-based model.Location. Every package that turns a Capture
// into a model type goes through this one conversion.
func NodeLocation(filePath string, n *sitter.Node) model.Location {
	sp, ep := n.StartPoint(), n.EndPoint()
	return model.Location{
		FilePath:  filePath,
		StartLine: int(sp.Row) + 1,
		StartCol:  int(sp.Column) + 1,
		EndLine:   int(ep.Row) + 1,
		EndColumn: int(ep.Column) + 1,
	}
}

// Location returns the Capture's own location via NodeLocation.
func (c Capture) Location(filePath string) model.Location {
	return NodeLocation(filePath, c.Node)
}
