package model

import "sort"

// CallGraph is the queryable result of C11: callable nodes, their entry
// points, and the callables only reachable indirectly (stored/passed, not
// called outright).
type CallGraph struct {
	Nodes                map[SymbolId]*CallableNode
	EntryPoints          []SymbolId
	IndirectReachability map[SymbolId][]SymbolId
}

// NewCallGraph returns an empty, initialized CallGraph.
func NewCallGraph() *CallGraph {
	return &CallGraph{
		Nodes:                map[SymbolId]*CallableNode{},
		IndirectReachability: map[SymbolId][]SymbolId{},
	}
}

// SortEnclosedCalls orders a node's enclosed calls by (file, start line, start column)
// per spec.md §4.C11 ordering guarantee.
func SortEnclosedCalls(calls []*Reference) {
	sort.SliceStable(calls, func(i, j int) bool {
		a, b := calls[i].Location, calls[j].Location
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.StartCol < b.StartCol
	})
}

// SortEntryPoints orders entry points by (file, start line, name).
func (g *CallGraph) SortEntryPoints() {
	sort.SliceStable(g.EntryPoints, func(i, j int) bool {
		ni, nj := g.Nodes[g.EntryPoints[i]], g.Nodes[g.EntryPoints[j]]
		if ni == nil || nj == nil {
			return g.EntryPoints[i] < g.EntryPoints[j]
		}
		if ni.Location.FilePath != nj.Location.FilePath {
			return ni.Location.FilePath < nj.Location.FilePath
		}
		if ni.Location.StartLine != nj.Location.StartLine {
			return ni.Location.StartLine < nj.Location.StartLine
		}
		return ni.Name < nj.Name
	})
}

// SortResolutions orders resolutions by (confidence rank, symbol id) per
// spec.md §4.C11 ordering guarantee.
func SortResolutions(rs []Resolution) {
	sort.SliceStable(rs, func(i, j int) bool {
		ri, rj := ConfidenceRank(rs[i].Confidence), ConfidenceRank(rs[j].Confidence)
		if ri != rj {
			return ri < rj
		}
		return rs[i].SymbolId < rs[j].SymbolId
	})
}
