// Package domain contains the core domain types for the circular path context:
// the asset graph, the bounded path search and the solution model.
package domain

import (
	marketDomain "github.com/fd1az/circlepath-bot/business/market/domain"
)

// Transition is one edge of the asset graph: a symbol connecting its base and
// quote assets, walkable in both directions.
type Transition struct {
	Symbol marketDomain.SymbolInfo
	From   string
	To     string
}

// Graph is the asset graph built from the exchange's symbol list. Assets are
// nodes; every symbol contributes one edge walkable both ways. Duplicate
// edges between the same pair of assets (from distinct symbols) are kept.
// The graph is immutable after construction.
type Graph struct {
	assets      []string
	transitions map[string][]Transition
}

// NewGraph builds the graph from symbol metadata. Symbol order determines
// edge order, which keeps traversal deterministic.
func NewGraph(symbols []marketDomain.SymbolInfo) *Graph {
	g := &Graph{
		transitions: make(map[string][]Transition),
	}

	seen := make(map[string]struct{})
	addAsset := func(asset string) {
		if _, ok := seen[asset]; !ok {
			seen[asset] = struct{}{}
			g.assets = append(g.assets, asset)
		}
	}

	for _, sym := range symbols {
		addAsset(sym.BaseAsset)
		addAsset(sym.QuoteAsset)
		g.transitions[sym.BaseAsset] = append(g.transitions[sym.BaseAsset],
			Transition{Symbol: sym, From: sym.BaseAsset, To: sym.QuoteAsset})
		g.transitions[sym.QuoteAsset] = append(g.transitions[sym.QuoteAsset],
			Transition{Symbol: sym, From: sym.QuoteAsset, To: sym.BaseAsset})
	}

	return g
}

// Assets returns all distinct assets, in first-appearance order.
func (g *Graph) Assets() []string {
	return g.assets
}

// HasAsset reports whether the asset is a node of the graph.
func (g *Graph) HasAsset(asset string) bool {
	_, ok := g.transitions[asset]
	return ok
}

// TransitionsFrom returns all edges leaving the given asset.
func (g *Graph) TransitionsFrom(asset string) []Transition {
	return g.transitions[asset]
}

// FindTransition returns the first edge connecting two adjacent assets.
func (g *Graph) FindTransition(from, to string) (Transition, bool) {
	for _, t := range g.transitions[from] {
		if t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}
