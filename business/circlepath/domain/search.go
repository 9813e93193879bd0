package domain

import (
	"strconv"

	"github.com/fd1az/circlepath-bot/internal/apperror"
)

// Path length bounds in edges. Longer searches blow up exponentially with the
// graph's degree, so the upper bound is a hard contract, not a tunable.
const (
	MinPathEdges = 2
	MaxPathEdges = 10
)

// pathNode is one node of the search tree. Each node exclusively owns its
// children; the tree is short-lived and discarded after flattening.
type pathNode struct {
	asset    string
	children []*pathNode
}

// FindCircularPaths enumerates walks starting and ending at startAsset with
// edge-count length within [minEdges, maxEdges]. Bounds outside
// [MinPathEdges, MaxPathEdges] or an unknown start asset are rejected.
//
// Every returned path begins and ends with startAsset, contains it nowhere
// else, and never revisits an interior asset.
func FindCircularPaths(g *Graph, startAsset string, minEdges, maxEdges int) ([][]string, error) {
	if minEdges < MinPathEdges || maxEdges > MaxPathEdges || minEdges > maxEdges {
		return nil, apperror.New(apperror.CodeInvalidPathBounds,
			apperror.WithContext("min="+strconv.Itoa(minEdges)+" max="+strconv.Itoa(maxEdges)))
	}
	if !g.HasAsset(startAsset) {
		return nil, apperror.New(apperror.CodeUnknownStartAsset,
			apperror.WithContext(startAsset))
	}

	root := &pathNode{asset: startAsset}
	root.children = expand(g, startAsset, startAsset, 1, minEdges, maxEdges)

	flat := flatten(root)

	paths := make([][]string, 0, len(flat))
	for _, p := range flat {
		if isCircular(p, startAsset) {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// expand returns the surviving subtrees reachable from current at the given
// edge depth. A branch landing on startAsset below minEdges is pruned; at or
// above minEdges it becomes a leaf; at maxEdges only startAsset survives.
// Interior nodes whose subtree produced no leaf are pruned post-order.
func expand(g *Graph, startAsset, current string, depth, minEdges, maxEdges int) []*pathNode {
	var children []*pathNode
	for _, t := range g.TransitionsFrom(current) {
		next := t.To

		if next == startAsset {
			if depth >= minEdges {
				children = append(children, &pathNode{asset: next})
			}
			continue
		}
		if depth >= maxEdges {
			continue
		}

		sub := expand(g, startAsset, next, depth+1, minEdges, maxEdges)
		if len(sub) == 0 {
			continue
		}
		children = append(children, &pathNode{asset: next, children: sub})
	}
	return children
}

// flatten walks the tree pre-order, producing one full asset sequence per
// leaf with every ancestor's asset prepended.
func flatten(root *pathNode) [][]string {
	var out [][]string
	var walk func(n *pathNode, prefix []string)
	walk = func(n *pathNode, prefix []string) {
		path := append(append([]string(nil), prefix...), n.asset)
		if len(n.children) == 0 {
			out = append(out, path)
			return
		}
		for _, child := range n.children {
			walk(child, path)
		}
	}
	walk(root, nil)
	return out
}

// isCircular applies the dedup filters: startAsset exactly twice, at both
// ends, and all interior assets pairwise distinct.
func isCircular(path []string, startAsset string) bool {
	if len(path) < 3 {
		return false
	}
	if path[0] != startAsset || path[len(path)-1] != startAsset {
		return false
	}

	seen := make(map[string]struct{}, len(path))
	for _, asset := range path[1 : len(path)-1] {
		if asset == startAsset {
			return false
		}
		if _, dup := seen[asset]; dup {
			return false
		}
		seen[asset] = struct{}{}
	}
	return true
}
