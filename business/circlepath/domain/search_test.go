package domain

import (
	"reflect"
	"sort"
	"strings"
	"testing"

	marketDomain "github.com/fd1az/circlepath-bot/business/market/domain"
)

func sym(symbol, base, quote string) marketDomain.SymbolInfo {
	return marketDomain.SymbolInfo{
		Symbol:                    symbol,
		BaseAsset:                 base,
		QuoteAsset:                quote,
		QuotePriceIncrementDigits: 8,
	}
}

func triangleGraph() *Graph {
	return NewGraph([]marketDomain.SymbolInfo{
		sym("ETHBTC", "ETH", "BTC"),
		sym("ETHUSDT", "ETH", "USDT"),
		sym("BTCUSDT", "BTC", "USDT"),
	})
}

func pathIDs(paths [][]string) []string {
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		ids = append(ids, strings.Join(p, "->"))
	}
	sort.Strings(ids)
	return ids
}

func TestGraph_Transitions(t *testing.T) {
	g := triangleGraph()

	if got := len(g.Assets()); got != 3 {
		t.Fatalf("assets = %d, want 3", got)
	}
	if got := len(g.TransitionsFrom("BTC")); got != 2 {
		t.Errorf("transitions from BTC = %d, want 2", got)
	}

	tr, ok := g.FindTransition("BTC", "ETH")
	if !ok {
		t.Fatal("expected BTC->ETH transition")
	}
	if tr.Symbol.Symbol != "ETHBTC" {
		t.Errorf("transition symbol = %s, want ETHBTC", tr.Symbol.Symbol)
	}

	if _, ok := g.FindTransition("BTC", "SOL"); ok {
		t.Error("unexpected BTC->SOL transition")
	}
}

func TestGraph_KeepsDuplicateEdges(t *testing.T) {
	g := NewGraph([]marketDomain.SymbolInfo{
		sym("ETHBTC", "ETH", "BTC"),
		sym("ETHBTC2", "ETH", "BTC"), // hypothetical second listing
	})
	if got := len(g.TransitionsFrom("ETH")); got != 2 {
		t.Errorf("transitions from ETH = %d, want 2 (duplicates kept)", got)
	}
}

func TestFindCircularPaths_Triangle(t *testing.T) {
	paths, err := FindCircularPaths(triangleGraph(), "BTC", 2, 3)
	if err != nil {
		t.Fatalf("FindCircularPaths: %v", err)
	}

	want := []string{
		"BTC->ETH->BTC",
		"BTC->ETH->USDT->BTC",
		"BTC->USDT->BTC",
		"BTC->USDT->ETH->BTC",
	}
	if got := pathIDs(paths); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestFindCircularPaths_Properties(t *testing.T) {
	g := NewGraph([]marketDomain.SymbolInfo{
		sym("ETHBTC", "ETH", "BTC"),
		sym("ETHUSDT", "ETH", "USDT"),
		sym("BTCUSDT", "BTC", "USDT"),
		sym("SOLUSDT", "SOL", "USDT"),
		sym("SOLBTC", "SOL", "BTC"),
		sym("SOLETH", "SOL", "ETH"),
	})

	paths, err := FindCircularPaths(g, "USDT", 2, 4)
	if err != nil {
		t.Fatalf("FindCircularPaths: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("expected paths in a well-connected graph")
	}

	for _, p := range paths {
		if p[0] != "USDT" || p[len(p)-1] != "USDT" {
			t.Errorf("path %v does not start and end at USDT", p)
		}
		edges := len(p) - 1
		if edges < 2 || edges > 4 {
			t.Errorf("path %v has %d edges, want within [2,4]", p, edges)
		}
		seen := map[string]int{}
		for _, asset := range p {
			seen[asset]++
		}
		if seen["USDT"] != 2 {
			t.Errorf("path %v visits USDT %d times, want exactly 2", p, seen["USDT"])
		}
		for asset, n := range seen {
			if asset != "USDT" && n > 1 {
				t.Errorf("path %v revisits %s", p, asset)
			}
		}
	}
}

func TestFindCircularPaths_Deterministic(t *testing.T) {
	g := triangleGraph()
	first, err := FindCircularPaths(g, "BTC", 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	second, err := FindCircularPaths(g, "BTC", 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated search differs: %v vs %v", first, second)
	}
}

func TestFindCircularPaths_RejectsBadInput(t *testing.T) {
	g := triangleGraph()

	tests := []struct {
		name     string
		start    string
		min, max int
	}{
		{"min_below_bound", "BTC", 1, 3},
		{"max_above_bound", "BTC", 2, 11},
		{"min_above_max", "BTC", 4, 3},
		{"unknown_start", "SOL", 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FindCircularPaths(g, tt.start, tt.min, tt.max); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFindCircularPaths_MinLengthPrunesShortLoops(t *testing.T) {
	// With minEdges=3 the 2-edge BTC->ETH->BTC loop must not appear.
	paths, err := FindCircularPaths(triangleGraph(), "BTC", 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range paths {
		if len(p)-1 != 3 {
			t.Errorf("path %v has %d edges, want 3", p, len(p)-1)
		}
	}
}

func TestSolution_PathID(t *testing.T) {
	s := &Solution{Path: []string{"BTC", "ETH", "USDT", "BTC"}}
	if got := s.PathID(); got != "BTC->ETH->USDT->BTC" {
		t.Errorf("PathID = %q", got)
	}
	if got := s.Edges(); got != 3 {
		t.Errorf("Edges = %d, want 3", got)
	}
}
