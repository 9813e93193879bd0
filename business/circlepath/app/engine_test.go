package app

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/circlepath-bot/business/circlepath/domain"
	marketApp "github.com/fd1az/circlepath-bot/business/market/app"
	marketDomain "github.com/fd1az/circlepath-bot/business/market/domain"
	"github.com/fd1az/circlepath-bot/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(os.Stderr, logger.LevelError, "circlepath-test", nil)
}

func sym(symbol, base, quote string, digits int32) marketDomain.SymbolInfo {
	return marketDomain.SymbolInfo{
		Symbol:                    symbol,
		BaseAsset:                 base,
		QuoteAsset:                quote,
		QuotePriceIncrementDigits: digits,
	}
}

func installBook(store *marketApp.BookStore, symbol string, bids, asks [][2]string) {
	toLevels := func(pairs [][2]string) []marketDomain.Level {
		out := make([]marketDomain.Level, 0, len(pairs))
		for _, p := range pairs {
			out = append(out, marketDomain.Level{
				Price:    decimal.RequireFromString(p[0]),
				Quantity: decimal.RequireFromString(p[1]),
			})
		}
		return out
	}
	store.ReplaceBook(symbol, marketDomain.NewBook(toLevels(bids), toLevels(asks)))
}

func simConfig() SimulatorConfig {
	return SimulatorConfig{
		TakeFraction:      decimal.RequireFromString("0.5"),
		MaxPriceDeviation: decimal.RequireFromString("0.002"),
		MaxAggLevels:      5,
		TakerFee:          decimal.RequireFromString("0.001"),
		ReferenceAsset:    "USDT",
	}
}

func TestBuildInstructions(t *testing.T) {
	g := domain.NewGraph([]marketDomain.SymbolInfo{
		sym("ETHBTC", "ETH", "BTC", 6),
		sym("ETHUSDT", "ETH", "USDT", 2),
		sym("BTCUSDT", "BTC", "USDT", 2),
	})

	instructions, err := BuildInstructions(g, []string{"BTC", "ETH", "USDT", "BTC"})
	if err != nil {
		t.Fatalf("BuildInstructions: %v", err)
	}

	if len(instructions) != 4 {
		t.Fatalf("instructions = %d, want 4 (3 hops + terminal)", len(instructions))
	}

	want := []struct {
		symbol string
		action marketDomain.Action
	}{
		{"ETHBTC", marketDomain.ActionBuy},   // holding BTC, the quote of ETHBTC
		{"ETHUSDT", marketDomain.ActionSell}, // holding ETH, the base of ETHUSDT
		{"BTCUSDT", marketDomain.ActionBuy},  // holding USDT, the quote of BTCUSDT
	}
	for i, w := range want {
		if instructions[i].Symbol.Symbol != w.symbol || instructions[i].Action != w.action {
			t.Errorf("instruction %d = %s/%s, want %s/%s",
				i, instructions[i].Symbol.Symbol, instructions[i].Action, w.symbol, w.action)
		}
		if instructions[i].IsEnd {
			t.Errorf("instruction %d marked terminal", i)
		}
	}

	if !instructions[0].IsStart {
		t.Error("first instruction not marked start")
	}

	terminal := instructions[3]
	if !terminal.IsEnd || terminal.Action != marketDomain.ActionNone {
		t.Errorf("terminal = %+v, want ActionNone with IsEnd", terminal)
	}
}

func TestBuildInstructions_MissingTransition(t *testing.T) {
	g := domain.NewGraph([]marketDomain.SymbolInfo{
		sym("ETHBTC", "ETH", "BTC", 6),
	})
	if _, err := BuildInstructions(g, []string{"BTC", "ETH", "USDT", "BTC"}); err == nil {
		t.Fatal("expected error for missing ETH->USDT transition")
	}
}

// Two-hop round trip over a crossed book, checked against the chained
// conversion computed with the same decimal operations.
func TestSimulator_TwoHopProfit(t *testing.T) {
	store := marketApp.NewBookStore(decimal.Zero)
	installBook(store, "ethbtc",
		[][2]string{{"0.05", "10"}},
		[][2]string{{"0.03", "10"}},
	)

	g := domain.NewGraph([]marketDomain.SymbolInfo{
		sym("ETHBTC", "ETH", "BTC", 6),
	})
	instructions, err := BuildInstructions(g, []string{"BTC", "ETH", "BTC"})
	if err != nil {
		t.Fatal(err)
	}

	cfg := simConfig()
	simulator := NewSimulator(store, cfg, testLogger())

	desired := decimal.RequireFromString("0.1")
	sim := simulator.Simulate(context.Background(), "BTC", instructions, desired)

	if sim.Interrupted {
		t.Fatal("simulation interrupted unexpectedly")
	}

	// Pre-pass: each hop offers 10 ETH; 10 ETH at the 0.05 best bid is
	// 0.5 BTC; scaled by the 0.5 take fraction -> 0.25 BTC optimal.
	if !sim.OptimalAmount.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("optimal = %s, want 0.25", sim.OptimalAmount)
	}
	if !sim.ActualAmount.Equal(desired) {
		t.Errorf("actual = %s, want %s (desired below optimal)", sim.ActualAmount, desired)
	}

	// Walk: buy at ask+tick, sell at bid-tick, taker fee per hop.
	tick := decimal.RequireFromString("0.000001")
	fee := decimal.NewFromInt(1).Sub(cfg.TakerFee)
	afterBuy := desired.Div(decimal.RequireFromString("0.03").Add(tick)).Mul(fee)
	final := afterBuy.Mul(decimal.RequireFromString("0.05").Sub(tick)).Mul(fee)
	wantProfit := final.Sub(desired).Round(8)

	if !sim.Profit.Equal(wantProfit) {
		t.Errorf("profit = %s, want %s", sim.Profit, wantProfit)
	}
	if !sim.Profit.IsPositive() {
		t.Errorf("profit = %s, want positive for a crossed book", sim.Profit)
	}
}

func TestSimulator_DesiredAboveOptimalIsCapped(t *testing.T) {
	store := marketApp.NewBookStore(decimal.Zero)
	installBook(store, "ethbtc",
		[][2]string{{"0.05", "10"}},
		[][2]string{{"0.03", "10"}},
	)

	g := domain.NewGraph([]marketDomain.SymbolInfo{sym("ETHBTC", "ETH", "BTC", 6)})
	instructions, _ := BuildInstructions(g, []string{"BTC", "ETH", "BTC"})

	simulator := NewSimulator(store, simConfig(), testLogger())
	sim := simulator.Simulate(context.Background(), "BTC", instructions, decimal.NewFromInt(1000))

	if !sim.ActualAmount.Equal(sim.OptimalAmount) {
		t.Errorf("actual = %s, want capped to optimal %s", sim.ActualAmount, sim.OptimalAmount)
	}
}

func TestSimulator_EmptyBookInterrupts(t *testing.T) {
	store := marketApp.NewBookStore(decimal.Zero)

	g := domain.NewGraph([]marketDomain.SymbolInfo{sym("ETHBTC", "ETH", "BTC", 6)})
	instructions, _ := BuildInstructions(g, []string{"BTC", "ETH", "BTC"})

	simulator := NewSimulator(store, simConfig(), testLogger())
	sim := simulator.Simulate(context.Background(), "BTC", instructions, decimal.NewFromInt(1))

	if !sim.Interrupted {
		t.Fatal("expected interruption over missing book")
	}
	if !sim.Profit.IsZero() {
		t.Errorf("profit = %s, want zero when interrupted", sim.Profit)
	}
}

func newTestEngine(t *testing.T, g *domain.Graph, store *marketApp.BookStore) *Engine {
	t.Helper()
	engine, err := NewEngine(g, NewSimulator(store, simConfig(), testLogger()), EngineConfig{
		MinPathEdges:     2,
		MaxPathEdges:     3,
		MinProfitPercent: decimal.RequireFromString("0.0015"),
	}, testLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

// One hop's book is missing: paths over it yield zero profit and vanish,
// while an independent profitable path still comes through.
func TestEngine_EmptyBookIsolatedPerPath(t *testing.T) {
	g := domain.NewGraph([]marketDomain.SymbolInfo{
		sym("ETHBTC", "ETH", "BTC", 6),
		sym("ETHUSDT", "ETH", "USDT", 2),
		sym("BTCUSDT", "BTC", "USDT", 2),
	})

	store := marketApp.NewBookStore(decimal.Zero)
	// Crossed, profitable round trip.
	installBook(store, "ethbtc",
		[][2]string{{"0.05", "10"}},
		[][2]string{{"0.03", "10"}},
	)
	// Normal spread, unprofitable round trip.
	installBook(store, "btcusdt",
		[][2]string{{"60000", "1"}},
		[][2]string{{"60010", "1"}},
	)
	// ethusdt book deliberately absent.

	engine := newTestEngine(t, g, store)
	solutions, err := engine.Solve(context.Background(), "BTC", decimal.RequireFromString("0.1"))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if len(solutions) != 1 {
		ids := make([]string, 0, len(solutions))
		for _, s := range solutions {
			ids = append(ids, s.PathID())
		}
		t.Fatalf("solutions = %v, want exactly [BTC->ETH->BTC]", ids)
	}
	if got := solutions[0].PathID(); got != "BTC->ETH->BTC" {
		t.Errorf("solution = %s, want BTC->ETH->BTC", got)
	}
	if !solutions[0].Simulation.Profit.IsPositive() {
		t.Errorf("profit = %s, want positive", solutions[0].Simulation.Profit)
	}
}

func TestEngine_SolveDeterministic(t *testing.T) {
	g := domain.NewGraph([]marketDomain.SymbolInfo{
		sym("ETHBTC", "ETH", "BTC", 6),
	})
	store := marketApp.NewBookStore(decimal.Zero)
	installBook(store, "ethbtc",
		[][2]string{{"0.05", "10"}},
		[][2]string{{"0.03", "10"}},
	)

	engine := newTestEngine(t, g, store)

	first, err := engine.Solve(context.Background(), "BTC", decimal.RequireFromString("0.1"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Solve(context.Background(), "BTC", decimal.RequireFromString("0.1"))
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("solution counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].PathID() != second[i].PathID() || !first[i].Simulation.Profit.Equal(second[i].Simulation.Profit) {
			t.Errorf("solution %d differs between runs", i)
		}
	}
}

func TestNewEngine_RejectsBadConfig(t *testing.T) {
	g := domain.NewGraph([]marketDomain.SymbolInfo{sym("ETHBTC", "ETH", "BTC", 6)})
	simulator := NewSimulator(marketApp.NewBookStore(decimal.Zero), simConfig(), testLogger())

	tests := []struct {
		name string
		cfg  EngineConfig
	}{
		{"min_too_small", EngineConfig{MinPathEdges: 1, MaxPathEdges: 3, MinProfitPercent: decimal.RequireFromString("0.0015")}},
		{"max_too_large", EngineConfig{MinPathEdges: 2, MaxPathEdges: 11, MinProfitPercent: decimal.RequireFromString("0.0015")}},
		{"min_above_max", EngineConfig{MinPathEdges: 4, MaxPathEdges: 3, MinProfitPercent: decimal.RequireFromString("0.0015")}},
		{"profit_below_floor", EngineConfig{MinPathEdges: 2, MaxPathEdges: 3, MinProfitPercent: decimal.RequireFromString("0.001")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEngine(g, simulator, tt.cfg, testLogger()); err == nil {
				t.Error("expected construction error")
			}
		})
	}
}

func TestSolutionFilter_Threshold(t *testing.T) {
	sol := &domain.Solution{
		Simulation: domain.Simulation{
			ActualAmount: decimal.NewFromInt(100),
			Profit:       decimal.RequireFromString("0.10"),
		},
	}

	// Threshold 0.0015 of 100 = 0.15 > 0.10 -> filtered.
	if sol.IsProfitable(decimal.RequireFromString("0.0015")) {
		t.Error("profit below threshold should be filtered")
	}

	sol.Simulation.Profit = decimal.RequireFromString("0.15")
	if !sol.IsProfitable(decimal.RequireFromString("0.0015")) {
		t.Error("profit at threshold should pass")
	}

	sol.Simulation.Profit = decimal.Zero
	if sol.IsProfitable(decimal.RequireFromString("0.0015")) {
		t.Error("zero profit should be filtered")
	}
}
