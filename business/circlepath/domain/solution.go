package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	marketDomain "github.com/fd1az/circlepath-bot/business/market/domain"
)

// Instruction is one leg of a circular path: the symbol to trade and the
// action that moves the held asset across it. The terminal instruction is
// synthetic: no action, IsEnd set.
type Instruction struct {
	Symbol  marketDomain.SymbolInfo
	Action  marketDomain.Action
	IsStart bool
	IsEnd   bool
}

// Simulation holds the outcome of simulating one solution.
type Simulation struct {
	// OptimalAmount is the liquidity-safe start amount, already scaled by
	// the take fraction.
	OptimalAmount decimal.Decimal
	// ActualAmount is what the walk actually started with:
	// min(desired, optimal).
	ActualAmount decimal.Decimal
	// Profit is final minus actual amount in start-asset units, rounded to
	// 8 decimals. Zero when interrupted.
	Profit decimal.Decimal
	// ProfitInReference is Profit valued in the reference asset, rounded to
	// 2 decimals. Zero when no direct conversion exists.
	ProfitInReference decimal.Decimal
	// Interrupted marks a walk abandoned over a missing or empty book.
	Interrupted bool
}

// Solution is one circular path with its instruction chain and simulation.
type Solution struct {
	Path         []string
	Instructions []Instruction
	StartAsset   string
	// ReferenceAsset is the asset ProfitInReference is denominated in.
	ReferenceAsset string
	Simulation     Simulation
	Timestamp      time.Time
}

// PathID returns the stable reporting and de-dup key for the path.
func (s *Solution) PathID() string {
	return strings.Join(s.Path, "->")
}

// Edges returns the path length in edges.
func (s *Solution) Edges() int {
	return len(s.Path) - 1
}

// IsProfitable reports whether the simulated profit is positive and clears
// the minimum profit threshold relative to the traded amount.
func (s *Solution) IsProfitable(minProfitPercent decimal.Decimal) bool {
	sim := s.Simulation
	if !sim.Profit.IsPositive() {
		return false
	}
	return sim.Profit.GreaterThanOrEqual(sim.ActualAmount.Mul(minProfitPercent))
}
