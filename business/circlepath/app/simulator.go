package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/circlepath-bot/business/circlepath/domain"
	marketApp "github.com/fd1az/circlepath-bot/business/market/app"
	marketDomain "github.com/fd1az/circlepath-bot/business/market/domain"
	"github.com/fd1az/circlepath-bot/internal/logger"
)

// Rounding applied to reported profit.
const (
	profitPlaces    = 8
	referencePlaces = 2
)

// SimulatorConfig holds the tunables of the limit-order simulation.
type SimulatorConfig struct {
	// TakeFraction scales the liquidity-derived optimal amount down for
	// safety (e.g. 0.5 takes half the observed depth).
	TakeFraction decimal.Decimal
	// MaxPriceDeviation bounds how far aggregated levels may stray from the
	// best price (e.g. 0.002).
	MaxPriceDeviation decimal.Decimal
	// MaxAggLevels bounds how many levels one aggregation may merge.
	MaxAggLevels int
	// TakerFee is deducted once per hop.
	TakerFee decimal.Decimal
	// ReferenceAsset values profit for cross-path comparison.
	ReferenceAsset string
}

// Simulator estimates the profit of a circular path against the current
// order book store using aggregated limit-order fills.
type Simulator struct {
	store  *marketApp.BookStore
	config SimulatorConfig
	logger logger.LoggerInterface
}

// NewSimulator creates a Simulator over the given store.
func NewSimulator(store *marketApp.BookStore, cfg SimulatorConfig, log logger.LoggerInterface) *Simulator {
	return &Simulator{
		store:  store,
		config: cfg,
		logger: log,
	}
}

// Simulate runs the liquidity pre-pass and the execution walk for one path.
// A missing or empty book at any hop interrupts the simulation and yields
// zero profit; it never returns an error for that.
func (s *Simulator) Simulate(ctx context.Context, startAsset string, instructions []domain.Instruction, desiredAmount decimal.Decimal) domain.Simulation {
	optimal, ok := s.optimalStartAmount(ctx, startAsset, instructions)
	if !ok {
		return domain.Simulation{Interrupted: true}
	}

	actual := desiredAmount
	if optimal.LessThan(actual) {
		actual = optimal
	}

	final, ok := s.walk(ctx, instructions, actual)
	if !ok {
		return domain.Simulation{
			OptimalAmount: optimal,
			ActualAmount:  actual,
			Interrupted:   true,
		}
	}

	profit := final.Sub(actual).Round(profitPlaces)

	sim := domain.Simulation{
		OptimalAmount: optimal,
		ActualAmount:  actual,
		Profit:        profit,
	}

	if converted, err := s.store.ConvertAmount(profit, startAsset, s.config.ReferenceAsset); err == nil {
		sim.ProfitInReference = converted.Round(referencePlaces)
	} else {
		s.logger.Warn(ctx, "profit conversion to reference asset failed",
			"start_asset", startAsset,
			"reference_asset", s.config.ReferenceAsset,
			"error", err)
	}

	return sim
}

// optimalStartAmount is the liquidity pre-pass: the thinnest hop's available
// quantity, valued in the start asset and scaled by the take fraction. The
// aggregation here is unbounded in quantity; only price deviation limits it.
func (s *Simulator) optimalStartAmount(ctx context.Context, startAsset string, instructions []domain.Instruction) (decimal.Decimal, bool) {
	var minLiquidity decimal.Decimal
	first := true

	for _, instr := range instructions {
		if instr.IsEnd {
			continue
		}

		agg, ok := s.aggregateHop(ctx, instr, decimal.Zero)
		if !ok {
			return decimal.Zero, false
		}

		// Aggregated quantity is in base-asset units regardless of side.
		liquidity, err := s.store.ConvertAmount(agg.Quantity, instr.Symbol.BaseAsset, startAsset)
		if err != nil {
			s.logger.Warn(ctx, "hop liquidity not convertible to start asset",
				"symbol", instr.Symbol.Symbol,
				"error", err)
			return decimal.Zero, false
		}

		if first || liquidity.LessThan(minLiquidity) {
			minLiquidity = liquidity
			first = false
		}
	}

	if first {
		return decimal.Zero, false
	}
	return minLiquidity.Mul(s.config.TakeFraction), true
}

// walk converts the amount through every hop at a conservative price: the
// aggregated fill-side price nudged one quote tick against the trader, minus
// the taker fee.
func (s *Simulator) walk(ctx context.Context, instructions []domain.Instruction, startAmount decimal.Decimal) (decimal.Decimal, bool) {
	feeFactor := decimal.NewFromInt(1).Sub(s.config.TakerFee)
	amount := startAmount

	for _, instr := range instructions {
		if instr.IsEnd {
			continue
		}

		agg, ok := s.aggregateHop(ctx, instr, amount)
		if !ok {
			return decimal.Zero, false
		}

		tick := instr.Symbol.PriceIncrement()
		switch instr.Action {
		case marketDomain.ActionBuy:
			price := agg.Price.Add(tick)
			amount = amount.Div(price)
		case marketDomain.ActionSell:
			price := agg.Price.Sub(tick)
			amount = amount.Mul(price)
		}

		amount = amount.Mul(feeFactor)
	}

	return amount, true
}

// aggregateHop merges the fill side of one hop's book: asks when buying,
// bids when selling. Reports false on a missing or empty book.
func (s *Simulator) aggregateHop(ctx context.Context, instr domain.Instruction, maxQuantity decimal.Decimal) (marketDomain.AggregatedLevel, bool) {
	book, ok := s.store.Book(instr.Symbol.Symbol)
	if !ok || book.IsEmpty() {
		s.logger.Debug(ctx, "hop book missing or empty, interrupting simulation",
			"symbol", instr.Symbol.Symbol)
		return marketDomain.AggregatedLevel{}, false
	}

	side := book.Bids
	if instr.Action == marketDomain.ActionBuy {
		side = book.Asks
	}

	return marketDomain.AggregateBestLevels(side, s.config.MaxAggLevels, s.config.MaxPriceDeviation, maxQuantity)
}
