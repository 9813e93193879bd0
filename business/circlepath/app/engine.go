package app

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/circlepath-bot/business/circlepath/domain"
	"github.com/fd1az/circlepath-bot/internal/apm"
	"github.com/fd1az/circlepath-bot/internal/apperror"
	"github.com/fd1az/circlepath-bot/internal/logger"
)

const meterName = "circlepath"

// minProfitFloor is the absolute lower bound on the profit threshold. It
// cannot be configured away; it guards against rounding-noise positives.
var minProfitFloor = decimal.RequireFromString("0.0015")

// EngineConfig holds the engine's search and filter parameters.
type EngineConfig struct {
	MinPathEdges     int
	MaxPathEdges     int
	MinProfitPercent decimal.Decimal
}

// engineMetrics holds OTEL metric instruments.
type engineMetrics struct {
	solveRuns      metric.Int64Counter
	pathsSearched  metric.Int64Counter
	pathsDropped   metric.Int64Counter
	solutionsFound metric.Int64Counter
	solveDuration  metric.Float64Histogram
}

// Engine runs the full pipeline for one start asset: path search,
// instruction derivation, simulation and profit filtering. The graph is
// immutable after construction; books are read live from the store through
// the simulator, so concurrent Solve calls need no extra coordination.
type Engine struct {
	graph     *domain.Graph
	simulator *Simulator
	config    EngineConfig
	logger    logger.LoggerInterface
	tracer    apm.Tracer
	metrics   *engineMetrics
}

// NewEngine creates an Engine. Invalid path bounds or a profit threshold
// below the floor are rejected here, not clamped.
func NewEngine(graph *domain.Graph, simulator *Simulator, cfg EngineConfig, log logger.LoggerInterface) (*Engine, error) {
	if cfg.MinPathEdges < domain.MinPathEdges || cfg.MaxPathEdges > domain.MaxPathEdges || cfg.MinPathEdges > cfg.MaxPathEdges {
		return nil, apperror.New(apperror.CodeInvalidPathBounds,
			apperror.WithContext("min="+strconv.Itoa(cfg.MinPathEdges)+" max="+strconv.Itoa(cfg.MaxPathEdges)))
	}
	if cfg.MinProfitPercent.LessThan(minProfitFloor) {
		return nil, apperror.New(apperror.CodeValidationError,
			apperror.WithMessage("min profit percent below floor "+minProfitFloor.String()))
	}

	e := &Engine{
		graph:     graph,
		simulator: simulator,
		config:    cfg,
		logger:    log,
		tracer:    apm.NewTracer("circlepath.engine"),
	}
	if err := e.initMetrics(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	e.metrics = &engineMetrics{}

	e.metrics.solveRuns, err = meter.Int64Counter(
		"circlepath_solve_runs_total",
		metric.WithDescription("Engine solve invocations"),
	)
	if err != nil {
		return err
	}

	e.metrics.pathsSearched, err = meter.Int64Counter(
		"circlepath_paths_searched_total",
		metric.WithDescription("Circular paths produced by the search"),
	)
	if err != nil {
		return err
	}

	e.metrics.pathsDropped, err = meter.Int64Counter(
		"circlepath_paths_dropped_total",
		metric.WithDescription("Paths dropped over instruction derivation failures"),
	)
	if err != nil {
		return err
	}

	e.metrics.solutionsFound, err = meter.Int64Counter(
		"circlepath_solutions_total",
		metric.WithDescription("Solutions that cleared the profit filter"),
	)
	if err != nil {
		return err
	}

	e.metrics.solveDuration, err = meter.Float64Histogram(
		"circlepath_solve_duration_seconds",
		metric.WithDescription("Wall time of one solve invocation"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Solve enumerates circular paths from startAsset, simulates each against
// the current store contents with the desired start amount, and returns the
// solutions that cleared the profit filter. Failures confined to one path
// drop that path only.
func (e *Engine) Solve(ctx context.Context, startAsset string, desiredAmount decimal.Decimal) ([]*domain.Solution, error) {
	ctx, span := e.tracer.StartSpanFromContext(ctx, "circlepath.solve",
		trace.WithAttributes(
			attribute.String("start_asset", startAsset),
			attribute.String("desired_amount", desiredAmount.String()),
		),
	)
	defer span.End()

	started := time.Now()
	e.metrics.solveRuns.Add(ctx, 1)

	paths, err := domain.FindCircularPaths(e.graph, startAsset, e.config.MinPathEdges, e.config.MaxPathEdges)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}
	e.metrics.pathsSearched.Add(ctx, int64(len(paths)))

	solutions := make([]*domain.Solution, 0)
	for _, path := range paths {
		instructions, err := BuildInstructions(e.graph, path)
		if err != nil {
			// Graph-derived paths should always resolve to instructions.
			e.logger.Error(ctx, "dropping path, instruction derivation failed",
				"path", path,
				"error", err)
			e.metrics.pathsDropped.Add(ctx, 1)
			continue
		}

		sim := e.simulator.Simulate(ctx, startAsset, instructions, desiredAmount)

		sol := &domain.Solution{
			Path:           path,
			Instructions:   instructions,
			StartAsset:     startAsset,
			ReferenceAsset: e.simulator.config.ReferenceAsset,
			Simulation:     sim,
			Timestamp:      time.Now().UTC(),
		}

		if !sol.IsProfitable(e.config.MinProfitPercent) {
			continue
		}

		e.logger.Info(ctx, "profitable path found",
			"path", sol.PathID(),
			"profit", sim.Profit.String(),
			"amount", sim.ActualAmount.String())
		solutions = append(solutions, sol)
	}

	e.metrics.solutionsFound.Add(ctx, int64(len(solutions)))
	e.metrics.solveDuration.Record(ctx, time.Since(started).Seconds())

	span.SetAttributes(
		attribute.Int("paths", len(paths)),
		attribute.Int("solutions", len(solutions)),
	)

	return solutions, nil
}

// PathCount returns how many circular paths the current graph and bounds
// produce, without simulating any of them.
func (e *Engine) PathCount(startAsset string) (int, error) {
	paths, err := domain.FindCircularPaths(e.graph, startAsset, e.config.MinPathEdges, e.config.MaxPathEdges)
	if err != nil {
		return 0, err
	}
	return len(paths), nil
}
