package rotation

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/mroth/weightedrand/v2"
	"go.uber.org/zap"

	"github.com/jakechorley/duty-rota/pkg/core/model"
)

const (
	// DefaultWeeks is one year of weekly duty
	DefaultWeeks = 52

	// DefaultMaxRetries bounds how many times a week's draw is repeated when it hits the window
	DefaultMaxRetries = 1000

	// choiceScale converts float weights to the integer weights the chooser works with
	choiceScale = 1 << 30
)

// Options configures an Engine. Nothing here is global: each run gets its own random
// source and logger.
type Options struct {
	// Rand is the only source of randomness. Seed it to get reproducible schedules.
	Rand *rand.Rand

	Logger *zap.Logger

	// Weeks is the number of weekly slots to fill (default 52)
	Weeks int

	// WindowSize is the recency window capacity in names (default 4, negative disables it)
	WindowSize int

	// MaxRetries caps redraws per week before drawing from non-recent candidates only
	MaxRetries int

	// Direction controls how history adjusts weights (default dampen)
	Direction AdjustmentDirection
}

// Input is everything the engine consumes for one run
type Input struct {
	Roster []model.Person

	// History from previous runs; may be nil for a cold start
	History History

	// Today anchors the schedule: week 1 starts on the first Monday on or after it
	Today time.Time
}

// Stats describes how a run's draws went
type Stats struct {
	Draws         int
	Retries       int
	FallbackWeeks int
	CappedWeeks   int
	WeightResets  int
}

// Result is the output of a run
type Result struct {
	Schedule model.Schedule

	// History is the input history plus every assignment in Schedule
	History History

	// Weights are the final (normalized) weights
	Weights WeightState

	Stats Stats
}

// Engine generates weekly pair schedules
type Engine struct {
	rng        *rand.Rand
	logger     *zap.Logger
	weeks      int
	windowSize int
	maxRetries int
	direction  AdjustmentDirection
	adjust     func(WeightState, History, AdjustmentDirection) WeightState
}

// NewEngine creates an engine, filling in defaults for unset options
func NewEngine(opts Options) *Engine {
	e := &Engine{
		rng:        opts.Rand,
		logger:     opts.Logger,
		weeks:      opts.Weeks,
		windowSize: opts.WindowSize,
		maxRetries: opts.MaxRetries,
		direction:  opts.Direction,
		adjust:     AdjustForHistory,
	}

	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.weeks <= 0 {
		e.weeks = DefaultWeeks
	}
	if e.windowSize == 0 {
		e.windowSize = DefaultWindowSize
	} else if e.windowSize < 0 {
		e.windowSize = 0
	}
	if e.maxRetries <= 0 {
		e.maxRetries = DefaultMaxRetries
	}
	if !e.direction.IsValid() {
		e.direction = AdjustDampen
	}

	return e
}

// Run generates the full schedule. It either returns a complete schedule or an error;
// the input history is never modified.
func (e *Engine) Run(input Input) (*Result, error) {
	peopleByName := make(map[string]model.Person, len(input.Roster))
	rosterNames := make([]string, 0, len(input.Roster))
	for _, person := range input.Roster {
		if _, exists := peopleByName[person.Name]; exists {
			return nil, fmt.Errorf("duplicate person %q in roster", person.Name)
		}
		peopleByName[person.Name] = person
		rosterNames = append(rosterNames, person.Name)
	}

	weights, err := Initialize(input.Roster)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientStaff, err)
	}

	available := weights.Names()
	if len(available) < 2 {
		return nil, fmt.Errorf("%w: %d available", ErrInsufficientStaff, len(available))
	}

	today := input.Today
	if today.IsZero() {
		today = time.Now()
	}

	starts, err := WeekStartDates(today, e.weeks)
	if err != nil {
		return nil, err
	}

	target := TargetExpectedAssignments(e.weeks, len(available))
	history := input.History.WithPeople(rosterNames...)
	window := NewRecencyWindow(e.windowSize)
	schedule := make(model.Schedule, 0, e.weeks)
	var stats Stats

	e.logger.Debug("Starting rotation run",
		zap.Int("weeks", e.weeks),
		zap.Int("available", len(available)),
		zap.Float64("target_expected_assignments", target),
		zap.String("direction", string(e.direction)),
		zap.Int("window_size", e.windowSize))

	for i, start := range starts {
		week := i + 1
		end := WeekEnd(start)

		weights, err = Normalize(weights, target)
		if errors.Is(err, ErrDegenerateWeights) {
			e.logger.Warn("Weights collapsed, resetting to uniform",
				zap.Int("week", week),
				zap.Error(err))
			stats.WeightResets++
			weights, err = Normalize(uniformWeights(available), target)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to normalize weights for week %d: %w", week, err)
		}

		pair, err := e.selectPair(week, available, weights, window, &stats)
		if err != nil {
			return nil, fmt.Errorf("failed to select pair for week %d: %w", week, err)
		}

		window.Push(pair[0], pair[1])
		history = history.WithAssignment(pair[0], start, end).WithAssignment(pair[1], start, end)
		weights = e.adjust(Jitter(weights, e.rng), history, e.direction)

		e.logger.Debug("Weights after week assignment",
			zap.Int("week", week),
			zap.Strings("pair", pair[:]),
			zap.Any("weights", weights))

		schedule = append(schedule, model.WeeklyAssignment{
			Week:      week,
			StartDate: start,
			EndDate:   end,
			Agent1:    peopleByName[pair[0]],
			Agent2:    peopleByName[pair[1]],
		})
	}

	weights, err = Normalize(weights, target)
	if err != nil {
		weights = uniformWeights(available)
	}

	e.logger.Debug("Rotation run complete",
		zap.Int("draws", stats.Draws),
		zap.Int("retries", stats.Retries),
		zap.Int("fallback_weeks", stats.FallbackWeeks),
		zap.Int("capped_weeks", stats.CappedWeeks),
		zap.Int("weight_resets", stats.WeightResets))

	return &Result{
		Schedule: schedule,
		History:  history,
		Weights:  weights,
		Stats:    stats,
	}, nil
}

// selectPair draws a pair that avoids the recency window.
//
// When fewer than two available names are outside the window, the window is ignored for
// the week (repeats allowed). When exactly two names are outside the window they are the
// only valid pair. When the retry cap is reached, the pair is drawn from the non-recent
// names directly so the loop always terminates.
func (e *Engine) selectPair(week int, available []string, weights WeightState, window *RecencyWindow, stats *Stats) ([2]string, error) {
	eligible := make([]string, 0, len(available))
	for _, name := range available {
		if !window.Contains(name) {
			eligible = append(eligible, name)
		}
	}

	if len(eligible) < 2 {
		stats.FallbackWeeks++
		stats.Draws++
		e.logger.Debug("Too few candidates outside recency window, allowing repeats",
			zap.Int("week", week),
			zap.Int("eligible", len(eligible)),
			zap.Strings("window", window.Names()))
		return e.drawPair(available, weights)
	}

	if len(eligible) == 2 {
		stats.Draws++
		return e.drawPair(eligible, weights)
	}

	for attempt := 0; attempt < e.maxRetries; attempt++ {
		stats.Draws++
		pair, err := e.drawPair(available, weights)
		if err != nil {
			return pair, err
		}
		if !window.Contains(pair[0]) && !window.Contains(pair[1]) {
			return pair, nil
		}
		stats.Retries++
	}

	stats.CappedWeeks++
	stats.Draws++
	e.logger.Warn("Retry limit reached, drawing from non-recent candidates",
		zap.Int("week", week),
		zap.Int("max_retries", e.maxRetries))
	return e.drawPair(eligible, weights)
}

// drawPair draws two distinct names by weighted sampling without replacement
func (e *Engine) drawPair(names []string, weights WeightState) ([2]string, error) {
	var pair [2]string

	first, err := e.pick(names, weights)
	if err != nil {
		return pair, err
	}

	rest := slices.DeleteFunc(slices.Clone(names), func(name string) bool {
		return name == first
	})

	second, err := e.pick(rest, weights)
	if err != nil {
		return pair, err
	}

	pair[0], pair[1] = first, second
	return pair, nil
}

// pick draws a single name with probability proportional to its weight
func (e *Engine) pick(names []string, weights WeightState) (string, error) {
	maxWeight := 0.0
	for _, name := range names {
		maxWeight = math.Max(maxWeight, weights[name])
	}
	if maxWeight <= 0 {
		return "", ErrDegenerateWeights
	}

	choices := make([]weightedrand.Choice[string, int64], 0, len(names))
	for _, name := range names {
		scaled := int64(math.Round(weights[name] / maxWeight * choiceScale))
		if scaled < 1 {
			scaled = 1
		}
		choices = append(choices, weightedrand.NewChoice(name, scaled))
	}

	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return "", fmt.Errorf("failed to build chooser: %w", err)
	}

	return chooser.PickSource(e.rng), nil
}
