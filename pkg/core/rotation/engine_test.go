package rotation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/duty-rota/pkg/core/model"
)

var testToday = time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

func testRoster(available int, unavailable ...string) []model.Person {
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi"}
	roster := make([]model.Person, 0, available+len(unavailable))
	for _, name := range names[:available] {
		roster = append(roster, model.Person{Name: name, Email: name + "@example.com", Available: true})
	}
	for _, name := range unavailable {
		roster = append(roster, model.Person{Name: name, Email: name + "@example.com", Available: false})
	}
	return roster
}

func newTestEngine(seed int64, opts Options) *Engine {
	opts.Rand = rand.New(rand.NewSource(seed))
	opts.Logger = zap.NewNop()
	return NewEngine(opts)
}

func TestRun_ColdStartYear(t *testing.T) {
	engine := newTestEngine(1, Options{})

	result, err := engine.Run(Input{Roster: testRoster(6, "Zed"), Today: testToday})
	require.NoError(t, err)
	require.Len(t, result.Schedule, 52)

	// Two assignments per week
	assert.Equal(t, 104, result.History.Total())
	assert.Equal(t, 0, result.History.Count("Zed"))
	assert.InDelta(t, TargetExpectedAssignments(52, 6), result.Weights.Sum(), 1e-9)

	for i, week := range result.Schedule {
		assert.Equal(t, i+1, week.Week)
		assert.Equal(t, time.Monday, week.StartDate.Weekday())
		assert.Equal(t, WeekEnd(week.StartDate), week.EndDate)
		assert.NotEqual(t, week.Agent1.Name, week.Agent2.Name)
		assert.True(t, week.Agent1.Available)
		assert.True(t, week.Agent2.Available)
	}
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), result.Schedule[0].StartDate)

	for i := 1; i < len(result.Schedule); i++ {
		assert.Equal(t, result.Schedule[i-1].StartDate.AddDate(0, 0, 7), result.Schedule[i].StartDate, "week %d", i+1)
	}

	appearances := map[string]int{}
	for _, week := range result.Schedule {
		appearances[week.Agent1.Name]++
		appearances[week.Agent2.Name]++
	}
	for _, name := range result.History.Names() {
		assert.Equal(t, appearances[name], result.History.Count(name), name)
	}
}

func TestRun_RetryCapDrawsOutsideWindow(t *testing.T) {
	engine := newTestEngine(17, Options{MaxRetries: 1, Direction: AdjustBoost})

	result, err := engine.Run(Input{Roster: testRoster(8), Today: testToday})
	require.NoError(t, err)
	require.Len(t, result.Schedule, 52)

	assert.Zero(t, result.Stats.FallbackWeeks)
	assert.Positive(t, result.Stats.CappedWeeks)
	// One attempt per week, so every rejected draw ends in a capped week
	assert.Equal(t, result.Stats.Retries, result.Stats.CappedWeeks)

	for i := 1; i < len(result.Schedule); i++ {
		recent := map[string]bool{}
		for j := max(0, i-2); j < i; j++ {
			recent[result.Schedule[j].Agent1.Name] = true
			recent[result.Schedule[j].Agent2.Name] = true
		}
		for _, name := range result.Schedule[i].Names() {
			assert.False(t, recent[name], "week %d repeats %s from the previous two weeks", i+1, name)
		}
	}
}

func TestRun_RecoversFromDegenerateWeights(t *testing.T) {
	engine := newTestEngine(4, Options{Weeks: 6})
	calls := 0
	engine.adjust = func(weights WeightState, history History, direction AdjustmentDirection) WeightState {
		calls++
		if calls == 2 {
			zeroed := make(WeightState, len(weights))
			for name := range weights {
				zeroed[name] = 0
			}
			return zeroed
		}
		return AdjustForHistory(weights, history, direction)
	}

	result, err := engine.Run(Input{Roster: testRoster(5), Today: testToday})
	require.NoError(t, err)
	require.Len(t, result.Schedule, 6)

	assert.Equal(t, 1, result.Stats.WeightResets)
	assert.Equal(t, 12, result.History.Total())
	assert.InDelta(t, TargetExpectedAssignments(6, 5), result.Weights.Sum(), 1e-9)
}

func TestRun_RespectsRecencyWindow(t *testing.T) {
	engine := newTestEngine(3, Options{})

	result, err := engine.Run(Input{Roster: testRoster(8), Today: testToday})
	require.NoError(t, err)
	assert.Zero(t, result.Stats.FallbackWeeks)

	// With 8 people there is always room outside a 4-name window
	for i := 1; i < len(result.Schedule); i++ {
		recent := map[string]bool{}
		for j := max(0, i-2); j < i; j++ {
			recent[result.Schedule[j].Agent1.Name] = true
			recent[result.Schedule[j].Agent2.Name] = true
		}
		for _, name := range result.Schedule[i].Names() {
			assert.False(t, recent[name], "week %d repeats %s from the previous two weeks", i+1, name)
		}
	}
}

func TestRun_FallbackWhenWindowExhausted(t *testing.T) {
	engine := newTestEngine(5, Options{Weeks: 10})

	// Three people can never have two outside a window of four names
	result, err := engine.Run(Input{Roster: testRoster(3), Today: testToday})
	require.NoError(t, err)
	require.Len(t, result.Schedule, 10)

	assert.Equal(t, 20, result.History.Total())
	assert.Equal(t, 9, result.Stats.FallbackWeeks)
	for _, week := range result.Schedule {
		assert.NotEqual(t, week.Agent1.Name, week.Agent2.Name)
	}
}

func TestRun_TwoAvailableOneUnavailable(t *testing.T) {
	engine := newTestEngine(99, Options{Weeks: 2})
	roster := []model.Person{
		{Name: "A", Email: "a@example.com", Available: true},
		{Name: "B", Email: "b@example.com", Available: true},
		{Name: "C", Email: "c@example.com", Available: false},
	}

	result, err := engine.Run(Input{Roster: roster, Today: testToday})
	require.NoError(t, err)
	require.Len(t, result.Schedule, 2)

	for _, week := range result.Schedule {
		assert.ElementsMatch(t, []string{"A", "B"}, week.Names())
	}
	assert.Equal(t, 2, result.History.Count("A"))
	assert.Equal(t, 2, result.History.Count("B"))
	assert.Equal(t, 0, result.History.Count("C"))
	assert.Contains(t, result.History, "C")
}

func TestRun_DeterministicUnderSeed(t *testing.T) {
	input := Input{Roster: testRoster(7), Today: testToday}

	first, err := newTestEngine(1234, Options{}).Run(input)
	require.NoError(t, err)
	second, err := newTestEngine(1234, Options{}).Run(input)
	require.NoError(t, err)

	assert.Equal(t, first.Schedule, second.Schedule)
	assert.Equal(t, first.History, second.History)
}

func TestRun_InsufficientStaff(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	history := History{}.WithAssignment("Alice", start, WeekEnd(start))

	engine := newTestEngine(1, Options{})
	result, err := engine.Run(Input{Roster: testRoster(1, "Bob"), History: history, Today: testToday})

	assert.ErrorIs(t, err, ErrInsufficientStaff)
	assert.Nil(t, result)
	assert.Equal(t, 1, history.Count("Alice"))
	assert.Len(t, history, 1)
}

func TestRun_NobodyAvailable(t *testing.T) {
	engine := newTestEngine(1, Options{})

	_, err := engine.Run(Input{Roster: testRoster(0, "Bob", "Carol"), Today: testToday})
	assert.ErrorIs(t, err, ErrInsufficientStaff)
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestRun_DuplicateNames(t *testing.T) {
	roster := append(testRoster(3), model.Person{Name: "Alice", Available: true})

	_, err := newTestEngine(1, Options{}).Run(Input{Roster: roster, Today: testToday})
	assert.Error(t, err)
}

func TestRun_HistoryCarriesOver(t *testing.T) {
	first, err := newTestEngine(11, Options{Weeks: 4}).Run(Input{Roster: testRoster(5), Today: testToday})
	require.NoError(t, err)

	second, err := newTestEngine(12, Options{Weeks: 4}).Run(Input{
		Roster:  testRoster(5),
		History: first.History,
		Today:   testToday.AddDate(0, 0, 28),
	})
	require.NoError(t, err)

	assert.Equal(t, 8, first.History.Total())
	assert.Equal(t, 16, second.History.Total())
}

func TestRun_DampenSpreadsLoad(t *testing.T) {
	result, err := newTestEngine(21, Options{Weeks: 104, WindowSize: -1}).Run(Input{Roster: testRoster(4), Today: testToday})
	require.NoError(t, err)

	// 208 slots over 4 people; dampening keeps everyone close to 52
	for _, name := range result.History.Names() {
		assert.InDelta(t, 52, result.History.Count(name), 20, name)
	}
}

func TestNewEngine_Defaults(t *testing.T) {
	engine := NewEngine(Options{})

	assert.Equal(t, DefaultWeeks, engine.weeks)
	assert.Equal(t, DefaultWindowSize, engine.windowSize)
	assert.Equal(t, DefaultMaxRetries, engine.maxRetries)
	assert.Equal(t, AdjustDampen, engine.direction)
	assert.NotNil(t, engine.rng)
	assert.NotNil(t, engine.logger)

	disabled := NewEngine(Options{WindowSize: -1})
	assert.Equal(t, 0, disabled.windowSize)
}

func TestDrawPair_Distinct(t *testing.T) {
	engine := newTestEngine(8, Options{})
	weights := WeightState{"A": 100, "B": 0.001}

	for i := 0; i < 50; i++ {
		pair, err := engine.drawPair([]string{"A", "B"}, weights)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"A", "B"}, pair[:])
	}
}

func TestSelectPair_TwoEligibleUsedDirectly(t *testing.T) {
	engine := newTestEngine(9, Options{})
	available := []string{"A", "B", "C", "D", "E", "F"}
	weights := WeightState{"A": 10, "B": 10, "C": 10, "D": 10, "E": 0.01, "F": 0.01}

	window := NewRecencyWindow(4)
	window.Push("A", "B")
	window.Push("C", "D")

	for i := 0; i < 20; i++ {
		var stats Stats
		pair, err := engine.selectPair(1, available, weights, window, &stats)
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"E", "F"}, pair[:])
		assert.Equal(t, Stats{Draws: 1}, stats)
	}
}
