package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSpyPlacesOnOpponent(t *testing.T) {
	b := NewBoard(DefaultRules())
	spy := inst(unit("Thaler", 2, LaneClose, AbilitySpy), 0)

	out, err := Resolve(b, Play{Card: spy, Side: 0, Lane: LaneClose})
	require.NoError(t, err)
	assert.Equal(t, SpyDrawCount, out.Draw)
	assert.Equal(t, 1, out.PlacedSide)
	assert.Equal(t, 0, b.TotalScore(0))
	assert.Equal(t, 2, b.TotalScore(1))
	assert.False(t, out.Discard)
}

func TestResolveRejectsBeforeMutating(t *testing.T) {
	b := NewBoard(DefaultRules())
	_, err := Resolve(b, Play{Card: inst(unit("Ballista", 6, LaneSiege, AbilityNone), 0), Side: 0, Lane: LaneClose})
	assert.True(t, errors.Is(err, ErrInvalidPlacement))
	assert.Empty(t, b.AllCards())

	_, err = Resolve(b, Play{Card: inst(special("Decoy", AbilityDecoy), 0), Side: 0})
	assert.True(t, errors.Is(err, ErrInvalidPlacement))
}

func TestResolveWeatherTargetsOpponent(t *testing.T) {
	b := NewBoard(DefaultRules())
	out, err := Resolve(b, Play{Card: inst(special("Biting Frost", AbilityFrost), 0), Side: 0})
	require.NoError(t, err)
	assert.True(t, out.Discard)
	assert.Equal(t, 1, out.EffectSide)
	assert.Equal(t, BoardLanes[:], out.Lanes)
	for _, row := range b.Rows[1] {
		assert.True(t, row.Weather)
	}
	for _, row := range b.Rows[0] {
		assert.False(t, row.Weather)
	}
}

func TestResolveWeatherCardLaneScope(t *testing.T) {
	rules := DefaultRules()
	rules.WeatherScope = ScopeCardLane
	b := NewBoard(rules)

	tests := []struct {
		ability Ability
		lane    Lane
	}{
		{AbilityFrost, LaneClose},
		{AbilityFog, LaneRanged},
		{AbilityRain, LaneSiege},
	}
	for _, tt := range tests {
		t.Run(tt.ability.String(), func(t *testing.T) {
			b.ClearWeather()
			out, err := Resolve(b, Play{Card: inst(special("Weather", tt.ability), 1), Side: 1})
			require.NoError(t, err)
			assert.Equal(t, []Lane{tt.lane}, out.Lanes)
			for _, row := range b.Rows[0] {
				assert.Equal(t, row.Lane == tt.lane, row.Weather, "lane %s", row.Lane)
			}
		})
	}
}

func TestResolveClearWeather(t *testing.T) {
	b := NewBoard(DefaultRules())
	b.ApplyEffect(EffectWeather, 0)
	b.ApplyEffect(EffectWeather, 1)
	b.ApplyEffect(EffectHorn, 1)
	_, err := Resolve(b, Play{Card: inst(special("Clear Weather", AbilityClearWeather), 0), Side: 0})
	require.NoError(t, err)
	for side := 0; side < 2; side++ {
		for _, row := range b.Rows[side] {
			assert.False(t, row.Weather)
		}
	}
	assert.True(t, b.Rows[1][0].Horn, "clear weather leaves horns alone")
}

func TestResolveHornScopes(t *testing.T) {
	b := NewBoard(DefaultRules())
	out, err := Resolve(b, Play{Card: inst(special("Commander's Horn", AbilityHorn), 0), Side: 0})
	require.NoError(t, err)
	assert.True(t, out.Discard)
	for _, row := range b.Rows[0] {
		assert.True(t, row.Horn)
	}

	rules := DefaultRules()
	rules.HornScope = ScopeCardLane
	b = NewBoard(rules)
	_, err = Resolve(b, Play{Card: inst(special("Commander's Horn", AbilityHorn), 0), Side: 0})
	assert.True(t, errors.Is(err, ErrInvalidPlacement), "lane-scoped horn needs a lane")

	_, err = Resolve(b, Play{Card: inst(special("Commander's Horn", AbilityHorn), 0), Side: 0, Lane: LaneRanged})
	require.NoError(t, err)
	assert.False(t, b.Rows[0][0].Horn)
	assert.True(t, b.Rows[0][1].Horn)

	// A unit horn stays on the board and horns its own lane.
	out, err = Resolve(b, Play{Card: inst(unit("Dandelion", 2, LaneClose, AbilityHorn), 0), Side: 0, Lane: LaneClose})
	require.NoError(t, err)
	assert.False(t, out.Discard)
	assert.True(t, b.Rows[0][0].Horn)
	assert.Equal(t, 4, b.RowScore(0, LaneClose))
}

func TestResolveScorchClose(t *testing.T) {
	b := NewBoard(DefaultRules())
	require.NoError(t, b.Place(inst(unit("Black Infantry Archer", 10, LaneClose, AbilityNone), 1), 1, LaneClose))
	require.NoError(t, b.Place(inst(unit("Sweers", 2, LaneClose, AbilityNone), 1), 1, LaneClose))

	out, err := Resolve(b, Play{Card: inst(unit("Villentretenmerth", 7, LaneClose, AbilityScorchClose), 0), Side: 0, Lane: LaneClose})
	require.NoError(t, err)
	assert.Equal(t, []string{"Black Infantry Archer"}, cardNames(out.Removed))
	assert.Equal(t, 7, b.TotalScore(0))
	assert.Equal(t, 2, b.TotalScore(1))
}

func TestResolveMedicSignalsResurrect(t *testing.T) {
	b := NewBoard(DefaultRules())
	out, err := Resolve(b, Play{Card: inst(unit("Dun Banner Medic", 5, LaneSiege, AbilityMedic), 0), Side: 0, Lane: LaneSiege})
	require.NoError(t, err)
	assert.True(t, out.Resurrect)
	assert.Equal(t, 5, b.TotalScore(0))
}

func TestResolveDecoyReturnsOwnCard(t *testing.T) {
	b := NewBoard(DefaultRules())
	mine := inst(unit("Ves", 5, LaneClose, AbilityNone), 0)
	theirs := inst(unit("Sweers", 2, LaneClose, AbilityNone), 1)
	geralt := inst(hero("Geralt", 15, LaneClose), 0)
	require.NoError(t, b.Place(mine, 0, LaneClose))
	require.NoError(t, b.Place(theirs, 1, LaneClose))
	require.NoError(t, b.Place(geralt, 0, LaneClose))

	decoy := inst(special("Decoy", AbilityDecoy), 0)
	_, err := Resolve(b, Play{Card: decoy, Side: 0, Target: theirs})
	assert.True(t, errors.Is(err, ErrInvalidPlacement), "opponent's cards cannot be swapped")
	_, err = Resolve(b, Play{Card: decoy, Side: 0, Target: geralt})
	assert.True(t, errors.Is(err, ErrInvalidPlacement), "heroes cannot be swapped")

	out, err := Resolve(b, Play{Card: decoy, Side: 0, Target: mine})
	require.NoError(t, err)
	assert.Same(t, mine, out.Returned)
	assert.True(t, out.Discard)
	assert.Equal(t, 15, b.TotalScore(0))
}

func TestScoringAbilitiesHaveNoResolution(t *testing.T) {
	for _, a := range []Ability{AbilityNone, AbilityTightBond, AbilityHero, AbilityMoraleBoost} {
		b := NewBoard(DefaultRules())
		out, err := Resolve(b, Play{Card: inst(unit("Soldier", 3, LaneClose, a), 0), Side: 0, Lane: LaneClose})
		require.NoError(t, err)
		assert.Zero(t, out.Draw)
		assert.False(t, out.Resurrect)
		assert.Empty(t, out.Removed)
		assert.Equal(t, 3, b.TotalScore(0))
	}
}

func TestResolveLeader(t *testing.T) {
	b := NewBoard(DefaultRules())
	foltest := &Card{Name: "Foltest", Row: LaneSiege, Ability: AbilityHorn, Hero: true}
	out := ResolveLeader(b, 0, foltest)
	assert.Equal(t, 0, out.EffectSide)
	for _, row := range b.Rows[0] {
		assert.True(t, row.Horn)
	}
	assert.Empty(t, b.AllCards(), "leaders never occupy a row")

	rules := DefaultRules()
	rules.HornScope = ScopeCardLane
	b = NewBoard(rules)
	ResolveLeader(b, 0, foltest)
	assert.True(t, b.Rows[0][2].Horn)
	assert.False(t, b.Rows[0][0].Horn)

	emhyr := &Card{Name: "Emhyr", Ability: AbilityRain}
	out = ResolveLeader(b, 1, emhyr)
	assert.Equal(t, 0, out.EffectSide)
	assert.True(t, b.Rows[0][2].Weather)

	spy := &Card{Name: "Spymaster", Ability: AbilitySpy}
	out = ResolveLeader(b, 0, spy)
	assert.Zero(t, out.Draw)
}
