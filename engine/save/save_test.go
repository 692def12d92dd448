package save

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/types"
)

// busyState returns a state with every optional field populated.
func busyState(defs *state.Defs) *types.State {
	s := state.NewState(defs)
	s.Tick = 240
	s.Time = 4
	s.Seed = 42
	s.RNGPosition = 317

	s.Player.Health = 63.5
	s.Player.Stamina = 12.25
	s.Player.Combo = 2
	s.Player.Swing = types.SwingState{Active: true, Kind: types.SwingLight, Progress: 0.4, InHitWindow: true}
	s.Player.Buff = types.Buff{Attack: 0.3, Remaining: 2.5}
	s.Player.Skills["firebolt"] = types.SkillSlot{Level: 2, Cooldown: 0.75}

	wt := geom.V(1, 0, 2)
	last := geom.V(0, 0, 5)
	s.Enemies[0].AI = types.AIChase
	s.Enemies[0].LastKnownPlayer = &last
	s.Enemies[1].AI = types.AIWander
	s.Enemies[1].WanderTarget = &wt

	s.Projectiles = append(s.Projectiles, types.Projectile{
		ID: "firebolt-4", Owner: state.PlayerID, Faction: types.FactionPlayer, Source: "firebolt",
		Position: geom.V(0, 1, 3), Velocity: geom.V(0, 0, 20), Radius: 0.3, Damage: 25, Lifetime: 0.6,
	})
	s.Areas = append(s.Areas, types.AreaEffect{
		ID: "quake-5", Owner: state.PlayerID, Faction: types.FactionPlayer, Source: "quake",
		Position: geom.V(0, 0, 4), Radius: 4, Damage: 8, Remaining: 2, TickInterval: 0.5, NextTick: 0.5,
	})
	return s
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatMsgpack} {
		t.Run(string(f), func(t *testing.T) {
			defs := state.DefaultDefs()
			s := busyState(defs)

			data, err := Encode(s, defs, f)
			require.NoError(t, err)

			snap, err := Decode(data, f)
			require.NoError(t, err)
			assert.Equal(t, Version, snap.Version)
			assert.Equal(t, defs.Game.Title, snap.Game)
			assert.Equal(t, defs.Game.Version, snap.Content)

			s2 := state.NewState(defs)
			Apply(s2, snap)
			assert.Equal(t, *s, *s2)
		})
	}
}

func TestEncode_JSONUsesStateNames(t *testing.T) {
	defs := state.DefaultDefs()
	s := busyState(defs)

	data, err := Encode(s, defs, FormatJSON)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	st, ok := raw["state"].(map[string]any)
	require.True(t, ok, "state should be an object")
	enemies := st["enemies"].([]any)
	assert.Equal(t, "chase", enemies[0].(map[string]any)["ai"])
	assert.EqualValues(t, 317, st["rng_position"])
}

func TestDecode_NormalizesNilCollections(t *testing.T) {
	data := []byte(`{"version":"1","game":"x","state":{"tick":3,"player":{"id":"player"}}}`)

	snap, err := Decode(data, FormatJSON)
	require.NoError(t, err)
	assert.NotNil(t, snap.State.Enemies)
	assert.NotNil(t, snap.State.Projectiles)
	assert.NotNil(t, snap.State.Areas)
	assert.NotNil(t, snap.State.Player.Skills)
	assert.EqualValues(t, 3, snap.State.Tick)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("{"), FormatJSON)
	assert.Error(t, err)

	_, err = Decode([]byte{0xc1}, FormatMsgpack)
	assert.Error(t, err)

	_, err = Decode([]byte(`{"version":"0","state":{}}`), FormatJSON)
	assert.ErrorContains(t, err, "version")

	_, err = Decode([]byte(`{}`), Format("yaml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestEncode_UnknownFormat(t *testing.T) {
	defs := state.DefaultDefs()
	_, err := Encode(state.NewState(defs), defs, Format("xml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatJSON},
		{"json", FormatJSON},
		{" JSON ", FormatJSON},
		{"msgpack", FormatMsgpack},
		{"mp", FormatMsgpack},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("toml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatMsgpack, FormatFromPath("/tmp/run.msgpack"))
	assert.Equal(t, FormatJSON, FormatFromPath("/tmp/run.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("checkpoint"))
	assert.Equal(t, ".msgpack", FormatMsgpack.Ext())
}
