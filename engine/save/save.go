// Package save encodes and decodes simulation snapshots as JSON or MessagePack.
package save

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/types"
)

// Version is the snapshot layout version written into every snapshot.
const Version = "1"

// Format selects the snapshot encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ErrUnknownFormat is returned for a format other than json or msgpack.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// Snapshot is the serializable envelope around a State.
type Snapshot struct {
	Version string      `json:"version" msgpack:"version"`
	Game    string      `json:"game" msgpack:"game"`
	Content string      `json:"content_version" msgpack:"content_version"`
	State   types.State `json:"state" msgpack:"state"`
}

// ParseFormat maps a config string to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack, "mp", "msgp":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp", ".msgp":
		return FormatMsgpack
	}
	return FormatJSON
}

// Ext returns the file extension used for a format.
func (f Format) Ext() string {
	if f == FormatMsgpack {
		return ".msgpack"
	}
	return ".json"
}

// Encode serializes the state with the catalog's game metadata.
func Encode(s *types.State, defs *state.Defs, f Format) ([]byte, error) {
	snap := Snapshot{
		Version: Version,
		Game:    defs.Game.Title,
		Content: defs.Game.Version,
		State:   *s,
	}
	switch f {
	case FormatJSON:
		return json.MarshalIndent(snap, "", "  ")
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(&snap); err != nil {
			return nil, fmt.Errorf("encoding msgpack snapshot: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Decode deserializes a snapshot.
func Decode(data []byte, f Format) (*Snapshot, error) {
	var snap Snapshot
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decoding json snapshot: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decoding msgpack snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if snap.Version != Version {
		return nil, fmt.Errorf("snapshot version %q, want %q", snap.Version, Version)
	}

	// Collections are never nil after load.
	st := &snap.State
	if st.Enemies == nil {
		st.Enemies = []types.EnemyState{}
	}
	if st.Projectiles == nil {
		st.Projectiles = []types.Projectile{}
	}
	if st.Areas == nil {
		st.Areas = []types.AreaEffect{}
	}
	if st.Player.Skills == nil {
		st.Player.Skills = map[string]types.SkillSlot{}
	}
	return &snap, nil
}

// Apply replaces the state with the snapshot's. The caller restores the RNG
// from State.Seed and State.RNGPosition.
func Apply(s *types.State, snap *Snapshot) {
	*s = snap.State
}
