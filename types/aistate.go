package types

import "fmt"

var aiStateNames = [...]string{
	AIIdle:      "idle",
	AIWander:    "wander",
	AIChase:     "chase",
	AITelegraph: "telegraph",
	AIAttack:    "attack",
	AIRecover:   "recover",
	AIStagger:   "stagger",
	AIRetreat:   "retreat",
}

func (s AIState) String() string {
	if int(s) < len(aiStateNames) {
		return aiStateNames[s]
	}
	return fmt.Sprintf("AIState(%d)", uint8(s))
}

// MarshalText encodes the state by name so snapshots stay readable.
func (s AIState) MarshalText() ([]byte, error) {
	if int(s) >= len(aiStateNames) {
		return nil, fmt.Errorf("invalid ai state %d", uint8(s))
	}
	return []byte(aiStateNames[s]), nil
}

// UnmarshalText decodes a state name.
func (s *AIState) UnmarshalText(b []byte) error {
	name := string(b)
	for i, n := range aiStateNames {
		if n == name {
			*s = AIState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown ai state %q", name)
}
