package models

import (
	"errors"
	"fmt"
)

// Reaction is the string value stored per user per day. NoReaction is the
// default for users that never reacted.
type Reaction string

const (
	NoReaction Reaction = "NoReaction"
	Funny      Reaction = "Funny"
	Love       Reaction = "Love"
	Tough      Reaction = "Tough"
	Wow        Reaction = "Wow"
	// Deprecated reactions. Kept readable for historical records, rejected on write.
	Eesh Reaction = "Eesh"
	Pain Reaction = "Pain"
)

var ErrUnknownReaction = errors.New("unknown reaction")

var allReactions = []Reaction{NoReaction, Funny, Love, Tough, Wow, Eesh, Pain}

var deprecatedReactions = map[Reaction]bool{
	Eesh: true,
	Pain: true,
}

// ParseReaction converts a raw string into a Reaction, deprecated ones included.
func ParseReaction(s string) (Reaction, error) {
	for _, r := range allReactions {
		if string(r) == s {
			return r, nil
		}
	}
	return NoReaction, fmt.Errorf("%w: %q", ErrUnknownReaction, s)
}

func (r Reaction) Deprecated() bool {
	return deprecatedReactions[r]
}

// Active reports whether the reaction may be newly set by a user.
func (r Reaction) Active() bool {
	return !r.Deprecated()
}

func (r Reaction) String() string {
	return string(r)
}

// ActiveReactions returns the reactions eligible for new writes.
func ActiveReactions() []Reaction {
	active := make([]Reaction, 0, len(allReactions))
	for _, r := range allReactions {
		if r.Active() {
			active = append(active, r)
		}
	}
	return active
}

// CountedReactions returns the reactions tracked in the per-day counts map.
// NoReaction is excluded: clearing a reaction only decrements the old entry,
// so the map total always equals the number of users currently reacting.
func CountedReactions() []Reaction {
	counted := make([]Reaction, 0, len(allReactions))
	for _, r := range allReactions {
		if r.Active() && r != NoReaction {
			counted = append(counted, r)
		}
	}
	return counted
}

// StartingCounts builds the zero-initialized counts map written when a day's
// counts record is first created.
func StartingCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range CountedReactions() {
		counts[string(r)] = 0
	}
	return counts
}
