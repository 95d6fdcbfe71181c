// Package constants provides named constants used throughout the contagion codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Round budget constants
const (
	// DefaultMaxRounds is the round cap applied when none is configured.
	// The history of a run never holds more entries than the cap (round 0 included).
	DefaultMaxRounds = 100

	// DefaultRoundCapSpread is the width of the random window added to the cap.
	// Zero keeps the cap fixed at MaxRounds.
	DefaultRoundCapSpread = 0
)

// Voting constants for the majority and lottery models
const (
	// StandardSelfWeight is the extra vote a colored node casts for its own color
	// when self voting is enabled.
	StandardSelfWeight = 1.5

	// DefaultInfectionProbability is the per-neighbor infection chance used by random_p.
	DefaultInfectionProbability = 0.2
)

// RNG constants
const (
	// DefaultSeed is the seed historically used for reproducible tournament runs.
	DefaultSeed uint64 = 144144
)

// Team sentinel strings. These can never be used as team names.
const (
	// UncoloredName is the string form of a node holding no team.
	UncoloredName = ""

	// ConflictName marks a node claimed by two or more teams during seeding.
	ConflictName = "__CONFLICT__"
)

// OlympicPoints maps a finishing place to the points awarded for it.
// Places not listed earn nothing.
var OlympicPoints = map[int]int{
	1:  20,
	2:  15,
	3:  12,
	4:  9,
	5:  7,
	6:  5,
	7:  4,
	8:  3,
	9:  2,
	10: 1,
}
