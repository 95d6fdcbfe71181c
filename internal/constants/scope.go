package constants

// Scope selects which neighbors take part in a vote or lottery.
type Scope string

const (
	// ScopeColored counts only neighbors that hold a team color.
	ScopeColored Scope = "colored"

	// ScopeAll counts every neighbor, uncolored ones included.
	ScopeAll Scope = "all"
)

// Valid returns true if the scope is a recognized value.
func (s Scope) Valid() bool {
	switch s {
	case ScopeColored, ScopeAll:
		return true
	}
	return false
}

// String returns the string representation of the scope.
func (s Scope) String() string {
	return string(s)
}
