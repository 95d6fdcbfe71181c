package sanitize

import (
	"strings"
	"testing"
)

func TestTeamName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"passthrough", "team-alpha_2", "team-alpha_2"},
		{"empty", "", ""},
		{"strip spaces and punctuation", "team alpha!?", "teamalpha"},
		{"strip path separators", "../../etc/passwd", "....etcpasswd"},
		{"collapse hyphens", "a---b", "a-b"},
		{"collapse underscores", "__CONFLICT__", "_CONFLICT_"},
		{"keep dots", "v1.2", "v1.2"},
		{"drop unicode", "équipe", "quipe"},
		{"truncate", strings.Repeat("x", 100), strings.Repeat("x", MaxNameLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TeamName(tt.input); got != tt.want {
				t.Errorf("TeamName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNodeID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "42", "42"},
		{"windows line ending", "42\r", "42"},
		{"surrounding spaces", "  17 \t", "17"},
		{"null byte", "4\x002", "42"},
		{"delete char", "9\x7f", "9"},
		{"blank", "   ", ""},
		{"inner space kept", "node a", "node a"},
		{"truncate", strings.Repeat("7", 300), strings.Repeat("7", MaxNodeIDLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NodeID(tt.input); got != tt.want {
				t.Errorf("NodeID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
