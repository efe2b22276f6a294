package hover

import "testing"

func TestIsHoverOpen(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"a:hover {", true},
		{"a:hover{", true},
		{"  &:hover {\n", true},
		{":hover {", true},
		{"\t.btn-primary:hover   {", true},
		{".nav a:hover {", true},
		{"a:hover { color: red; }", true},
		{"a:hover, a:focus {", false},
		{"a, b:hover {", false},
		{"a:hover .icon {", false},
		{"a:hover", false},
		{"// a:hover {", false},
		{"@media (hover: hover) {", false},
		{"a:focus {", false},
	}
	for _, tt := range tests {
		if got := IsHoverOpen(tt.line); got != tt.want {
			t.Errorf("IsHoverOpen(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestIsGuardOpen(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{GuardOpen, true},
		{GuardOpen + "\n", true},
		{GuardOpen + "\r\n", true},
		{"@media (hover: hover) and (pointer: fine) {", true},
		{"@media (hover: hover) and (pointer: fine){", false},
		{"@media (hover: hover) {", false},
		{"@media (hover: hover) and (pointer: coarse) {", false},
		{"@media (hover: hover) and (pointer: fine) { a { b: c; } }", false},
	}
	for _, tt := range tests {
		if got := IsGuardOpen(tt.line); got != tt.want {
			t.Errorf("IsGuardOpen(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestSplitJoinLines(t *testing.T) {
	tests := []struct {
		in    string
		count int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\r\nb\r\n", 2},
		{"\n\n", 2},
	}
	for _, tt := range tests {
		lines := SplitLines(tt.in)
		if len(lines) != tt.count {
			t.Errorf("SplitLines(%q) returned %d lines, want %d", tt.in, len(lines), tt.count)
		}
		if got := JoinLines(lines); got != tt.in {
			t.Errorf("JoinLines(SplitLines(%q)) = %q", tt.in, got)
		}
	}
}
