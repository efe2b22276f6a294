package hover

import "strings"

// SplitLines splits text into lines keeping line terminators, so that
// JoinLines(SplitLines(s)) == s. Last line has no terminator if text does not
// end with one. Empty text produces no lines.
func SplitLines(text string) []string {
	if len(text) == 0 {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines concatenates lines produced by SplitLines or Transform.
func JoinLines(lines []string) string {
	return strings.Join(lines, "")
}
