// Package hover wraps stylesheet rule blocks that target the :hover state in
// a media query guard, so hover-only styling does not stick on touch screens.
//
// The transformation is line based. It does not parse the stylesheet, it only
// recognizes selector lines and counts braces to find where a block ends.
package hover

import (
	"regexp"
	"strings"
)

const (
	// GuardOpen is the canonical opening line of the media guard (without
	// line terminator).
	GuardOpen = "  @media (hover: hover) and (pointer: fine) {"
	// GuardClose is the canonical closing line of the media guard (without
	// line terminator).
	GuardClose = "  }"
)

var (
	// Optional indentation, then either the nesting marker or a simple
	// selector prefix without commas or braces, then ":hover" and the opening
	// brace.
	hoverOpen = regexp.MustCompile(`^\s*(?:&|[^\s,{};@/][^,{};]*?)?:hover\s*\{`)
	// Only exact canonical guard text is recognized.
	guardOpen = regexp.MustCompile(`^\s*@media \(hover: hover\) and \(pointer: fine\) \{\s*$`)
)

// IsHoverOpen reports whether line opens a :hover block.
func IsHoverOpen(line string) bool {
	return hoverOpen.MatchString(line)
}

// IsGuardOpen reports whether line opens the canonical media guard.
func IsGuardOpen(line string) bool {
	return guardOpen.MatchString(line)
}

// braceDelta returns number of opening braces minus number of closing braces
// on the line.
func braceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}

// terminator returns line ending used by the line, empty if there is none.
func terminator(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	}
	return ""
}
