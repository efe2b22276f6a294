package hover

import "strings"

// State is the transformer state carried from one line to the next.
// InHover and InGuard are independent: a hover block may be found while
// already inside a guard.
type State struct {
	InHover bool
	InGuard bool
	// Depth is number of unmatched opening braces since the hover block
	// started.
	Depth int
	// Pending keeps lines of the hover block being collected.
	Pending []string
}

// Result is the outcome of transforming a buffer.
type Result struct {
	Lines []string
	// Modified is set when at least one new guard was added.
	Modified bool
	// Wrapped is the number of guards added.
	Wrapped int
	// Unterminated is set when input ended inside a hover block. Collected
	// lines are emitted unchanged in this case.
	Unterminated bool
}

// Transform wraps every :hover block found in lines which is not already
// inside a canonical media guard. Lines are expected to keep their
// terminators (see SplitLines). Input slice is not modified.
func Transform(lines []string) ([]string, bool) {
	res := Fold(lines)
	return res.Lines, res.Modified
}

// Fold runs the transformer over lines and returns full result.
func Fold(lines []string) Result {
	var (
		st  State
		res = Result{Lines: make([]string, 0, len(lines))}
	)
	for _, line := range lines {
		st = st.step(line, &res)
	}
	if st.InHover {
		res.Lines = append(res.Lines, st.Pending...)
		res.Unterminated = true
	}
	return res
}

func (st State) step(line string, res *Result) State {
	switch {
	case st.InHover:
		st.Pending = append(st.Pending, line)
		st.Depth += braceDelta(line)
		if st.Depth <= 0 {
			st = st.complete(res)
		}
	case IsHoverOpen(line):
		st.InHover = true
		st.Depth = braceDelta(line)
		st.Pending = append(st.Pending[:0:0], line)
		if st.Depth <= 0 {
			// whole rule is on a single line
			st = st.complete(res)
		}
	case IsGuardOpen(line):
		st.InGuard = true
		res.Lines = append(res.Lines, line)
	case st.InGuard && strings.TrimSpace(line) == "}":
		st.InGuard = false
		res.Lines = append(res.Lines, line)
	default:
		res.Lines = append(res.Lines, line)
	}
	return st
}

// complete emits collected hover block, wrapping it unless it is already
// guarded.
func (st State) complete(res *Result) State {
	block := st.Pending
	st.InHover, st.Depth, st.Pending = false, 0, nil

	if st.InGuard {
		res.Lines = append(res.Lines, block...)
		return st
	}

	eol := terminator(block[0])
	if eol == "" {
		eol = "\n"
	}
	closing := GuardClose + eol
	if last := len(block) - 1; terminator(block[last]) == "" {
		// block ends the buffer without line terminator, keep it that way
		block = append(block[:last:last], block[last]+eol)
		closing = GuardClose
	}

	res.Lines = append(res.Lines, GuardOpen+eol)
	res.Lines = append(res.Lines, block...)
	res.Lines = append(res.Lines, closing)
	res.Modified = true
	res.Wrapped++
	return st
}
