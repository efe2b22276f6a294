// Package css checks brace structure of stylesheet sources on top of
// "github.com/tdewolff/parse/v2/css" lexer.
package css

import (
	"bytes"
	"errors"
	"io"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Balance describes brace structure of a stylesheet.
type Balance struct {
	// Depth is number of unclosed opening braces at the end of input.
	Depth int
	// MaxDepth is the deepest nesting seen.
	MaxDepth int
	// StrayLine is 1-based line number of the first closing brace without
	// matching opening one, 0 if there is none.
	StrayLine int
	// Blocks is number of balanced brace pairs.
	Blocks int
}

// Balanced reports whether every brace has a pair.
func (b Balance) Balanced() bool {
	return b.Depth == 0 && b.StrayLine == 0
}

// Checker lexes stylesheets and counts braces outside of comments and
// strings.
type Checker struct {
	log *zap.Logger
}

// NewChecker creates a new brace checker.
func NewChecker(log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{log: log.Named("css-checker")}
}

// Check lexes data and returns its brace balance. The optional source
// parameter identifies what's being checked (for debug logging).
func (c *Checker) Check(data []byte, source ...string) Balance {
	var (
		b         Balance
		line      = 1
		prevSlash bool
		inComment bool
	)

	lexer := css.NewLexer(parse.NewInput(bytes.NewReader(data)))
	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				c.log.Debug("CSS lexer error", zap.Error(err), zap.Int("line", line))
			}
			break
		}

		nl := bytes.Count(text, []byte{'\n'})

		// SCSS line comment, lexer does not know about those
		if inComment {
			if nl > 0 {
				inComment = false
			}
			line += nl
			continue
		}
		isSlash := tt == css.DelimToken && len(text) == 1 && text[0] == '/'
		if isSlash && prevSlash {
			inComment = true
			prevSlash = false
			continue
		}
		prevSlash = isSlash

		switch tt {
		case css.LeftBraceToken:
			b.Depth++
			b.MaxDepth = max(b.MaxDepth, b.Depth)
		case css.RightBraceToken:
			if b.Depth == 0 {
				if b.StrayLine == 0 {
					b.StrayLine = line
				}
				break
			}
			b.Depth--
			b.Blocks++
		}
		line += nl
	}

	if len(source) > 0 && source[0] != "" {
		c.log.Debug("Checked braces", zap.String("source", source[0]), zap.Int("bytes", len(data)),
			zap.Int("blocks", b.Blocks), zap.Int("depth", b.Depth), zap.Int("stray", b.StrayLine))
	}
	return b
}
