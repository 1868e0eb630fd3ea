/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package parser

import (
	"strings"
)

// walk calls visit for every byte of s that lies outside quoted text and comments, passing the
// parenthesis depth. Both parentheses of a balanced pair are reported at the same depth.
// Returning false from visit stops the walk.
func walk(s string, visit func(i, depth int) bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			i = skipLineComment(s, i)
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i = skipBlockComment(s, i)
			continue
		case isQuote(c):
			i = skipQuoted(s, i)
			continue
		case c == '(':
			if !visit(i, depth) {
				return
			}
			depth++
			continue
		case c == ')':
			depth--
			if !visit(i, depth) {
				return
			}
			continue
		}
		if !visit(i, depth) {
			return
		}
	}
}

// StripComments removes -- and /* */ comments that are not inside quoted text
func StripComments(s string) string {
	if !strings.Contains(s, "--") && !strings.Contains(s, "/*") {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			i = skipLineComment(s, i)
			if i < len(s) {
				out.WriteByte('\n')
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i = skipBlockComment(s, i)
			out.WriteByte(' ')
		case isQuote(c):
			end := skipQuoted(s, i)
			if end >= len(s) {
				end = len(s) - 1
			}
			out.WriteString(s[i : end+1])
			i = end
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

func isQuote(c byte) bool {
	return c == '\'' || c == '"' || c == '`' || c == '['
}

// skipLineComment returns the offset of the newline ending the comment at i, or len(s)
func skipLineComment(s string, i int) int {
	if end := strings.IndexByte(s[i:], '\n'); end >= 0 {
		return i + end
	}
	return len(s)
}

// skipBlockComment returns the offset of the closing slash of the comment at i, or len(s)
func skipBlockComment(s string, i int) int {
	if end := strings.Index(s[i+2:], "*/"); end >= 0 {
		return i + 2 + end + 1
	}
	return len(s)
}

// skipQuoted returns the offset of the closing quote of the quoted run at i, or len(s).
// Doubled quote characters inside the run are treated as escapes.
func skipQuoted(s string, i int) int {
	closing := s[i]
	if closing == '[' {
		closing = ']'
	}
	for j := i + 1; j < len(s); j++ {
		if s[j] != closing {
			continue
		}
		if closing != ']' && j+1 < len(s) && s[j+1] == closing {
			j++
			continue
		}
		return j
	}
	return len(s)
}

// MaskLiterals returns s with the contents of every single-quoted string literal replaced by
// spaces. Offsets in the result line up with s, so matches found in the masked text can be
// applied to the original.
func MaskLiterals(s string) string {
	if !strings.Contains(s, "'") {
		return s
	}

	masked := []byte(s)
	for i := 0; i < len(s); i++ {
		if s[i] != '\'' {
			continue
		}
		end := skipQuoted(s, i)
		for j := i + 1; j < end && j < len(s); j++ {
			masked[j] = ' '
		}
		i = end
	}
	return string(masked)
}
