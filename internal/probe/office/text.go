package office

import (
	"unicode"
	"unicode/utf8"
)

// counter counts words and non-whitespace characters of streamed text.
// A word may span several writes until a break.
type counter struct {
	words  int
	chars  int
	inWord bool
}

func (c *counter) write(b []byte) {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if unicode.IsSpace(r) {
			c.inWord = false
			continue
		}
		c.chars++
		if !c.inWord {
			c.words++
			c.inWord = true
		}
	}
}

// brk ends the current word (paragraph end, tab, line break).
func (c *counter) brk() { c.inWord = false }
