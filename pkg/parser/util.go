package parser

import "strings"

// lineCursor は行のスライスを先頭から順に読み進めます。
type lineCursor struct {
	lines []string
	pos   int
}

func newLineCursor(lines []string) *lineCursor {
	return &lineCursor{lines: lines}
}

// next は現在行を返してカーソルを1つ進めます。行が尽きていれば false を返します。
func (c *lineCursor) next() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	line := c.lines[c.pos]
	c.pos++
	return line, true
}

// skipBlank は連続する空行を読み飛ばします。
func (c *lineCursor) skipBlank() {
	for c.pos < len(c.lines) && strings.TrimSpace(c.lines[c.pos]) == "" {
		c.pos++
	}
}

// rest は未読の行をすべて返します。
func (c *lineCursor) rest() []string {
	if c.pos >= len(c.lines) {
		return nil
	}
	return c.lines[c.pos:]
}
