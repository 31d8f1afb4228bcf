package scan

import "fmt"

// A Pos is a position in source text.
type Pos struct {
	Offset int // byte offset from the start of the input, 0-based
	Line   int // line number, 1-based
	Column int // byte offset within the line, 0-based
}

// String renders p as "line:column".
func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }
