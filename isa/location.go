package isa

import "fmt"

// Location is the source-location the most recently executed marker
// instruction set; it is purely advisory and carries no constraints.
type Location struct {
	File     string
	Function string
	Line     int
	Column   int
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	s := l.File
	if l.Line > 0 {
		s += fmt.Sprintf(":%d", l.Line)
		if l.Column > 0 {
			s += fmt.Sprintf(":%d", l.Column)
		}
	}
	if l.Function != "" {
		s += fmt.Sprintf(" (in %s)", l.Function)
	}
	return s
}
