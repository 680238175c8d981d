package subprocess

// Framer decides when a multi-line response is complete.
//
// Complete is called after every line read with all lines of the current
// response so far, and must return true once the response is whole.
type Framer interface {
	Complete(lines []string) bool
}

// FramerFunc adapts a function to the Framer interface.
type FramerFunc func(lines []string) bool

// Complete implements Framer.
func (f FramerFunc) Complete(lines []string) bool {
	return f(lines)
}

// UntilCount frames a response of exactly n lines.
// A non-positive n is treated as one line.
func UntilCount(n int) Framer {
	return FramerFunc(func(lines []string) bool {
		return len(lines) >= max(n, 1)
	})
}

// UntilBlankLine frames a response terminated by an empty line.
// The empty line is kept as the last element of the response.
func UntilBlankLine() Framer {
	return FramerFunc(func(lines []string) bool {
		return len(lines) > 0 && lines[len(lines)-1] == ""
	})
}
