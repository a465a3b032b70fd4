package errors

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

// stack records the program counters at the point an error was created
type stack []uintptr

func (s *stack) Format(st fmt.State, verb rune) {
	if verb == 'v' && st.Flag('+') {
		for _, pc := range *s {
			f := errors.Frame(pc)
			fmt.Fprintf(st, "\n%+v", f)
		}
	}
}

// StackTrace converts the recorded program counters into pkg/errors frames
func (s *stack) StackTrace() errors.StackTrace {
	if s == nil {
		return nil
	}
	f := make([]errors.Frame, len(*s))
	for i := 0; i < len(f); i++ {
		f[i] = errors.Frame((*s)[i])
	}
	return f
}

func callers() *stack {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	var st stack = pcs[0:n]
	return &st
}
