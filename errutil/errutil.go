package errutil

import (
	"fmt"
)

// debug enables the BugOn precondition checks. They sit on hot paths
// (bit access, packed reads) so they are compiled out by default.
const debug = false

func First(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func FatalIf(err error) {
	if err == nil {
		return
	}
	panic(fmt.Sprintf("FATAL: %v", err))
}

// Fatal reports a broken internal invariant. Unlike Bug it is never compiled out.
func Fatal(format string, msg ...any) {
	panic(fmt.Sprintf("FATAL: "+format, msg...))
}

func Bug(format string, msg ...any) {
	if debug {
		panic(fmt.Sprintf(format, msg...))
	}
}

func BugOn(cond bool, format string, msg ...any) {
	if debug && cond {
		Bug(format, msg...)
	}
}
