// Package assert implements the contract checks shared by the model
// packages. A broken contract is a programming error on the caller's side,
// so violations are delivered by panic with a distinct error type rather
// than by error return, following the convention gonum/mat uses for
// dimension mismatches.
package assert

import "fmt"

// Violation reports a broken API contract, such as an out-of-range image
// index or a shape mismatch between correction tiles. It is carried by
// panic: at the point of detection there is no recovery path, and callers
// are expected to fix their code rather than handle the failure.
type Violation struct {
	msg string
}

// Error returns the violated contract description.
func (v *Violation) Error() string {
	return v.msg
}

// That panics with a *Violation when cond is false. The message should name
// the contract that failed and include the offending values.
func That(cond bool, format string, args ...any) {
	if !cond {
		panic(&Violation{msg: fmt.Sprintf(format, args...)})
	}
}

// Failf unconditionally reports a violated contract.
func Failf(format string, args ...any) {
	panic(&Violation{msg: fmt.Sprintf(format, args...)})
}

// Maybe runs fn and converts a contract-violation panic into an ordinary
// error. Panics of any other type are re-raised. It exists for callers that
// cannot rule out misuse statically, and for tests that probe contracts.
func Maybe(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if v, ok := r.(*Violation); ok {
				err = v
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
