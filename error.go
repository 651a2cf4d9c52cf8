// Copyright 2024 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package timeout

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrTimeout is the default error kind reported when a deadline expires before
// the guarded operation completes.
var ErrTimeout = errors.New("execution expired")

// ErrExpired is the legacy name of the default timeout kind.
//
// Deprecated: use ErrTimeout instead.
var ErrExpired = ErrTimeout

// Error is returned by Do and DoErr when the deadline expires. It wraps the
// error kind the call was made with (ErrTimeout, if not overridden), so the
// callers should use errors.Is() to test for the kind.
type Error struct {
	// Kind is the error kind provided to the call (ErrTimeout by default)
	Kind error
	// Elapsed is the deadline value that expired
	Elapsed time.Duration

	pcs []uintptr
}

// newError captures the stack of the calling goroutine at the expiry report point
func newError(kind error, elapsed time.Duration) *Error {
	e := &Error{Kind: kind, Elapsed: elapsed}
	var pcs [64]uintptr
	n := runtime.Callers(2, pcs[:])
	e.pcs = make([]uintptr, n)
	copy(e.pcs, pcs[:n])
	return e
}

// Error is part of the error interface
func (e *Error) Error() string {
	return "execution expired"
}

// Unwrap returns the error kind, so errors.Is(e, kind) is always true
func (e *Error) Unwrap() error {
	return e.Kind
}

// Timeout always returns true. The method follows the net.Error convention,
// so the error may be recognized by the code that tests errors that way.
func (e *Error) Timeout() bool {
	return true
}

// Temporary is part of the net.Error convention
func (e *Error) Temporary() bool {
	return false
}

// Stack returns the trace of the point where the expiry was reported. The frames
// of this package and the runtime are stripped, so the trace starts from the
// caller's code.
func (e *Error) Stack() string {
	var sb strings.Builder
	frames := runtime.CallersFrames(e.pcs)
	for {
		fr, more := frames.Next()
		if fr.Function != "" && !internalFrame(fr.Function) {
			fmt.Fprintf(&sb, "%s\n\t%s:%d\n", fr.Function, fr.File, fr.Line)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

func internalFrame(funcName string) bool {
	const pkgPrefix = "github.com/acquirecloud/timeout."
	return strings.HasPrefix(funcName, pkgPrefix) || strings.HasPrefix(funcName, "runtime.") ||
		strings.HasPrefix(funcName, "testing.")
}
