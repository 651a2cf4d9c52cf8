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
	"context"
	"time"

	context2 "github.com/acquirecloud/timeout/context"
)

// Func is the guarded operation. It receives the effective deadline value d
// (informational, maybe 0 if the guard is disabled) and the context, which is
// canceled with the *Error value as soon as the deadline fires, so a cooperative
// operation may use the context to unwind early.
type Func[T any] func(ctx context.Context, d time.Duration) (T, error)

// opResult carries the operation outcome from its goroutine to the executor
type opResult[T any] struct {
	val      T
	err      error
	pnc      any
	panicked bool
}

// Do executes f under the deadline d and returns its result. If d elapses before
// f completes, *Error wrapping ErrTimeout is returned instead of the f's result.
//
// The d values <= 0 disable the guard: f is invoked directly on the calling
// goroutine and no watcher is created.
//
// The f's own error or panic is propagated to the caller unchanged. The ctx
// close during the wait is not a timeout: the ctx error is returned as is.
func Do[T any](ctx context.Context, d time.Duration, f Func[T]) (T, error) {
	return DoErr(ctx, d, ErrTimeout, f)
}

// DoErr works like Do, but the expiry is reported with the caller-chosen error
// kind instead of ErrTimeout: the returned *Error wraps the kind, so
// errors.Is(err, kind) is true. The nil kind falls back to ErrTimeout.
func DoErr[T any](ctx context.Context, d time.Duration, kind error, f Func[T]) (T, error) {
	if kind == nil {
		kind = ErrTimeout
	}
	if d <= 0 {
		// the guard is disabled, no watcher overhead at all
		return f(ctx, d)
	}

	// the token must be armed strictly before f is invoked
	tk := newToken(kind)
	w := newWatcher(tk)
	go w.run(ctx, d)
	defer w.stopAndJoin()

	opCtx, cancel := context2.WithCancelError(ctx)
	defer cancel(nil)

	resCh := make(chan opResult[T], 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				resCh <- opResult[T]{pnc: p, panicked: true}
			}
		}()
		v, err := f(opCtx, d)
		resCh <- opResult[T]{val: v, err: err}
	}()

	select {
	case r := <-resCh:
		if r.panicked {
			panic(r.pnc)
		}
		if !tk.disarm() {
			// the signal was already in flight, it wins and must be handled
			<-tk.fired
			return reportExpiry[T](tk, d, cancel)
		}
		return r.val, r.err
	case <-tk.fired:
		return reportExpiry[T](tk, d, cancel)
	}
}

// Run is the non-generic convenience flavor of Do for the operations with no result
func Run(ctx context.Context, d time.Duration, f func(ctx context.Context, d time.Duration) error) error {
	_, err := Do(ctx, d, func(ctx context.Context, d time.Duration) (struct{}, error) {
		return struct{}{}, f(ctx, d)
	})
	return err
}

// Timeout forwards to DoErr.
//
// Deprecated: the function exists for compatibility with the early versions of
// the package. Use Do or DoErr instead.
func Timeout[T any](ctx context.Context, d time.Duration, kind error, f Func[T]) (T, error) {
	return DoErr(ctx, d, kind, f)
}

// reportExpiry turns the delivered token signal into the caller-visible error.
// The unrelated error forwarded by the watcher is returned as is, the normal
// expiry is reported as *Error. Either way the operation context is canceled
// with the same cause, so a cooperative operation observes it too.
func reportExpiry[T any](tk *token, d time.Duration, cancel context2.CancelErrFunc) (T, error) {
	var none T
	if tk.err != nil {
		cancel(tk.err)
		return none, tk.err
	}
	terr := newError(tk.kind, d)
	cancel(terr)
	return none, terr
}
