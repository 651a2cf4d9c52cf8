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
	"fmt"
	"sync/atomic"
	"time"

	"github.com/acquirecloud/timeout/chans"
	"github.com/acquirecloud/timeout/ulidutils"
)

const (
	tkArmed int32 = iota
	tkTripped
	tkDisarmed
)

type (
	// token is the one-shot cancellation signal of one call. Each call gets its
	// own token, so the expiry of one call can never be observed by another one.
	// The token may be either tripped by the watcher or disarmed by the executor,
	// whatever happens first wins, the loser turns to no-op.
	token struct {
		id    string
		kind  error
		state int32
		// err keeps the unrelated error forwarded by the watcher. It is nil for
		// the normal expiry. Written once before the fired close.
		err   error
		fired chan struct{}
	}

	// watcher is the deadline supervisor of one call. It lives on its own
	// goroutine and trips the token when the deadline elapses, unless it is
	// stopped by the executor first.
	watcher struct {
		tk   *token
		stop chan struct{}
		done chan struct{}
	}
)

func newToken(kind error) *token {
	return &token{id: ulidutils.NewID(), kind: kind, fired: make(chan struct{})}
}

// trip delivers the signal. The err value, if not nil, is an unrelated failure
// which must be forwarded to the executor as is instead of the timeout report.
// It returns true if the call won the race against disarm().
func (tk *token) trip(err error) bool {
	if !atomic.CompareAndSwapInt32(&tk.state, tkArmed, tkTripped) {
		return false
	}
	tk.err = err
	close(tk.fired)
	return true
}

// disarm suppresses the token, so the signal will never be delivered. It returns
// false if the token is already tripped, this case the signal must be handled.
func (tk *token) disarm() bool {
	return atomic.CompareAndSwapInt32(&tk.state, tkArmed, tkDisarmed)
}

// tripped returns whether the signal is fully delivered
func (tk *token) tripped() bool {
	return chans.IsClosed(tk.fired)
}

// String implements fmt.Stringify
func (tk *token) String() string {
	return fmt.Sprintf("{id: %s, state: %d, kind: %v}", tk.id, atomic.LoadInt32(&tk.state), tk.kind)
}

func newWatcher(tk *token) *watcher {
	return &watcher{tk: tk, stop: make(chan struct{}), done: make(chan struct{})}
}

// run arms the deadline d against the token. When d elapses the token is tripped
// with the nil cause (the normal expiry). If the context ctx is closed during the
// wait, its error is forwarded through the token as is, the case is not a timeout.
// The stop request terminates the watcher silently.
func (w *watcher) run(ctx context.Context, d time.Duration) {
	defer close(w.done)
	tmr := time.NewTimer(d)
	defer tmr.Stop()
	select {
	case <-tmr.C:
		w.tk.trip(nil)
	case <-ctx.Done():
		w.tk.trip(ctx.Err())
	case <-w.stop:
	}
}

// stopAndJoin requests the watcher termination and waits until its goroutine
// exits. After the call returns, no watcher activity of the call is possible.
func (w *watcher) stopAndJoin() {
	close(w.stop)
	<-w.done
}
