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
package context

import (
	ctx "context"
	"sync"
	"time"

	errors2 "github.com/acquirecloud/timeout/errors"
)

type wrapChnlCtx struct {
	ch   <-chan struct{}
	lock sync.Mutex
	done chan struct{}
	err  error
}

var _ ctx.Context = (*wrapChnlCtx)(nil)

// WrapChannel receives a channel ch, which is used as a signal one (may be closed,
// but never written), and returns a context.Context, which will be closed as soon
// as the ch is closed.
func WrapChannel(ch <-chan struct{}) ctx.Context {
	c := &wrapChnlCtx{ch: ch, done: make(chan struct{})}
	go func() {
		<-ch
		c.lock.Lock()
		c.err = errors2.ErrClosed
		close(c.done)
		c.lock.Unlock()
	}()
	return c
}

func (c *wrapChnlCtx) Deadline() (deadline time.Time, ok bool) {
	return
}

func (c *wrapChnlCtx) Done() <-chan struct{} {
	return c.done
}

func (c *wrapChnlCtx) Err() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.err
}

func (c *wrapChnlCtx) Value(key any) any {
	return nil
}
