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
package timeout_test

import (
	ctxt "context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/acquirecloud/timeout"
	context2 "github.com/acquirecloud/timeout/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoDisabled(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		start := time.Now()
		var gotD time.Duration
		res, err := timeout.Do(ctxt.Background(), d, func(ctx ctxt.Context, d time.Duration) (int, error) {
			gotD = d
			return 42, nil
		})
		assert.Nil(t, err)
		assert.Equal(t, 42, res)
		assert.Equal(t, d, gotD)
		assert.True(t, time.Now().Sub(start) < 100*time.Millisecond)
	}
}

func TestDoResult(t *testing.T) {
	start := time.Now()
	res, err := timeout.Do(ctxt.Background(), time.Second, func(ctx ctxt.Context, d time.Duration) (int, error) {
		return 42, nil
	})
	assert.Nil(t, err)
	assert.Equal(t, 42, res)
	assert.True(t, time.Now().Sub(start) < 500*time.Millisecond)
}

func TestDoExpired(t *testing.T) {
	start := time.Now()
	_, err := timeout.Do(ctxt.Background(), 100*time.Millisecond, func(ctx ctxt.Context, d time.Duration) (int, error) {
		time.Sleep(time.Second)
		return 42, nil
	})
	elapsed := time.Now().Sub(start)
	assert.True(t, elapsed >= 100*time.Millisecond)
	assert.True(t, elapsed < 800*time.Millisecond)

	require.NotNil(t, err)
	assert.Equal(t, "execution expired", err.Error())
	assert.True(t, errors.Is(err, timeout.ErrTimeout))
	assert.True(t, errors.Is(err, timeout.ErrExpired))

	var terr *timeout.Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, 100*time.Millisecond, terr.Elapsed)
	assert.True(t, terr.Timeout())
	assert.False(t, terr.Temporary())
}

func TestDoOperationError(t *testing.T) {
	opErr := fmt.Errorf("my own failure")
	_, err := timeout.Do(ctxt.Background(), time.Second, func(ctx ctxt.Context, d time.Duration) (int, error) {
		return 0, opErr
	})
	assert.True(t, err == opErr)
	assert.False(t, errors.Is(err, timeout.ErrTimeout))
}

func TestDoErrCustomKind(t *testing.T) {
	kind := errors.New("my kind")
	_, err := timeout.DoErr(ctxt.Background(), 50*time.Millisecond, kind, func(ctx ctxt.Context, d time.Duration) (int, error) {
		time.Sleep(time.Second)
		return 0, nil
	})
	require.NotNil(t, err)
	assert.Equal(t, "execution expired", err.Error())
	assert.True(t, errors.Is(err, kind))
	assert.False(t, errors.Is(err, timeout.ErrTimeout))
}

func TestDoErrNilKind(t *testing.T) {
	_, err := timeout.DoErr(ctxt.Background(), 50*time.Millisecond, nil, func(ctx ctxt.Context, d time.Duration) (int, error) {
		time.Sleep(time.Second)
		return 0, nil
	})
	assert.True(t, errors.Is(err, timeout.ErrTimeout))
}

func TestDoNested(t *testing.T) {
	start := time.Now()
	var innerErr error
	_, err := timeout.Do(ctxt.Background(), time.Second, func(ctx ctxt.Context, d time.Duration) (int, error) {
		var res int
		res, innerErr = timeout.Do(ctx, 50*time.Millisecond, func(ctx ctxt.Context, d time.Duration) (int, error) {
			time.Sleep(300 * time.Millisecond)
			return 13, nil
		})
		return res, innerErr
	})
	// the inner expiry is propagated by the outer call unchanged
	require.NotNil(t, err)
	assert.True(t, err == innerErr)
	assert.True(t, errors.Is(err, timeout.ErrTimeout))
	assert.True(t, time.Now().Sub(start) < 500*time.Millisecond)
}

func TestDoParentCtxClosed(t *testing.T) {
	ctx, cancel := ctxt.WithCancel(ctxt.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	_, err := timeout.Do(ctx, time.Second, func(ctx ctxt.Context, d time.Duration) (int, error) {
		time.Sleep(300 * time.Millisecond)
		return 0, nil
	})
	// the parent close is forwarded as is, it is not a timeout
	assert.Equal(t, ctxt.Canceled, err)
	var terr *timeout.Error
	assert.False(t, errors.As(err, &terr))
	assert.True(t, time.Now().Sub(start) < 250*time.Millisecond)
}

func TestDoCooperativeCancel(t *testing.T) {
	var cause atomic.Value
	released := make(chan struct{})
	_, err := timeout.Do(ctxt.Background(), 50*time.Millisecond, func(ctx ctxt.Context, d time.Duration) (int, error) {
		defer close(released)
		<-ctx.Done()
		cause.Store(ctx.Err())
		return 0, ctx.Err()
	})
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, timeout.ErrTimeout))

	// the operation observes the very same expiry error through its context
	<-released
	assert.Equal(t, err, cause.Load())
}

func TestDoSleepHonorsCancel(t *testing.T) {
	start := time.Now()
	err := timeout.Run(ctxt.Background(), 50*time.Millisecond, func(ctx ctxt.Context, d time.Duration) error {
		return context2.Sleep(ctx, time.Minute)
	})
	assert.True(t, errors.Is(err, timeout.ErrTimeout))
	assert.True(t, time.Now().Sub(start) < 500*time.Millisecond)
}

func TestDoPanicPropagated(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		_, _ = timeout.Do(ctxt.Background(), time.Second, func(ctx ctxt.Context, d time.Duration) (int, error) {
			panic("boom")
		})
	})
}

func TestDoBoundaryRace(t *testing.T) {
	for i := 0; i < 200; i++ {
		res, err := timeout.Do(ctxt.Background(), time.Millisecond, func(ctx ctxt.Context, d time.Duration) (int, error) {
			time.Sleep(time.Millisecond)
			return 42, nil
		})
		if err == nil {
			assert.Equal(t, 42, res)
		} else {
			assert.True(t, errors.Is(err, timeout.ErrTimeout))
		}
	}
}

func TestRun(t *testing.T) {
	assert.Nil(t, timeout.Run(ctxt.Background(), time.Second, func(ctx ctxt.Context, d time.Duration) error {
		return nil
	}))
	err := timeout.Run(ctxt.Background(), 50*time.Millisecond, func(ctx ctxt.Context, d time.Duration) error {
		time.Sleep(time.Second)
		return nil
	})
	assert.True(t, errors.Is(err, timeout.ErrTimeout))
}

func TestTimeoutForwards(t *testing.T) {
	res, err := timeout.Timeout(ctxt.Background(), time.Second, nil, func(ctx ctxt.Context, d time.Duration) (string, error) {
		return "ok", nil
	})
	assert.Nil(t, err)
	assert.Equal(t, "ok", res)

	kind := errors.New("legacy kind")
	_, err = timeout.Timeout(ctxt.Background(), 50*time.Millisecond, kind, func(ctx ctxt.Context, d time.Duration) (string, error) {
		time.Sleep(time.Second)
		return "", nil
	})
	assert.True(t, errors.Is(err, kind))
}

func TestErrorStack(t *testing.T) {
	_, err := timeout.Do(ctxt.Background(), 10*time.Millisecond, func(ctx ctxt.Context, d time.Duration) (int, error) {
		time.Sleep(time.Second)
		return 0, nil
	})
	var terr *timeout.Error
	require.True(t, errors.As(err, &terr))

	st := terr.Stack()
	assert.True(t, strings.Contains(st, "TestErrorStack"))
	// the package internal plumbing must not leak into the trace
	assert.False(t, strings.Contains(st, "timeout.DoErr"))
	assert.False(t, strings.Contains(st, "reportExpiry"))
	assert.False(t, strings.Contains(st, "newError"))
}
