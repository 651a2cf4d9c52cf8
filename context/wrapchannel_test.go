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
	"testing"
	"time"

	errors2 "github.com/acquirecloud/timeout/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrapChannel(t *testing.T) {
	ch := make(chan struct{})
	ctx := WrapChannel(ch)
	assert.Nil(t, ctx.Err())
	select {
	case <-ctx.Done():
		t.Fatal("must not happen")
	case <-time.After(10 * time.Millisecond):
	}
	close(ch)
	<-ctx.Done()
	assert.Equal(t, errors2.ErrClosed, ctx.Err())
	assert.Nil(t, ctx.Value("anything"))
}
