// Copyright 2024 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
/*
Package timeout allows to execute a unit of work under a deadline. If the work does
not complete within the allotted time, the call is aborted and a timeout error is
returned instead of the work's result.

Every call owns its private deadline watcher, which runs concurrently with the
guarded operation and which is always stopped and awaited before the call returns.
The expiry signal is a call-scoped one-shot token, so nested or concurrent calls
can never mistake one call's timeout for another's. The guarded operation receives
a context, which is canceled with the timeout error when the deadline fires, so a
cooperative operation may unwind early, but even a completely uncooperative one
cannot delay the timeout report.

The typical usage:

	res, err := timeout.Do(ctx, time.Second, func(ctx context.Context, d time.Duration) (int, error) {
		// some potentially long work here
		return 42, nil
	})
	if errors.Is(err, timeout.ErrTimeout) {
		// the second expired before the work completed
	}
*/
package timeout
