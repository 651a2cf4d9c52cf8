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
package errors

import "errors"

var (
	// ErrNotExist is returned when an object is not found
	ErrNotExist = errors.New("not found")
	// ErrInvalid is returned for invalid parameters or a malformed request
	ErrInvalid = errors.New("invalid parameter")
	// ErrClosed is returned when an operation is requested on a closed object
	ErrClosed = errors.New("closed")
	// ErrCanceled is returned when an operation is interrupted before its completion
	ErrCanceled = errors.New("canceled")
	// ErrInternal is returned when an unexpected internal condition is met
	ErrInternal = errors.New("internal error")
)

// Is reports whether any error in err's tree matches target. It is here
// to avoid importing both this package and the standard errors one.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
