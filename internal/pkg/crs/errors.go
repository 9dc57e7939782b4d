// Copyright 2026 Key Portal Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package crs

import (
	"errors"
	"fmt"
)

// ApiError means the relay service responded with a definite error status.
// Callers map the status code onto domain meaning (404 -> not found, etc.).
type ApiError struct {
	StatusCode int
	Message    string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("crs api error: status=%d message=%s", e.StatusCode, e.Message)
}

// UnavailableError means the relay service could not be reached or timed out.
// Callers should treat it as transient and may degrade gracefully.
type UnavailableError struct {
	Message string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crs unavailable: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("crs unavailable: %s", e.Message)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an ApiError with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *ApiError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsUnavailable reports whether err signals a transient outage.
func IsUnavailable(err error) bool {
	var unavailable *UnavailableError
	return errors.As(err, &unavailable)
}
