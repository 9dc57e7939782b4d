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
	"context"
	"sync"
	"time"
)

// expiryMargin is subtracted from the server-declared expiration so the
// cached token is refreshed before the relay service's clock invalidates it.
const expiryMargin = time.Minute

// loginFunc performs an actual login call and returns the token plus its
// declared lifetime.
type loginFunc func(ctx context.Context) (token string, expiresIn time.Duration, err error)

// session holds the process-wide relay credential. All refresh attempts are
// serialized behind the mutex, so concurrent callers coalesce on one login.
type session struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
	now    func() time.Time
}

func newSession(now func() time.Time) *session {
	if now == nil {
		now = time.Now
	}
	return &session{now: now}
}

// get returns the cached token, logging in through login when the cached one
// is missing or expired.
func (s *session) get(ctx context.Context, login loginFunc) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiry) {
		return s.token, nil
	}

	token, expiresIn, err := login(ctx)
	if err != nil {
		return "", err
	}

	s.token = token
	s.expiry = s.now().Add(expiresIn - expiryMargin)
	return s.token, nil
}

// invalidate drops the cached token. The next get performs a fresh login.
func (s *session) invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiry = time.Time{}
	s.mu.Unlock()
}
