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

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/keyportal/keyportal/internal/pkg/cronrun"
	"github.com/keyportal/keyportal/internal/portal/repo"
	"github.com/keyportal/keyportal/internal/portal/service"
	"github.com/keyportal/keyportal/pkg/log"
)

// Keys expiring further out than this never need a reminder.
const expirationLookahead = 30 * 24 * time.Hour

// NewExpirationCheckJob runs daily at 09:00 and reminds owners of keys
// nearing expiry. One key's failure does not abort the rest of the sweep.
func NewExpirationCheckJob(keys repo.IApiKeyRepository, expiration service.IExpirationService) *cronrun.Job {
	return &cronrun.Job{
		Name:        ExpirationCheckJobName,
		Schedule:    "0 9 * * *",
		Description: "send expiration reminders for keys nearing expiry",
		Handler: func(ctx context.Context) (map[string]any, error) {
			deadline := time.Now().Add(expirationLookahead)
			expiring, err := keys.ListExpiringBefore(ctx, deadline)
			if err != nil {
				return nil, fmt.Errorf("list expiring keys: %w", err)
			}

			checked, reminded, failed := 0, 0, 0
			for _, key := range expiring {
				checked++
				sent, err := expiration.CheckKey(ctx, key)
				if err != nil {
					log.Errorw("expiration check failed for key", "keyId", key.KeyId, "error", err)
					failed++
					continue
				}
				if sent {
					reminded++
				}
			}

			return map[string]any{
				"checked":  checked,
				"reminded": reminded,
				"failed":   failed,
			}, nil
		},
	}
}
