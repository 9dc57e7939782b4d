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

package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/internal/portal/service"
	"github.com/keyportal/keyportal/pkg/http"
)

func (rt *Router) keyRouter(r fiber.Router, authMiddleware fiber.Handler) {
	keys := r.Group("/keys")
	{
		keys.Post("/", authMiddleware, rt.createKey)
		keys.Get("/", authMiddleware, rt.listKeys)
		keys.Get("/:keyId", authMiddleware, rt.getKey)
		keys.Put("/:keyId", authMiddleware, rt.updateKey)
		keys.Put("/:keyId/tags", authMiddleware, rt.updateKeyTags)
		keys.Delete("/:keyId", authMiddleware, rt.deleteKey)
	}
}

// keyView hides the raw relay key behind a mask.
func keyView(key *model.ApiKey) fiber.Map {
	return fiber.Map{
		"keyId":        key.KeyId,
		"name":         key.Name,
		"description":  key.Description,
		"maskedKey":    key.MaskedKey(),
		"tags":         key.Tags,
		"status":       key.Status,
		"monthlyLimit": key.MonthlyLimit,
		"expiresAt":    key.ExpiresAt,
		"lastUsedAt":   key.LastUsedAt,
		"createdAt":    key.CreatedAt,
		"updatedAt":    key.UpdatedAt,
	}
}

func (rt *Router) createKey(c *fiber.Ctx) error {
	var input service.CreateKeyInput
	if err := c.BodyParser(&input); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	key, err := rt.keys.CreateKey(c.Context(), rt.currentUserId(c), input)
	if err != nil {
		return writeErr(c, err)
	}
	// The full relay key is shown exactly once, at creation time.
	view := keyView(key)
	view["apiKey"] = key.CrsKey
	return http.WithRep(c, view)
}

func (rt *Router) listKeys(c *fiber.Ctx) error {
	keys, err := rt.keys.ListKeys(c.Context(), rt.currentUserId(c))
	if err != nil {
		return writeErr(c, err)
	}
	views := make([]fiber.Map, 0, len(keys))
	for _, key := range keys {
		views = append(views, keyView(key))
	}
	return http.WithRep(c, views)
}

func (rt *Router) getKey(c *fiber.Ctx) error {
	key, err := rt.keys.GetKey(c.Context(), rt.currentUserId(c), c.Params("keyId"))
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, keyView(key))
}

func (rt *Router) updateKey(c *fiber.Ctx) error {
	var input service.UpdateKeyInput
	if err := c.BodyParser(&input); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	key, err := rt.keys.UpdateKey(c.Context(), rt.currentUserId(c), c.Params("keyId"), input)
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, keyView(key))
}

func (rt *Router) updateKeyTags(c *fiber.Ctx) error {
	var req struct {
		Tags []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	key, err := rt.keys.UpdateTags(c.Context(), rt.currentUserId(c), c.Params("keyId"), req.Tags)
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, keyView(key))
}

func (rt *Router) deleteKey(c *fiber.Ctx) error {
	if err := rt.keys.DeleteKey(c.Context(), rt.currentUserId(c), c.Params("keyId")); err != nil {
		return writeErr(c, err)
	}
	return http.WithRepMsg(c, "key deleted")
}
