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
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/keyportal/keyportal/pkg/http"
)

func (rt *Router) authRouter(r fiber.Router, authMiddleware fiber.Handler) {
	auth := r.Group("/auth")
	{
		auth.Post("/register", rt.register)
		auth.Post("/login", rt.login)
		auth.Get("/me", authMiddleware, rt.me)
	}
}

func (rt *Router) register(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
	}
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	user, err := rt.users.Register(c.Context(), strings.TrimSpace(req.Email), req.Password, strings.TrimSpace(req.Nickname))
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, user)
}

func (rt *Router) login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	user, token, err := rt.users.Login(c.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (rt *Router) me(c *fiber.Ctx) error {
	user, err := rt.users.Get(c.Context(), rt.currentUserId(c))
	if err != nil {
		return writeErr(c, err)
	}
	return http.WithRep(c, user)
}
