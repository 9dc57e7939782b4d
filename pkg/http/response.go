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

package http

import "github.com/gofiber/fiber/v2"

// ErrCode pairs an application code with a default message.
type ErrCode struct {
	Code int
	Msg  string
}

var (
	Success                        = ErrCode{Code: 0, Msg: "success"}
	Failed                         = ErrCode{Code: 10001, Msg: "operation failed"}
	BadRequest                     = ErrCode{Code: 10002, Msg: "bad request"}
	RequestParameterParsingFailed  = ErrCode{Code: 10003, Msg: "request parameter parsing failed"}
	Unauthorized                   = ErrCode{Code: 10004, Msg: "unauthorized"}
	NotFound                       = ErrCode{Code: 10005, Msg: "resource not found"}
	Conflict                       = ErrCode{Code: 10006, Msg: "resource conflict"}
	UpstreamServiceUnavailable     = ErrCode{Code: 10007, Msg: "upstream service temporarily unavailable"}
	InternalServerErrorPlaceholder = ErrCode{Code: 10500, Msg: "internal server error"}
)

// Response is the uniform JSON envelope.
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
	Path string `json:"path,omitempty"`
}

// WithRep writes a success envelope with data.
func WithRep(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Code: Success.Code,
		Msg:  Success.Msg,
		Data: data,
	})
}

// WithRepMsg writes a success envelope with a custom message.
func WithRepMsg(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Code: Success.Code,
		Msg:  msg,
	})
}

// WithRepErrMsg writes an error envelope. The HTTP status is derived from the
// application code so upstream proxies can still rely on status classes.
func WithRepErrMsg(c *fiber.Ctx, code int, msg string, path string) error {
	return c.Status(httpStatusFor(code)).JSON(Response{
		Code: code,
		Msg:  msg,
		Path: path,
	})
}

func httpStatusFor(code int) int {
	switch code {
	case Success.Code:
		return fiber.StatusOK
	case BadRequest.Code, RequestParameterParsingFailed.Code:
		return fiber.StatusBadRequest
	case Unauthorized.Code:
		return fiber.StatusUnauthorized
	case NotFound.Code:
		return fiber.StatusNotFound
	case Conflict.Code:
		return fiber.StatusConflict
	case UpstreamServiceUnavailable.Code:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
