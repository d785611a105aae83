package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"plan-it/backend/internal/service"
	pkgerrors "plan-it/backend/pkg/errors"
	"plan-it/backend/pkg/response"
)

// respondError 将 Service 错误统一映射为 HTTP 响应
// 未归类的错误记录到 gin.Context.Errors，由 Logger 中间件输出
func respondError(c *gin.Context, err error) {
	e, ok := pkgerrors.As(err)
	if !ok {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	switch e.Kind {
	case pkgerrors.KindValidation:
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeParamError, e.Message, e.Field)
	case pkgerrors.KindConflict:
		response.Conflict(c, response.CodeConflict, e.Message)
	case pkgerrors.KindAuthentication:
		code := response.CodeUnauthorized
		if errors.Is(err, service.ErrInvalidCredentials) {
			code = response.CodeBadCredential
		}
		response.Unauthorized(c, code, e.Message)
	case pkgerrors.KindInvalidToken:
		code := response.CodeTokenInvalid
		if errors.Is(err, service.ErrTokenExpired) {
			code = response.CodeTokenExpired
		}
		response.Unauthorized(c, code, e.Message)
	case pkgerrors.KindAuthorization:
		response.Forbidden(c, response.CodeForbidden, e.Message)
	case pkgerrors.KindNotFound:
		response.NotFound(c, response.CodeNotFound, e.Message)
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// respondBindError 请求体解析失败
func respondBindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "请求体过大")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeParamError, "参数校验失败", err.Error())
}
