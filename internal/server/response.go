package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatdb/internal/construct"
	"chatdb/internal/db"
	"chatdb/internal/query"
	"chatdb/internal/render"
	"chatdb/internal/synth"
)

// APIResponse 공통 응답 형식
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respond(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, APIResponse{Success: false, Error: msg})
}

// failErr 오류 종류에 맞는 상태 코드로 응답
func failErr(c *gin.Context, err error) {
	_ = c.Error(err)
	fail(c, statusFor(err), err.Error())
}

// statusFor 오류 → HTTP 상태 코드
func statusFor(err error) int {
	switch {
	case errors.Is(err, construct.ErrUnknownConstruct),
		errors.Is(err, render.ErrUnsupportedDialect),
		errors.Is(err, query.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrSourceNotFound),
		errors.Is(err, db.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, construct.ErrComponentExtraction),
		errors.Is(err, synth.ErrEmptySchemaPool):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
