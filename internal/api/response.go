package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"StockSentinel/internal/model"
)

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidArgument),
		errors.Is(err, model.ErrEmptySeries),
		errors.Is(err, model.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, model.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// fail answers err as an error record.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	ev := log.Warn()
	if status >= 500 {
		ev = log.Error()
	}
	ev.Err(err).
		Str("request_id", GetRequestID(c)).
		Int("status", status).
		Msg("API error response")
	_ = c.Error(err)
	c.JSON(status, model.NewErrorResult(err))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, model.ErrorResult{Error: msg})
}
