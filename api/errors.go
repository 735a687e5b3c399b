package api

import (
	"net/http"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps an error kind to the HTTP status returned to clients.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict, domain.KindInvalidTransition, domain.KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	switch kind {
	case domain.KindInternal:
		_ = c.Error(err)
		msg = "internal error"
	case domain.KindResourceExhaustion:
		_ = c.Error(err)
		msg = "temporarily unable to complete the request"
	}
	c.JSON(statusFor(err), errorResponse{Error: msg, Kind: kind.String()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Kind: domain.KindInvalid.String()})
}
