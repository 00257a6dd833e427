package api

import (
	"net/http"

	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a failed outcome to its HTTP status.
func statusFor(outcome domain.Outcome) int {
	switch outcome {
	case domain.OutcomeValidationFailed:
		return http.StatusBadRequest
	case domain.OutcomeNotFound:
		return http.StatusNotFound
	case domain.OutcomeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeResult renders res with the given success status, converting the value
// through view. Failures become {"error": message}.
func writeResult[T, R any](c *gin.Context, res domain.Result[T], successStatus int, view func(T) R) {
	if !res.OK() {
		c.JSON(statusFor(res.Outcome), errorResponse{Error: res.Message})
		return
	}
	c.JSON(successStatus, view(res.Value))
}

func mapAll[T, R any](items []T, view func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, view(item))
	}
	return out
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
}
