// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"deliveryeta/internal/modules/features"
	"deliveryeta/internal/modules/prediction"
)

type errorResponse struct {
	Error string `json:"error"`
}

type derivationErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage"`
	Field string `json:"field"`
	Value any    `json:"value"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeBindError reports request validation failures as 422.
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(c, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	writeError(c, http.StatusUnprocessableEntity, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be >= %s (got %v)", fe.Field(), fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s (got %v)", fe.Field(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

func writePredictionError(c *gin.Context, err error) {
	var fde *features.FeatureDerivationError
	switch {
	case errors.As(err, &fde):
		writeJSON(c, http.StatusUnprocessableEntity, derivationErrorResponse{
			Error: fde.Err.Error(),
			Stage: fde.Stage,
			Field: fde.Field,
			Value: fde.Value,
		})
	case errors.Is(err, prediction.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, prediction.ErrStoreDisabled):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
