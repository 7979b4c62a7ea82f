package http

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/sp3dr4/relink/internal/application"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error     map[string]string `json:"error"`
	Timestamp string            `json:"timestamp" example:"2024-01-31T12:00:00Z"`
}

// ValidationErrorResponse represents a validation error response.
type ValidationErrorResponse struct {
	Details map[string]string `json:"details"`
	Error   string            `json:"error" example:"Validation failed"`
}

// StatsErrorResponse is returned when statistics cannot be computed.
type StatsErrorResponse struct {
	Error string `json:"error" example:"Unable to compute statistics"`
}

func respondWithError(w http.ResponseWriter, r *http.Request, code int, message string) {
	render.Status(r, code)
	render.JSON(w, r, ErrorResponse{
		Error:     map[string]string{"message": message},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func handleValidationError(w http.ResponseWriter, r *http.Request, validationErrors validator.ValidationErrors) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ValidationErrorResponse{
		Error:   "Validation failed",
		Details: validationMessages(validationErrors),
	})
}

func validationMessages(validationErrors validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[getJSONFieldName(e)] = validationMessage(e)
	}
	return errorMessages
}

// flashMessage flattens validation errors into one line for the HTML flow.
func flashMessage(validationErrors validator.ValidationErrors) string {
	parts := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		parts = append(parts, validationMessage(e))
	}
	return strings.Join(parts, "; ")
}

func validationMessage(e validator.FieldError) string {
	field := getJSONFieldName(e)
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, e.Param())
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s item(s)", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters long", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// getJSONFieldName extracts the JSON tag name from a validation error
func getJSONFieldName(e validator.FieldError) string {
	structType := getStructTypeFromError(e)
	if structType == nil {
		return e.Field()
	}

	field, found := structType.FieldByName(e.StructField())
	if !found {
		return e.Field()
	}

	jsonTag := field.Tag.Get("json")
	if jsonTag == "" {
		return e.Field()
	}

	if commaIndex := strings.Index(jsonTag, ","); commaIndex != -1 {
		jsonTag = jsonTag[:commaIndex]
	}

	return jsonTag
}

// getStructTypeFromError extracts the struct type from a validation error.
// The StructNamespace looks like "SubmitRequest.URLs".
func getStructTypeFromError(e validator.FieldError) reflect.Type {
	parts := strings.Split(e.StructNamespace(), ".")
	if len(parts) < 2 {
		return nil
	}

	return getTypeFromStructName(parts[0])
}

// getTypeFromStructName returns the reflect.Type for a given struct name
// This acts as a registry for known request types
func getTypeFromStructName(structName string) reflect.Type {
	switch structName {
	case "SubmitRequest":
		return reflect.TypeOf(application.SubmitRequest{})
	default:
		return nil
	}
}
