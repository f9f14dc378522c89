package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// DecodeJSON reads a JSON body into dst. Numbers decode as json.Number so
// loosely typed fields keep their exact text.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return NewAppError("PAYLOAD_TOO_LARGE", "request entity too large", http.StatusRequestEntityTooLarge, err)
		case errors.Is(err, io.EOF):
			return NewAppError("INVALID_JSON", "request body is empty", http.StatusBadRequest, err)
		default:
			appErr := NewAppError("INVALID_JSON", "request body is not valid JSON", http.StatusBadRequest, err)
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				appErr.Details = map[string]any{"offset": syntaxErr.Offset}
			}
			return appErr
		}
	}
	return nil
}

// Validate runs struct tags on v and reports failing fields as details.
func Validate(validate *validator.Validate, v any) error {
	if validate == nil {
		return nil
	}
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewAppError("VALIDATION_FAILED", "request is invalid", http.StatusUnprocessableEntity, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	appErr := NewAppError("VALIDATION_FAILED", "request is invalid", http.StatusUnprocessableEntity, err)
	appErr.Details = map[string]any{"fields": fields}
	return appErr
}
