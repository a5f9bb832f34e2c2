// internal/respond/respond.go
//
// JSON envelope helpers.
//
// Success bodies are `{"data": …}`, failures `{"errors": {…}}`.  Handlers
// never write JSON themselves; they return values and errors and let
// these helpers keep the wire shape uniform.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Errors *APIError `json:"errors"`
}

// JSON writes a success envelope with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(dataEnvelope{Data: data}); err != nil {
		zap.S().Errorw("respond: encode body", "err", err)
	}
}

// Error maps err onto the taxonomy and writes the error envelope.
func Error(w http.ResponseWriter, err error) {
	ae := AsAPIError(err)
	if ae == ErrInternal {
		// Unclassified errors are logged with their original detail; the
		// client only sees the generic message.
		zap.S().Errorw("respond: internal error", "err", err)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(ae.Status)
	if encErr := json.NewEncoder(w).Encode(errorEnvelope{Errors: ae}); encErr != nil {
		zap.S().Errorw("respond: encode error body", "err", encErr)
	}
}

// Decode reads a JSON request body into dst, returning ErrBadRequest on
// malformed input.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrBadRequest.WithMessage("malformed JSON body")
	}
	return nil
}

// DecodeValid decodes like Decode and then runs validator tags against
// the result.
func DecodeValid(r *http.Request, dst any) error {
	if err := Decode(r, dst); err != nil {
		return err
	}
	if err := validate.Struct(dst); err != nil {
		return ErrBadRequest.WithMessage("%s", err.Error())
	}
	return nil
}
