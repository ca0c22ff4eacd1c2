package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"fruitstock/pkg/inventory"
)

const internalMessage = "unexpected error"

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Status    int       `json:"status" example:"404"`
	Error     string    `json:"error" example:"Not Found"`
	Message   string    `json:"message" example:"supplier not found: id 999"`
	Path      string    `json:"path" example:"/suppliers/999"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   msg,
		Path:      r.URL.Path,
		Timestamp: time.Now().UTC(),
	})
}

// inputError is a request-shape failure whose message is shown verbatim.
type inputError string

func (e inputError) Error() string { return string(e) }

func (e inputError) Unwrap() error { return inventory.ErrInvalidInput }

func invalidf(format string, args ...any) error {
	return inputError(fmt.Sprintf(format, args...))
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, inventory.ErrSupplierNotFound), errors.Is(err, inventory.ErrFruitNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrInvalidInput),
		errors.Is(err, inventory.ErrDuplicateName),
		errors.Is(err, inventory.ErrHasDependents):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes the error response for err. Internal errors are logged and
// replaced by a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error(r.Context(), op, "error", err)
		writeError(w, r, status, internalMessage)
		return
	}
	writeError(w, r, status, err.Error())
}

// decode reads a JSON body into dst and validates it.
func (h *Handler) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return invalidf("%s: must be of type %s", typeErr.Field, typeErr.Type)
		}
		return invalidf("malformed request body")
	}
	return h.check(dst)
}

// check runs struct validation and reports the first failing field.
func (h *Handler) check(v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return invalidf("%s: %s", fe.Field(), describe(fe))
	}
	return invalidf("%v", err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return "must not be blank"
	case "required":
		return "is required"
	case "gt":
		if fe.Param() == "0" {
			return "must be positive"
		}
		return "must be greater than " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}

// pathID parses the {id} path variable.
func pathID(r *http.Request) (int64, error) {
	return parseID("id", mux.Vars(r)["id"])
}

func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidf("%s: must be a positive integer", field)
	}
	return id, nil
}
