package httpx

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// FieldProblem is a 400 problem listing rejected request fields.
type FieldProblem struct {
	ProblemDetail
	Errors map[string]string `json:"errors"`
}

// ValidationFailed writes the field errors reported by validator.
func ValidationFailed(w http.ResponseWriter, err error) {
	fields := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range verrs {
			fields[fieldErr.Namespace()] = fieldErr.Tag()
		}
	} else {
		fields["request"] = err.Error()
	}
	JSON(w, http.StatusBadRequest, FieldProblem{
		ProblemDetail: ProblemDetail{Title: "Validation Failed", Status: http.StatusBadRequest},
		Errors:        fields,
	})
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrBadRequest, name)
	}
	return &t, nil
}

// PathID parses a positive int64 path parameter.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", ErrBadRequest, name)
	}
	return id, nil
}
