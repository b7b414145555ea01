package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"budget/internal/core"
)

const maxBodyBytes = 1 << 20

// requestError marks a request that could not be parsed at all.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// decodeJSON reads one JSON object from the body into dst. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return badRequest("Request body is required")
		case errors.As(err, &maxErr):
			return badRequest("Request body must not exceed %d bytes", maxErr.Limit)
		default:
			return badRequest("Malformed JSON request body: %v", err)
		}
	}
	if dec.More() {
		return badRequest("Request body must contain a single JSON object")
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest("Invalid id '%s'", raw)
	}
	return id, nil
}

func optionalInt64Query(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, badRequest("Invalid value '%s' for parameter '%s'", raw, name)
	}
	return &v, nil
}

func optionalCategoryTypeQuery(r *http.Request, name string) (*core.CategoryType, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := core.ParseCategoryType(raw)
	if err != nil {
		return nil, badRequest("Invalid value '%s' for parameter '%s'", raw, name)
	}
	return &t, nil
}

func requiredQuery(r *http.Request, name string) (string, error) {
	q := r.URL.Query()
	if !q.Has(name) {
		return "", badRequest("Required parameter '%s' is missing", name)
	}
	return q.Get(name), nil
}

func requiredDateQuery(r *http.Request, name string) (core.Date, error) {
	raw, err := requiredQuery(r, name)
	if err != nil {
		return core.Date{}, err
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, badRequest("Invalid date '%s' for parameter '%s', expected YYYY-MM-DD", raw, name)
	}
	return d, nil
}
