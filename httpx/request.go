package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var ErrInvalidID = errors.New("invalid id")

// WantsJSON reports whether the client asked for JSON rather than HTML.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// IsJSONBody reports whether the request body is JSON.
func IsJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// PathID parses a positive integer path value such as {id}.
func PathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return uint(id), nil
}

// Decode reads a JSON body into dst, or lets form fill it when the body is a form.
func Decode(r *http.Request, dst any, form func()) error {
	if IsJSONBody(r) {
		return json.NewDecoder(r.Body).Decode(dst)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	if form != nil {
		form()
	}
	return nil
}
