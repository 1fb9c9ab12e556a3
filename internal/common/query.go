package common

import (
	"net/http"
	"strconv"
	"strings"
)

// QueryInt reads a positive integer query parameter, returning def when it is
// absent, malformed or not positive.
func QueryInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
