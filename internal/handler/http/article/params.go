package article

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// intParam reads an optional non-negative integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid query parameter: %s must be a non-negative integer", name)
	}
	return v, nil
}
