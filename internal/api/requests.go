package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ppetrovna/povarenok/internal/catalog"
)

// parseIDList parses a comma-separated id list from the named query
// parameter. A missing or empty parameter, or any non-numeric element,
// yields ErrInvalidArgument; the engine handles deduplication.
func parseIDList(r *http.Request, param string) ([]int64, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return nil, fmt.Errorf("%w: missing %q parameter", catalog.ErrInvalidArgument, param)
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid id", catalog.ErrInvalidArgument, part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: empty %q parameter", catalog.ErrInvalidArgument, param)
	}
	return ids, nil
}

// parsePathID parses the {id} path segment.
func parsePathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a valid recipe id", catalog.ErrInvalidArgument, raw)
	}
	return id, nil
}
