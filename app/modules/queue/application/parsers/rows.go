package parsers

import (
	"fmt"
	"strconv"
	"strings"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
)

// requestsFromRows maps rows of label[,fast_track[,count]] to requests. A
// first row whose label cell reads "label" is a header and is skipped, as
// are blank rows.
func requestsFromRows(rows [][]string) ([]queuedomain.Request, error) {
	var out []queuedomain.Request
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if len(out) == 0 && strings.EqualFold(cell(row, 0), "label") {
			continue
		}

		req := queuedomain.Request{Label: cell(row, 0)}

		fastTrack, err := parseFlag(cell(row, 1))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		req.FastTrack = fastTrack

		if raw := cell(row, 2); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid count %q: %w", i+1, raw, queuedomain.ErrInvalidRequest)
			}
			req.Count = n
		}

		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, req)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("file has no entries: %w", queuedomain.ErrInvalidRequest)
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseFlag(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "", "0", "false", "no", "n":
		return false, nil
	case "1", "true", "yes", "y", "x":
		return true, nil
	default:
		return false, fmt.Errorf("invalid fast_track value %q: %w", raw, queuedomain.ErrInvalidRequest)
	}
}
