package queueservice

import (
	"fmt"
	"strings"
	"time"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// parseSince accepts RFC 3339, a plain date or an English expression such as
// "2 weeks ago" or "last monday". An empty string means no lower bound.
func parseSince(raw string, now time.Time) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC); err == nil {
		return &t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(raw, now)
	if err != nil {
		return nil, fmt.Errorf("since %q: %w: %w", raw, err, queuedomain.ErrInvalidRequest)
	}
	if r == nil {
		return nil, fmt.Errorf("since %q not understood: %w", raw, queuedomain.ErrInvalidRequest)
	}
	t := r.Time.UTC()
	return &t, nil
}
