package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kodeflow/tempod/internal/config"
)

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

func durationFrom(d time.Duration) config.Duration {
	return config.Duration(d)
}

func parseRFC3339(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want RFC3339: %w", raw, err)
	}
	return t, nil
}
