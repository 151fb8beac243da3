package models

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	ragamCodePrefix      = "R19"
	kalotsavamCodePrefix = "K19"
)

// FormatParticipantCode renders the code printed on participant badges.
func FormatParticipantCode(category Category, id int64) string {
	prefix := ragamCodePrefix
	if category == CategoryKalotsavam {
		prefix = kalotsavamCodePrefix
	}
	return fmt.Sprintf("%s%06d", prefix, id)
}

// ParseParticipantCode extracts the participant id from a badge code or a bare id.
func ParseParticipantCode(code string) (int64, error) {
	raw := strings.ToUpper(strings.TrimSpace(code))
	raw = strings.TrimPrefix(raw, ragamCodePrefix)
	raw = strings.TrimPrefix(raw, kalotsavamCodePrefix)
	if raw == "" {
		return 0, fmt.Errorf("empty participant code %q", code)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid participant code %q", code)
	}
	return id, nil
}
