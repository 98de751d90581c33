package parser

import (
	"time"

	"github.com/lab-portal/backend/internal/models"
)

// ParseLogTime parses a "yyyy-MM-dd HH:mm:ss" token. No zone conversion
// is applied: weekday bucketing and ordering work on the literal value.
func ParseLogTime(s string) (time.Time, error) {
	return time.Parse(models.LogTimeLayout, s)
}
