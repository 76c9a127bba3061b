package reconcile

import (
	"math"
	"strconv"
	"strings"
)

// SkipReason says why an entered mark produced no operation.
type SkipReason string

const (
	SkipBlank       SkipReason = "blank"
	SkipUnparseable SkipReason = "unparseable"
	SkipOutOfRange  SkipReason = "out_of_range"
)

const (
	MinScore = 0
	MaxScore = 100
)

// ParseMark turns an entered mark into a score. A non-empty reason means the
// mark must be skipped. Marks must be whole numbers between 0 and 100.
func ParseMark(raw string) (int, SkipReason) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, SkipBlank
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, SkipUnparseable
	}
	if f < MinScore || f > MaxScore {
		return 0, SkipOutOfRange
	}
	return int(f), ""
}
