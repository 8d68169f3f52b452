package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidRate = errors.New("invalid rate")

// Rate is an admission budget: at most Limit hits per Window.
type Rate struct {
	Limit  int64
	Window time.Duration
}

func (r Rate) String() string {
	return fmt.Sprintf("%d/%s", r.Limit, r.Window)
}

// <count>/[multiplier]<unit>, unit is s, m, h or d (full words allowed).
var rateRe = regexp.MustCompile(`^\s*(\d+)\s*/\s*(\d*)\s*([smhd])[a-z]*\s*$`)

const maxWindowSeconds = int64(math.MaxInt64 / int64(time.Second))

var unitSeconds = map[string]int64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
}

// ParseRate parses rates such as "5/m", "100/hour" or "10/5m".
func ParseRate(s string) (Rate, error) {
	m := rateRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return Rate{}, fmt.Errorf("%w: %q", ErrInvalidRate, s)
	}

	limit, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Rate{}, fmt.Errorf("%w: %q: %v", ErrInvalidRate, s, err)
	}

	multiplier := int64(1)
	if m[2] != "" {
		multiplier, err = strconv.ParseInt(m[2], 10, 64)
		if err != nil || multiplier <= 0 {
			return Rate{}, fmt.Errorf("%w: %q: bad multiplier", ErrInvalidRate, s)
		}
	}

	unit := unitSeconds[m[3]]
	if multiplier > maxWindowSeconds/unit {
		return Rate{}, fmt.Errorf("%w: %q: window too long", ErrInvalidRate, s)
	}

	return Rate{
		Limit:  limit,
		Window: time.Duration(multiplier*unit) * time.Second,
	}, nil
}
