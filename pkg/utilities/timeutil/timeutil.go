package timeutil

import (
	"time"
)

// TimeUTC is Unix time in seconds, always UTC.
type TimeUTC struct {
	T int64 `json:"t"`
}

func NowUTC() TimeUTC {
	return TimeUTC{T: time.Now().UTC().Unix()}
}
