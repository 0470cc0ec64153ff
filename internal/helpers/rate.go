package helpers

import (
	"time"

	"golang.org/x/time/rate"
)

// OnceAMinute throttles repetitive log lines, such as rate limit rejections.
var OnceAMinute = onceAMinute()

func onceAMinute() *rate.Sometimes {
	return &rate.Sometimes{
		Interval: time.Minute,
	}
}
