package qreg

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRateLimiterLimit(t *testing.T) {
	Convey("Given a rate limiter with 2 tokens", t, func() {
		limiter := NewRateLimiter(2, time.Second)
		metrics := NewMetrics()
		limiter.Observe(metrics)

		So(limiter.tokens, ShouldEqual, 2)
		So(limiter.metrics, ShouldPointTo, metrics)

		Convey("The third request in a burst should be held back", func() {
			So(limiter.Limit(), ShouldBeFalse)
			So(limiter.Limit(), ShouldBeFalse)
			So(limiter.Limit(), ShouldBeTrue)
			So(metrics.Export()["rate_limit_hits"], ShouldEqual, int64(1))
		})
	})
}

func TestRateLimiterRefill(t *testing.T) {
	Convey("Given a drained rate limiter", t, func() {
		limiter := NewRateLimiter(3, 100*time.Millisecond)
		for i := 0; i < 3; i++ {
			So(limiter.Limit(), ShouldBeFalse)
		}
		So(limiter.Limit(), ShouldBeTrue)

		Convey("Tokens should come back after the refill period", func() {
			time.Sleep(150 * time.Millisecond)
			So(limiter.Limit(), ShouldBeFalse)
		})

		Convey("Renormalize should refill up to capacity", func() {
			time.Sleep(350 * time.Millisecond)
			limiter.Renormalize()
			So(limiter.tokens, ShouldEqual, 3)
		})
	})

	Convey("Given a limiter without a refill period", t, func() {
		limiter := NewRateLimiter(1, 0)

		Convey("It should refill on every call", func() {
			So(limiter.Limit(), ShouldBeFalse)
			So(limiter.Limit(), ShouldBeFalse)
		})
	})
}
