package viewer

import "time"

// FPSLimiter paces the frame loop to a fixed rate.
type FPSLimiter struct {
	fps  int
	next time.Time
	now  func() time.Time
}

// NewFPSLimiter creates a limiter for fps frames per second. fps <= 0
// disables pacing.
func NewFPSLimiter(fps int) *FPSLimiter {
	return &FPSLimiter{fps: fps, now: time.Now}
}

// Wait blocks until the next frame is due. It sleeps most of the interval
// and spins the final stretch for precision.
func (f *FPSLimiter) Wait() {
	target, ok := f.advance()
	if !ok {
		return
	}
	for {
		remaining := f.next.Sub(f.now())
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
	}
	f.resync(target)
}

// advance moves the deadline one interval forward.
func (f *FPSLimiter) advance() (time.Duration, bool) {
	if f.fps <= 0 {
		f.next = time.Time{}
		return 0, false
	}
	target := time.Second / time.Duration(f.fps)
	if f.next.IsZero() {
		f.next = f.now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}
	return target, true
}

// resync drops the schedule after a hitch so the loop does not race to
// catch up.
func (f *FPSLimiter) resync(target time.Duration) {
	if late := f.now().Sub(f.next); late > target {
		f.next = f.now().Add(target)
	}
}
