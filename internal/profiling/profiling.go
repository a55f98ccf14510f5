package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Per-frame timing buckets. The viewer resets them once per frame and shows
// the heaviest in its title bar.

type bucket struct {
	total time.Duration
	calls int
}

var (
	mu    sync.Mutex
	frame = make(map[string]bucket)
)

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("world.Update")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		b := frame[name]
		b.total += d
		b.calls++
		frame[name] = b
		mu.Unlock()
	}
}

// ResetFrame clears the current totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frame)
	mu.Unlock()
}

// Snapshot returns a copy of the current totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frame))
	for k, b := range frame {
		out[k] = b.total
	}
	return out
}

// Calls returns how many times name was tracked this frame.
func Calls(name string) int {
	mu.Lock()
	defer mu.Unlock()
	return frame[name].calls
}

// SumWithPrefix adds up every bucket whose name starts with prefix.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var sum time.Duration
	for k, b := range frame {
		if strings.HasPrefix(k, prefix) {
			sum += b.total
		}
	}
	return sum
}

// TopN formats the n heaviest buckets, e.g.
// "world.Update:4.2ms, world.Synthesize:3.9ms(12)".
// The call count is shown when a bucket was hit more than once.
func TopN(n int) string {
	type entry struct {
		name string
		bucket
	}
	mu.Lock()
	list := make([]entry, 0, len(frame))
	for k, b := range frame {
		list = append(list, entry{k, b})
	}
	mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].total != list[j].total {
			return list[i].total > list[j].total
		}
		return list[i].name < list[j].name
	})
	n = min(max(n, 0), len(list))

	parts := make([]string, 0, n)
	for _, e := range list[:n] {
		s := e.name + ":" + FormatMs(e.total)
		if e.calls > 1 {
			s += fmt.Sprintf("(%d)", e.calls)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// FormatMs renders d in milliseconds with one decimal, dropping ".0".
func FormatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000
	s := fmt.Sprintf("%.1f", ms)
	return strings.TrimSuffix(s, ".0") + "ms"
}
