package dispatcher

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCooldown is how long a pid is suppressed from re-enqueueing after
// it was already accepted into the queue, absorbing the rapid duplicate
// PROC_EVENT_EXEC notifications the kernel connector can deliver for a
// single exec (e.g. one for the thread group leader, one for a racing
// re-exec), the way the teacher's rulecooldown guards against duplicate
// rule evaluations for the same key.
const DefaultCooldown = 2 * time.Second

// cooldown tracks recently-enqueued pids so a double exec notification for
// the same pid within the window doesn't double-enqueue.
type cooldown struct {
	seen *expirable.LRU[uint32, struct{}]
}

func newCooldown(maxSize int, ttl time.Duration) *cooldown {
	if maxSize <= 0 {
		maxSize = 4096
	}
	if ttl <= 0 {
		ttl = DefaultCooldown
	}
	return &cooldown{seen: expirable.NewLRU[uint32, struct{}](maxSize, nil, ttl)}
}

// markIfAbsent reports whether pid was already in the cooldown window, and
// records it if not.
func (c *cooldown) markIfAbsent(pid uint32) (alreadySeen bool) {
	if _, ok := c.seen.Get(pid); ok {
		return true
	}
	c.seen.Add(pid, struct{}{})
	return false
}
