package server

import (
	"sync"
	"time"
)

// defaultMaxClients bounds the number of tracked clients.
const defaultMaxClients = 10000

// clientLimiter gives every client a bucket of burst tokens that refills one
// token per window/burst. It is safe for concurrent use.
type clientLimiter struct {
	mu         sync.Mutex
	clients    map[string]*allowance
	burst      int
	refill     time.Duration
	maxClients int
	closed     bool
	now        func() time.Time
}

type allowance struct {
	tokens int
	earned time.Time // refill progress is measured from here
	seen   time.Time
}

// newClientLimiter allows burst requests per window and client. Invalid
// values fall back to 100 per minute.
func newClientLimiter(burst int, window time.Duration) *clientLimiter {
	if burst <= 0 {
		burst = 100
	}
	if window <= 0 {
		window = time.Minute
	}

	return &clientLimiter{
		clients:    make(map[string]*allowance),
		burst:      burst,
		refill:     max(window/time.Duration(burst), time.Nanosecond),
		maxClients: defaultMaxClients,
		now:        time.Now,
	}
}

// admit takes one token for client. When none is left it returns false and
// the time until the client earns the next one.
func (l *clientLimiter) admit(client string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return l.refill, false
	}

	now := l.now()
	a, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= l.maxClients {
			l.shrinkUnsafe(now)
		}
		a = &allowance{tokens: l.burst, earned: now}
		l.clients[client] = a
	}
	a.seen = now
	l.topUp(a, now)

	if a.tokens > 0 {
		a.tokens--
		return 0, true
	}
	return l.refill - now.Sub(a.earned), false
}

// topUp credits whole tokens earned since a.earned and keeps the remainder.
func (l *clientLimiter) topUp(a *allowance, now time.Time) {
	gained := int(now.Sub(a.earned) / l.refill)
	if gained <= 0 {
		return
	}
	if a.tokens+gained >= l.burst {
		a.tokens = l.burst
		a.earned = now
		return
	}
	a.tokens += gained
	a.earned = a.earned.Add(time.Duration(gained) * l.refill)
}

// shrinkUnsafe drops clients whose bucket has refilled completely. When none
// has, the least recently seen client goes.
func (l *clientLimiter) shrinkUnsafe(now time.Time) {
	full := time.Duration(l.burst) * l.refill
	for client, a := range l.clients {
		if now.Sub(a.earned) >= full {
			delete(l.clients, client)
		}
	}
	if len(l.clients) < l.maxClients {
		return
	}

	var idle string
	var idleSince time.Time
	found := false
	for client, a := range l.clients {
		if !found || a.seen.Before(idleSince) {
			idle, idleSince, found = client, a.seen, true
		}
	}
	delete(l.clients, idle)
}

// close drops all buckets; admit refuses every request afterwards.
func (l *clientLimiter) close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.clients = nil
}
