// Package netx provides connectivity awareness: a Checker answering "is the
// backend reachable right now" and a Watcher that polls the checker and
// reports transitions.
package netx

import (
	"context"
	"net/http"
	"time"

	"github.com/soylemapp/soylem-client/internal/logging"
)

// Checker reports current connectivity. Implementations must be cheap
// enough to call before every request.
type Checker interface {
	Online(ctx context.Context) bool
}

// ProbeChecker considers the backend online when an HTTP HEAD to the probe
// URL completes, whatever the status code.
type ProbeChecker struct {
	url    string
	client *http.Client
}

func NewProbeChecker(url string, client *http.Client) *ProbeChecker {
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	return &ProbeChecker{url: url, client: client}
}

func (p *ProbeChecker) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

// Watcher polls a Checker on an interval and invokes the callback on the
// first observation and on every transition after it. The replay of queued
// mutations hangs off the offline-to-online transition.
type Watcher struct {
	checker  Checker
	interval time.Duration
	log      logging.Logger
}

func NewWatcher(checker Checker, interval time.Duration, log logging.Logger) *Watcher {
	return &Watcher{checker: checker, interval: interval, log: log}
}

// Run blocks until ctx is cancelled. onChange is called sequentially from
// this goroutine, so a slow callback delays the next probe rather than
// racing it.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, online bool)) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var known bool
	var last bool

	check := func() {
		online := w.checker.Online(ctx)
		if known && online == last {
			return
		}
		known = true
		last = online
		w.log.Info(ctx, "connectivity changed", "online", online)
		onChange(ctx, online)
	}

	check()
	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
