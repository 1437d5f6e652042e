// Package tiles picks a basemap tile server for the client. Candidates are
// probed concurrently and the first reachable one in configured order wins,
// so preference stays stable while dead mirrors are skipped.
package tiles

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/logger"
)

// Prober checks tile server candidates for reachability.
type Prober struct {
	servers []string
	client  *http.Client
}

// NewProber creates a prober over the configured candidate URL templates.
// Each template uses {z}/{x}/{y} placeholders.
func NewProber(servers []string, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Prober{
		servers: servers,
		client:  &http.Client{Timeout: timeout},
	}
}

// Servers returns the configured candidates in preference order.
func (p *Prober) Servers() []string {
	out := make([]string, len(p.servers))
	copy(out, p.servers)
	return out
}

// probeURL renders a template against a low-zoom tile covering New Caledonia.
func probeURL(template string) string {
	r := strings.NewReplacer("{z}", "7", "{x}", "122", "{y}", "71")
	return r.Replace(template)
}

// Pick probes every candidate concurrently and returns the first reachable
// one in configured order. All candidates down is an error; the UI falls back
// to its bundled style.
func (p *Prober) Pick(ctx context.Context) (string, error) {
	if len(p.servers) == 0 {
		return "", fmt.Errorf("no tile servers configured")
	}

	reachable := make([]bool, len(p.servers))
	g, ctx := errgroup.WithContext(ctx)
	for i, server := range p.servers {
		i, server := i, server
		g.Go(func() error {
			reachable[i] = p.reachable(ctx, server)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	for i, ok := range reachable {
		if ok {
			return p.servers[i], nil
		}
	}
	return "", fmt.Errorf("no tile server reachable")
}

func (p *Prober) reachable(ctx context.Context, template string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, probeURL(template), nil)
	if err != nil {
		logger.Warn("Invalid tile server template", "server", template, "error", err)
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		logger.Debug("Tile server unreachable", "server", template, "error", err)
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
