package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dakoku-app/dakoku-backend-go/internal/domain/relay"
)

// EndpointPlaceholder is the unconfigured sentinel; deployments replace it
// with a real endpoint URL.
const EndpointPlaceholder = "YOUR_DEPLOYED_WEB_APP_URL_HERE"

type DispatcherImpl struct {
	endpoint string
	client   *http.Client
}

// NewDispatcher builds a fire-and-forget dispatcher. The client is injected
// so tests can point it at a local server; nil falls back to a default.
func NewDispatcher(endpoint string, client *http.Client) relay.Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &DispatcherImpl{
		endpoint: endpoint,
		client:   client,
	}
}

func (d *DispatcherImpl) configured() bool {
	return d.endpoint != "" && d.endpoint != EndpointPlaceholder
}

// Send implements relay.Dispatcher. The response body is drained and
// discarded: the transport contract only confirms that the request was
// dispatched, never that the sink accepted it.
func (d *DispatcherImpl) Send(ctx context.Context, event relay.Event) (relay.Outcome, error) {
	if !d.configured() {
		slog.Debug("relay endpoint not configured, running local-only", "action", event.Action)
		return relay.OutcomeSkipped, nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return relay.OutcomeFailed, fmt.Errorf("failed to encode relay event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return relay.OutcomeFailed, fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		slog.Warn("relay dispatch failed", "action", event.Action, "error", err)
		return relay.OutcomeFailed, fmt.Errorf("%w: %v", relay.ErrDispatchFailed, err)
	}
	defer resp.Body.Close()

	// Unreadable by contract; drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	slog.Debug("relay event dispatched", "action", event.Action, "status", resp.StatusCode)
	return relay.OutcomeDispatched, nil
}
