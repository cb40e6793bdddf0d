package netx

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CheckGateway probes a gateway base URL with a short GET and reports whether
// it answered at all. Any HTTP status below 500 counts as reachable, a
// gateway that is up but unhappy about the bare path is still online.
func CheckGateway(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("gateway %s unhealthy: %s", baseURL, resp.Status)
	}
	return nil
}

// CheckAny returns nil if at least one of the gateways is reachable.
func CheckAny(ctx context.Context, gateways []string) error {
	var lastErr error
	for _, g := range gateways {
		if err := CheckGateway(ctx, g); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no gateways configured")
	}
	return lastErr
}
