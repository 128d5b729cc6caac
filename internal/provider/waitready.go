package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// pollInterval is the spacing between readiness probes.
const pollInterval = 2 * time.Second

// WaitReadyWithProber polls vm by running a trivial remote command
// through prober until it succeeds, timeout elapses, or ctx is
// canceled. It is shared by every Provider backend so the readiness
// polling loop only needs writing once.
func WaitReadyWithProber(ctx context.Context, prober Prober, vm VM, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if err := prober.Probe(ctx, vm.SSHDest); err == nil {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%s: %w", vm.Name, voyageerr.ErrTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
