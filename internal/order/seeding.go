package order

import (
	"context"
	"fmt"

	"github.com/Gabriel44svg/Dopple-bar/internal/authz"
	"github.com/aquamarinepk/aqm"
)

// Seed populates the managed catalogs on first boot. Cancellations cannot be
// recorded without a reason catalog and cannot be authorized without role
// policies, so both get defaults when their collections are empty.
func Seed(ctx context.Context, reasons ReasonRepo, policies authz.PolicyRepo, logger aqm.Logger) error {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	n, err := reasons.Count(ctx)
	if err != nil {
		return fmt.Errorf("cannot count cancellation reasons: %w", err)
	}
	if n == 0 {
		for _, r := range DefaultReasons() {
			if err := reasons.Create(ctx, r); err != nil {
				return fmt.Errorf("cannot seed cancellation reason %q: %w", r.Label, err)
			}
		}
		logger.Info("seeded default cancellation reasons")
	}

	n, err = policies.Count(ctx)
	if err != nil {
		return fmt.Errorf("cannot count role policies: %w", err)
	}
	if n == 0 {
		for _, p := range authz.DefaultPolicies() {
			if err := policies.Save(ctx, p); err != nil {
				return fmt.Errorf("cannot seed role policy %q: %w", p.Role, err)
			}
		}
		logger.Info("seeded default role policies")
	}

	return nil
}
