package ledger

import (
	"context"

	"github.com/fox-one/pkg/logger"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/number"
)

const factorPrecision = 8

// Health values the user's position at current prices, one factor per pool threshold
func (s *ledgerService) Health(ctx context.Context, userID string) (*core.HealthReport, error) {
	log := logger.FromContext(ctx).WithField("user", userID)
	ctx = logger.WithContext(ctx, log)

	a, err := s.load(ctx, "", userID)
	if err != nil {
		return nil, err
	}

	v, _, err := s.valuate(ctx, a)
	if err != nil {
		return nil, err
	}

	report := &core.HealthReport{
		UserID:          userID,
		CollateralValue: number.FromWad(v.Collateral),
		DebtValue:       number.FromWad(v.Debt),
	}

	for _, kind := range core.AssetKinds {
		pool, ok := a.pools[kind]
		if !ok {
			continue
		}

		threshold, err := toWad(pool.LiquidationThreshold)
		if err != nil {
			return nil, err
		}

		factor, finite, err := v.HealthFactor(threshold)
		if err != nil {
			return nil, err
		}

		healthy, err := v.Healthy(threshold)
		if err != nil {
			return nil, err
		}

		f := &core.HealthFactor{
			Kind:      kind,
			Threshold: pool.LiquidationThreshold,
			Infinite:  !finite,
			Healthy:   healthy,
		}

		if finite {
			f.Factor = number.Floor(number.FromWad(factor), factorPrecision)
		}

		report.Factors = append(report.Factors, f)
	}

	return report, nil
}
