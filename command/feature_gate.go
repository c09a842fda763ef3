package command

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

const (
	// FeatureTokenIssue gates token issuance.
	FeatureTokenIssue = "attendance.tokens"
	// FeatureScan gates scan resolution.
	FeatureScan = "attendance.scan"
)

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string, userID uuid.UUID) (bool, error) {
	if gate == nil {
		return true, nil
	}
	scopeSet := featureScopeSet(userID)
	if scopeSet == nil {
		return gate.Enabled(ctx, key)
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeSet(*scopeSet))
}

func featureScopeSet(userID uuid.UUID) *featuregate.ScopeSet {
	if userID == uuid.Nil {
		return nil
	}
	return &featuregate.ScopeSet{
		System: true,
		UserID: userID.String(),
	}
}

func requireFeature(ctx context.Context, gate featuregate.FeatureGate, key string, userID uuid.UUID) error {
	enabled, err := featureEnabled(ctx, gate, key, userID)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrFeatureDisabled
	}
	return nil
}
