package advisor

import (
	"context"

	"soultrader/internal/dto"
)

// Source is a single external recommendation provider. Implementations
// are safe for concurrent use.
type Source interface {
	// Type matches model.Advisor.AdvisorType for the registered row.
	Type() string
	// Fetch returns the provider's current stance on a symbol, or an
	// error when the provider has no opinion or is unreachable.
	// currentPrice feeds upside and valuation scoring and may be zero
	// when no quote is available.
	Fetch(ctx context.Context, symbol string, currentPrice float64) (*dto.AdvisorOpinion, error)
}
