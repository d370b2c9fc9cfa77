package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"soultrader/config"
	"soultrader/internal/advisor"
	"soultrader/internal/model"
	"soultrader/internal/repository"
	"soultrader/pkg/logger"
)

// CollectorService resolves instruments against market data and gathers
// advisor recommendations, reusing fresh rows instead of re-querying
// the providers.
type CollectorService interface {
	RegisterSources(ctx context.Context) error
	EnsureInstrument(ctx context.Context, symbol string) (*model.Instrument, error)
	Collect(ctx context.Context, instrument *model.Instrument, force bool) ([]model.AdvisorRecommendation, error)
}

type collectorService struct {
	cfg            *config.Config
	log            *logger.Logger
	sources        []advisor.Source
	instrumentRepo repository.InstrumentRepository
	advisorRepo    repository.AdvisorRepository
	advisorRecRepo repository.AdvisorRecommendationRepository
	marketDataRepo repository.MarketDataRepository
}

func NewCollectorService(
	cfg *config.Config,
	log *logger.Logger,
	sources []advisor.Source,
	instrumentRepo repository.InstrumentRepository,
	advisorRepo repository.AdvisorRepository,
	advisorRecRepo repository.AdvisorRecommendationRepository,
	marketDataRepo repository.MarketDataRepository,
) CollectorService {
	return &collectorService{
		cfg:            cfg,
		log:            log,
		sources:        sources,
		instrumentRepo: instrumentRepo,
		advisorRepo:    advisorRepo,
		advisorRecRepo: advisorRecRepo,
		marketDataRepo: marketDataRepo,
	}
}

// RegisterSources makes sure every configured source has an advisor row,
// creating missing ones at the default weight. Seeded rows keep their
// tuned weight.
func (s *collectorService) RegisterSources(ctx context.Context) error {
	for _, source := range s.sources {
		existing, err := s.advisorRepo.GetByType(ctx, source.Type())
		if err != nil {
			return fmt.Errorf("failed to look up advisor %s: %w", source.Type(), err)
		}
		if existing != nil {
			continue
		}

		adv := &model.Advisor{
			Name:        source.Type(),
			AdvisorType: source.Type(),
			Weight:      5.0,
			Status:      model.AdvisorStatusActive,
		}
		if err := s.advisorRepo.Create(ctx, adv); err != nil {
			return fmt.Errorf("failed to register advisor %s: %w", source.Type(), err)
		}

		s.log.InfoContext(ctx, "Registered advisor",
			logger.StringField("advisor_type", adv.AdvisorType),
		)
	}
	return nil
}

// EnsureInstrument returns the instrument for a symbol with an up to
// date price, creating the row on first sight.
func (s *collectorService) EnsureInstrument(ctx context.Context, symbol string) (*model.Instrument, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrValidation)
	}

	quote, err := s.marketDataRepo.GetQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: no quote for %s: %v", ErrDataUnavailable, symbol, err)
	}

	instrument, err := s.instrumentRepo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get instrument: %w", err)
	}

	if instrument == nil {
		instrument = &model.Instrument{
			Symbol:   symbol,
			Name:     quote.Name,
			Exchange: quote.Exchange,
			Sector:   quote.Sector,
			Currency: "USD",
		}
	}

	instrument.CurrentPrice = quote.Price
	instrument.MarketCap = quote.MarketCap
	instrument.PriceAsOf = &quote.AsOf
	if err := s.instrumentRepo.Upsert(ctx, instrument); err != nil {
		return nil, fmt.Errorf("failed to upsert instrument: %w", err)
	}

	return instrument, nil
}

// Collect returns one recommendation per active advisor for the
// instrument. Rows newer than the freshness window are reused unless
// force is set, the rest are fetched from the providers concurrently.
func (s *collectorService) Collect(ctx context.Context, instrument *model.Instrument, force bool) ([]model.AdvisorRecommendation, error) {
	advisors, err := s.advisorRepo.GetActiveAdvisors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list advisors: %w", err)
	}
	if len(advisors) == 0 {
		return nil, fmt.Errorf("%w: no active advisors registered", ErrDataUnavailable)
	}

	var fresh []model.AdvisorRecommendation
	if !force {
		since := time.Now().Add(-s.cfg.Analysis.FreshnessWindow)
		fresh, err = s.advisorRecRepo.GetFreshByInstrument(ctx, instrument.ID, since)
		if err != nil {
			return nil, fmt.Errorf("failed to load fresh recommendations: %w", err)
		}
	}

	covered := make(map[string]bool, len(fresh))
	advisorByID := make(map[string]model.Advisor, len(advisors))
	for _, a := range advisors {
		advisorByID[a.AdvisorType] = a
	}
	for _, rec := range fresh {
		covered[rec.Advisor.AdvisorType] = true
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	collected := make([]model.AdvisorRecommendation, 0, len(s.sources))

	for _, source := range s.sources {
		adv, registered := advisorByID[source.Type()]
		if !registered || covered[source.Type()] {
			continue
		}

		wg.Add(1)
		go func(source advisor.Source, adv model.Advisor) {
			defer wg.Done()

			opinion, err := source.Fetch(ctx, instrument.Symbol, instrument.CurrentPrice)
			if err != nil {
				s.log.WarnContext(ctx, "Advisor fetch failed",
					logger.StringField("advisor", adv.AdvisorType),
					logger.StringField("symbol", instrument.Symbol),
					logger.ErrorField(err),
				)
				if markErr := s.advisorRepo.MarkError(ctx, adv.ID, err.Error()); markErr != nil {
					s.log.ErrorContext(ctx, "Failed to mark advisor error", logger.ErrorField(markErr))
				}
				return
			}

			rec := model.AdvisorRecommendation{
				AdvisorID:          adv.ID,
				InstrumentID:       instrument.ID,
				RecommendationType: opinion.RecommendationType,
				ConfidenceScore:    opinion.ConfidenceScore,
				TargetPrice:        opinion.TargetPrice,
				StopPrice:          opinion.StopPrice,
				Reasoning:          opinion.Reasoning,
				ExpiresAt:          time.Now().Add(s.cfg.Analysis.RecommendationTTL),
				Advisor:            adv,
			}

			mu.Lock()
			collected = append(collected, rec)
			mu.Unlock()

			if markErr := s.advisorRepo.MarkSuccess(ctx, adv.ID); markErr != nil {
				s.log.ErrorContext(ctx, "Failed to mark advisor success", logger.ErrorField(markErr))
			}
		}(source, adv)
	}

	wg.Wait()

	if len(collected) > 0 {
		if err := s.advisorRecRepo.CreateBatch(ctx, collected); err != nil {
			return nil, fmt.Errorf("failed to persist advisor recommendations: %w", err)
		}
	}

	all := append(fresh, collected...)
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: no advisor produced a recommendation for %s", ErrDataUnavailable, instrument.Symbol)
	}

	return all, nil
}
