package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"soultrader/config"
	"soultrader/internal/dto"
	"soultrader/internal/model"
	"soultrader/internal/repository"
	"soultrader/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AnalysisService runs the end-to-end decision engine: collect advisor
// stances, score the consensus, size buys and sells, persist the
// session and optionally execute.
type AnalysisService interface {
	Analyze(ctx context.Context, userID uuid.UUID, symbols []string, opts dto.AnalysisOptions) (*dto.AnalysisResult, error)
	BatchAnalyze(ctx context.Context, userIDs []uuid.UUID, opts dto.BatchAnalysisOptions) (*dto.BatchAnalysisResult, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*dto.AnalysisResult, error)
	GetLatestSessions(ctx context.Context, userID uuid.UUID, limit int) ([]dto.AnalysisResult, error)
	GetPendingRecommendations(ctx context.Context, userID uuid.UUID) ([]model.SmartRecommendation, error)
}

type analysisService struct {
	cfg            *config.Config
	log            *logger.Logger
	account        AccountService
	collector      CollectorService
	execution      ExecutionService
	userRepo       repository.UserRepository
	sessionRepo    repository.AnalysisSessionRepository
	smartRecRepo   repository.SmartRecommendationRepository
	advisorRecRepo repository.AdvisorRecommendationRepository

	// One analysis at a time per user.
	userLocks sync.Map
}

func NewAnalysisService(
	cfg *config.Config,
	log *logger.Logger,
	account AccountService,
	collector CollectorService,
	execution ExecutionService,
	userRepo repository.UserRepository,
	sessionRepo repository.AnalysisSessionRepository,
	smartRecRepo repository.SmartRecommendationRepository,
	advisorRecRepo repository.AdvisorRecommendationRepository,
) AnalysisService {
	return &analysisService{
		cfg:            cfg,
		log:            log,
		account:        account,
		collector:      collector,
		execution:      execution,
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		smartRecRepo:   smartRecRepo,
		advisorRecRepo: advisorRecRepo,
	}
}

func (s *analysisService) lockFor(userID uuid.UUID) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *analysisService) Analyze(ctx context.Context, userID uuid.UUID, symbols []string, opts dto.AnalysisOptions) (*dto.AnalysisResult, error) {
	lock := s.lockFor(userID)
	if !lock.TryLock() {
		return nil, fmt.Errorf("%w: user %s", ErrAnalysisInProgress, userID)
	}
	defer lock.Unlock()

	s.sweepExpired(ctx)

	user, err := s.account.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.account.GetOrCreatePortfolio(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile, err := s.account.GetOrCreateRiskProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	session := &model.AnalysisSession{
		UserID:    user.ID,
		Status:    model.SessionStatusRunning,
		StartedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create analysis session: %w", err)
	}

	s.log.InfoContext(ctx, "Starting analysis",
		logger.StringField("user_id", user.ID.String()),
		logger.StringField("session_id", session.ID.String()),
	)

	result, err := s.runAnalysis(ctx, session, portfolio, profile, symbols, opts)
	if err != nil {
		elapsed := time.Since(session.StartedAt).Seconds()
		if failErr := s.sessionRepo.Fail(ctx, session.ID, err.Error(), elapsed); failErr != nil {
			s.log.ErrorContext(ctx, "Failed to mark session failed", logger.ErrorField(failErr))
		}
		s.log.ErrorContext(ctx, "Analysis failed",
			logger.StringField("session_id", session.ID.String()),
			logger.ErrorField(err),
		)
		return nil, err
	}

	return result, nil
}

func (s *analysisService) runAnalysis(
	ctx context.Context,
	session *model.AnalysisSession,
	portfolio *model.Portfolio,
	profile *model.RiskProfile,
	symbols []string,
	opts dto.AnalysisOptions,
) (*dto.AnalysisResult, error) {
	holdings := make(map[string]model.Holding, len(portfolio.Holdings))
	for _, h := range portfolio.Holdings {
		holdings[h.Instrument.Symbol] = h
	}

	tickerList := s.buildTickerList(symbols, holdings)
	if len(tickerList) == 0 {
		return s.completeSession(ctx, session, portfolio, nil, 0, 0)
	}

	instruments, recsByInstrument := s.fetchAll(ctx, tickerList, opts.Force)

	// Reprice holdings with fetched data so gain and position math use
	// the same snapshot the scoring does.
	for symbol, holding := range holdings {
		if instrument, ok := instruments[symbol]; ok {
			holding.Instrument = instrument
			holdings[symbol] = holding
		}
	}
	portfolioValue := portfolio.CurrentCapital
	for _, h := range holdings {
		portfolioValue += h.MarketValue()
	}

	candidates := consolidate(recsByInstrument, instruments, holdings, profile, portfolioValue)

	var buys []*Candidate
	if portfolio.CurrentCapital >= s.cfg.Analysis.MinCash {
		buys = applyBuyAlgorithm(candidates, portfolio.CurrentCapital, profile)
	} else {
		s.log.InfoContext(ctx, "Skipping buy sizing, cash below minimum",
			logger.Float64Field("current_capital", portfolio.CurrentCapital),
			logger.Float64Field("min_cash", s.cfg.Analysis.MinCash),
		)
	}
	sellWeight := effectiveSellWeight(portfolio, profile)
	sells := applySellAlgorithm(candidates, profile, sellWeight)
	profitTaking := checkProfitTaking(holdings, profile, sellWeight, portfolioValue)

	all := make([]*Candidate, 0, len(buys)+len(sells)+len(profitTaking))
	all = append(all, buys...)
	all = append(all, sells...)
	all = append(all, profitTaking...)

	stored := s.toSmartRecommendations(session, all)
	if !opts.DryRun {
		if err := s.smartRecRepo.CreateBatch(ctx, stored); err != nil {
			return nil, fmt.Errorf("failed to store recommendations: %w", err)
		}
	}

	advisorsQueried := 0
	for _, recs := range recsByInstrument {
		if len(recs) > advisorsQueried {
			advisorsQueried = len(recs)
		}
	}

	executed := 0
	requested := false
	if opts.AutoExecute != nil {
		requested = *opts.AutoExecute
	}
	if requested && profile.AutoExecuteTrades && !opts.DryRun {
		executed = s.executeAll(ctx, session.UserID, stored)
	}

	return s.completeSession(ctx, session, portfolio, stored, advisorsQueried, executed)
}

// buildTickerList merges explicit request symbols, the configured
// discovery watchlist and every held position.
func (s *analysisService) buildTickerList(symbols []string, holdings map[string]model.Holding) []string {
	seen := make(map[string]bool)
	list := make([]string, 0, len(symbols)+len(s.cfg.Analysis.Watchlist)+len(holdings))

	add := func(symbol string) {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" || seen[symbol] {
			return
		}
		seen[symbol] = true
		list = append(list, symbol)
	}

	for _, symbol := range symbols {
		add(symbol)
	}
	for _, symbol := range s.cfg.Analysis.Watchlist {
		add(symbol)
	}
	for symbol := range holdings {
		add(symbol)
	}

	return list
}

// fetchAll resolves instruments and collects advisor stances for every
// symbol concurrently. Per-symbol failures are logged and skipped so one
// bad ticker cannot sink the whole run.
func (s *analysisService) fetchAll(ctx context.Context, tickerList []string, force bool) (map[string]model.Instrument, map[string][]model.AdvisorRecommendation) {
	var mu sync.Mutex
	instruments := make(map[string]model.Instrument, len(tickerList))
	recsByInstrument := make(map[string][]model.AdvisorRecommendation, len(tickerList))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Analysis.MaxConcurrency)

	for _, symbol := range tickerList {
		symbol := symbol
		g.Go(func() error {
			instrument, err := s.collector.EnsureInstrument(gctx, symbol)
			if err != nil {
				s.log.WarnContext(gctx, "Skipping symbol, no instrument data",
					logger.StringField("symbol", symbol),
					logger.ErrorField(err),
				)
				return nil
			}

			recs, err := s.collector.Collect(gctx, instrument, force)
			if err != nil {
				s.log.WarnContext(gctx, "Skipping symbol, no advisor data",
					logger.StringField("symbol", symbol),
					logger.ErrorField(err),
				)
				return nil
			}

			mu.Lock()
			instruments[symbol] = *instrument
			recsByInstrument[symbol] = recs
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return instruments, recsByInstrument
}

func (s *analysisService) toSmartRecommendations(session *model.AnalysisSession, candidates []*Candidate) []model.SmartRecommendation {
	recs := make([]model.SmartRecommendation, 0, len(candidates))
	for _, c := range candidates {
		if c.SharesToBuy <= 0 && c.SharesToSell <= 0 {
			continue
		}
		recs = append(recs, model.SmartRecommendation{
			SessionID:          session.ID,
			UserID:             session.UserID,
			InstrumentID:       c.Instrument.ID,
			RecommendationType: c.RecommendationType,
			ConfidenceScore:    c.ConfidenceScore,
			PriorityScore:      c.PriorityScore,
			CurrentPrice:       c.CurrentPrice,
			SharesToBuy:        c.SharesToBuy,
			SharesToSell:       c.SharesToSell,
			CashAllocated:      c.CashAllocated,
			Reasoning:          c.Reasoning,
			Status:             model.SmartRecommendationPending,
			Instrument:         c.Instrument,
		})
	}
	return recs
}

// executeAll fills stored recommendations sells first, so freed cash is
// available for the buys.
func (s *analysisService) executeAll(ctx context.Context, userID uuid.UUID, recs []model.SmartRecommendation) int {
	executed := 0

	for i := range recs {
		if recs[i].RecommendationType != model.RecommendationSell {
			continue
		}
		if _, err := s.execution.ExecuteRecommendation(ctx, userID, &recs[i]); err != nil {
			s.log.WarnContext(ctx, "Auto-execute sell failed",
				logger.StringField("symbol", recs[i].Instrument.Symbol),
				logger.ErrorField(err),
			)
			continue
		}
		executed++
	}

	for i := range recs {
		if recs[i].RecommendationType != model.RecommendationBuy {
			continue
		}
		if _, err := s.execution.ExecuteRecommendation(ctx, userID, &recs[i]); err != nil {
			s.log.WarnContext(ctx, "Auto-execute buy failed",
				logger.StringField("symbol", recs[i].Instrument.Symbol),
				logger.ErrorField(err),
			)
			continue
		}
		executed++
	}

	return executed
}

func (s *analysisService) completeSession(
	ctx context.Context,
	session *model.AnalysisSession,
	portfolio *model.Portfolio,
	recs []model.SmartRecommendation,
	advisorsQueried int,
	executed int,
) (*dto.AnalysisResult, error) {
	summary := model.SessionSummary{
		AdvisorsQueried:      advisorsQueried,
		TradesExecuted:       executed,
		PortfolioValueBefore: portfolio.TotalValue(),
	}
	symbols := make(map[uuid.UUID]bool, len(recs))
	for _, rec := range recs {
		symbols[rec.InstrumentID] = true
		switch rec.RecommendationType {
		case model.RecommendationBuy:
			summary.BuyRecommendations++
			summary.TotalCashAllocated += rec.CashAllocated
		case model.RecommendationSell:
			summary.SellRecommendations++
		}
	}
	summary.SymbolsAnalyzed = len(symbols)

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session summary: %w", err)
	}

	elapsed := time.Since(session.StartedAt).Seconds()
	if err := s.sessionRepo.Complete(ctx, session.ID, summaryJSON, elapsed); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	now := time.Now()
	s.log.InfoContext(ctx, "Analysis completed",
		logger.StringField("session_id", session.ID.String()),
		logger.IntField("recommendations", len(recs)),
		logger.IntField("executed", executed),
		logger.Float64Field("processing_seconds", elapsed),
	)

	return &dto.AnalysisResult{
		SessionID:             session.ID,
		UserID:                session.UserID,
		Status:                model.SessionStatusCompleted,
		StartedAt:             session.StartedAt,
		CompletedAt:           &now,
		ProcessingTimeSeconds: elapsed,
		Summary:               &summary,
		Recommendations:       recs,
	}, nil
}

// sweepExpired lazily retires stale rows before a run: pending smart
// recommendations past the TTL flip to EXPIRED and expired advisor rows
// are dropped.
func (s *analysisService) sweepExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.Analysis.RecommendationTTL)
	if n, err := s.smartRecRepo.ExpireOlderThan(ctx, cutoff); err != nil {
		s.log.WarnContext(ctx, "Failed to expire stale recommendations", logger.ErrorField(err))
	} else if n > 0 {
		s.log.InfoContext(ctx, "Expired stale recommendations", logger.IntField("count", int(n)))
	}

	if n, err := s.advisorRecRepo.DeleteExpired(ctx, time.Now()); err != nil {
		s.log.WarnContext(ctx, "Failed to delete expired advisor recommendations", logger.ErrorField(err))
	} else if n > 0 {
		s.log.InfoContext(ctx, "Deleted expired advisor recommendations", logger.IntField("count", int(n)))
	}
}

func (s *analysisService) BatchAnalyze(ctx context.Context, userIDs []uuid.UUID, opts dto.BatchAnalysisOptions) (*dto.BatchAnalysisResult, error) {
	users, err := s.resolveBatchUsers(ctx, userIDs, opts.MaxUsers)
	if err != nil {
		return nil, err
	}
	if opts.MinCash != nil {
		users = s.filterByMinCash(ctx, users, *opts.MinCash)
	}
	if len(users) == 0 {
		return &dto.BatchAnalysisResult{}, nil
	}

	s.log.InfoContext(ctx, "Starting batch analysis", logger.IntField("users", len(users)))

	// Warm every unique symbol once. Per-user runs then reuse the fresh
	// advisor rows instead of hitting the providers again. A forced batch
	// refreshes during the prefetch so the per-user runs still share it.
	uniqueSymbols := s.collectUniqueSymbols(ctx, users)
	s.prefetchSymbols(ctx, uniqueSymbols, opts.Force)

	result := &dto.BatchAnalysisResult{
		TotalUsers:   len(users),
		UniqueStocks: len(uniqueSymbols),
		Results:      make([]dto.AnalysisResult, 0, len(users)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Analysis.MaxConcurrency)

	for _, user := range users {
		user := user
		g.Go(func() error {
			// Force already refreshed during the prefetch.
			res, err := s.Analyze(gctx, user.ID, nil, dto.AnalysisOptions{
				AutoExecute: opts.AutoExecute,
				DryRun:      opts.DryRun,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Results = append(result.Results, dto.AnalysisResult{
					UserID:       user.ID,
					Status:       model.SessionStatusFailed,
					ErrorMessage: err.Error(),
				})
				s.log.ErrorContext(gctx, "Batch user analysis failed",
					logger.StringField("user_id", user.ID.String()),
					logger.ErrorField(err),
				)
				return nil
			}
			result.Succeeded++
			result.Results = append(result.Results, *res)
			return nil
		})
	}
	_ = g.Wait()

	s.log.InfoContext(ctx, "Batch analysis completed",
		logger.IntField("succeeded", result.Succeeded),
		logger.IntField("failed", result.Failed),
		logger.IntField("unique_stocks", result.UniqueStocks),
	)

	return result, nil
}

func (s *analysisService) resolveBatchUsers(ctx context.Context, userIDs []uuid.UUID, maxUsers *int) ([]model.User, error) {
	if len(userIDs) == 0 {
		limit := s.cfg.Analysis.MaxUsers
		if maxUsers != nil {
			limit = *maxUsers
		}
		users, err := s.userRepo.GetActiveUsers(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list active users: %w", err)
		}
		return users, nil
	}

	users := make([]model.User, 0, len(userIDs))
	for _, id := range userIDs {
		user, err := s.account.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

// filterByMinCash drops users whose cash balance is below the floor.
func (s *analysisService) filterByMinCash(ctx context.Context, users []model.User, minCash float64) []model.User {
	kept := make([]model.User, 0, len(users))
	for _, user := range users {
		portfolio, err := s.account.GetOrCreatePortfolio(ctx, user.ID)
		if err != nil {
			s.log.WarnContext(ctx, "Skipping user, portfolio unavailable",
				logger.StringField("user_id", user.ID.String()),
				logger.ErrorField(err),
			)
			continue
		}
		if portfolio.CurrentCapital < minCash {
			continue
		}
		kept = append(kept, user)
	}
	return kept
}

func (s *analysisService) collectUniqueSymbols(ctx context.Context, users []model.User) []string {
	seen := make(map[string]bool)
	symbols := make([]string, 0)

	for _, symbol := range s.cfg.Analysis.Watchlist {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol != "" && !seen[symbol] {
			seen[symbol] = true
			symbols = append(symbols, symbol)
		}
	}

	for _, user := range users {
		portfolio, err := s.account.GetOrCreatePortfolio(ctx, user.ID)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to collect symbols for user",
				logger.StringField("user_id", user.ID.String()),
				logger.ErrorField(err),
			)
			continue
		}
		for _, holding := range portfolio.Holdings {
			symbol := holding.Instrument.Symbol
			if symbol != "" && !seen[symbol] {
				seen[symbol] = true
				symbols = append(symbols, symbol)
			}
		}
	}

	return symbols
}

func (s *analysisService) prefetchSymbols(ctx context.Context, symbols []string, force bool) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Analysis.MaxConcurrency)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			instrument, err := s.collector.EnsureInstrument(gctx, symbol)
			if err != nil {
				s.log.WarnContext(gctx, "Prefetch skipped symbol",
					logger.StringField("symbol", symbol),
					logger.ErrorField(err),
				)
				return nil
			}
			if _, err := s.collector.Collect(gctx, instrument, force); err != nil {
				s.log.WarnContext(gctx, "Prefetch found no advisor data",
					logger.StringField("symbol", symbol),
					logger.ErrorField(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *analysisService) GetSession(ctx context.Context, sessionID uuid.UUID) (*dto.AnalysisResult, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %s not found", ErrNotFound, sessionID)
	}

	recs, err := s.smartRecRepo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session recommendations: %w", err)
	}

	result := &dto.AnalysisResult{
		SessionID:             session.ID,
		UserID:                session.UserID,
		Status:                session.Status,
		StartedAt:             session.StartedAt,
		CompletedAt:           session.CompletedAt,
		ProcessingTimeSeconds: session.ProcessingTimeSeconds,
		ErrorMessage:          session.ErrorMessage,
		Recommendations:       recs,
	}

	if len(session.Summary) > 0 {
		var summary model.SessionSummary
		if err := json.Unmarshal(session.Summary, &summary); err == nil {
			result.Summary = &summary
		}
	}

	return result, nil
}

// GetLatestSessions returns a user's most recent sessions, newest first,
// without the per-session recommendation lists.
func (s *analysisService) GetLatestSessions(ctx context.Context, userID uuid.UUID, limit int) ([]dto.AnalysisResult, error) {
	sessions, err := s.sessionRepo.GetLatestByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	results := make([]dto.AnalysisResult, 0, len(sessions))
	for _, session := range sessions {
		result := dto.AnalysisResult{
			SessionID:             session.ID,
			UserID:                session.UserID,
			Status:                session.Status,
			StartedAt:             session.StartedAt,
			CompletedAt:           session.CompletedAt,
			ProcessingTimeSeconds: session.ProcessingTimeSeconds,
			ErrorMessage:          session.ErrorMessage,
		}
		if len(session.Summary) > 0 {
			var summary model.SessionSummary
			if err := json.Unmarshal(session.Summary, &summary); err == nil {
				result.Summary = &summary
			}
		}
		results = append(results, result)
	}

	return results, nil
}

func (s *analysisService) GetPendingRecommendations(ctx context.Context, userID uuid.UUID) ([]model.SmartRecommendation, error) {
	cutoff := time.Now().Add(-s.cfg.Analysis.RecommendationTTL)
	return s.smartRecRepo.GetPendingByUser(ctx, userID, cutoff)
}
