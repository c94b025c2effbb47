package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/platefinder/backend/internal/domain/providers"
	"github.com/platefinder/backend/internal/domain/repositories"
	"github.com/platefinder/backend/internal/infrastructure/observability"
	"github.com/platefinder/backend/pkg/config"
	apperrors "github.com/platefinder/backend/pkg/errors"
	"github.com/platefinder/backend/pkg/utils"
)

const (
	sessionContextKeyPrefix = "session_ctx:"
	sessionContextTTL       = 1800 // seconds

	// maxProviderPages bounds pagination against the places provider.
	maxProviderPages = 3

	// failurePersistTimeout bounds the write that records a failed run. It is
	// a fresh deadline because the run context may be the failure cause.
	failurePersistTimeout = 5 * time.Second
)

// SearchRequest is one inbound search submission.
type SearchRequest struct {
	Query        string             `json:"query"`
	SessionID    string             `json:"session_id"`
	RequestID    string             `json:"request_id,omitempty"`
	UserLocation *entities.Location `json:"user_location,omitempty"`
	RegionCode   string             `json:"region_code,omitempty"`
	UILanguage   string             `json:"ui_language,omitempty"`
	Limit        int                `json:"limit,omitempty"`
}

// SubmitOutcome reports whether an existing job was reused or a new run began.
type SubmitOutcome struct {
	Job         *entities.SearchJob
	Reused      bool
	DedupReason string
}

// SearchOrchestrator drives the full pipeline: dedup, classification, requery,
// provider fetch, relaxation, weight computation and ranking. The decision
// engines stay pure; all IO, timing and cancellation lives here.
type SearchOrchestrator struct {
	jobs       providers.JobStore
	classifier providers.QueryClassifier
	places     providers.PlacesProvider
	candidates repositories.CandidateIndexRepository
	cache      providers.CacheProvider
	bus        providers.EventBus
	analytics  *SearchAnalyticsService

	dedup   *DedupService
	requery *RequeryService
	relax   *RelaxationService
	weights *RankingWeightService
	ranker  *ResultRanker
	lang    *LanguageContextService
	cuisine *utils.CuisineNormalizer
	flags   *FeatureFlags

	cfg config.PipelineConfig
}

// OrchestratorDeps bundles the collaborators a SearchOrchestrator needs.
type OrchestratorDeps struct {
	Jobs       providers.JobStore
	Classifier providers.QueryClassifier
	Places     providers.PlacesProvider
	Candidates repositories.CandidateIndexRepository
	Cache      providers.CacheProvider
	Bus        providers.EventBus
	Analytics  *SearchAnalyticsService
	Flags      *FeatureFlags
}

// NewSearchOrchestrator creates a new search orchestrator
func NewSearchOrchestrator(deps OrchestratorDeps, cfg config.PipelineConfig) *SearchOrchestrator {
	flags := deps.Flags
	if flags == nil {
		flags = NewFeatureFlags()
	}
	return &SearchOrchestrator{
		jobs:       deps.Jobs,
		classifier: deps.Classifier,
		places:     deps.Places,
		candidates: deps.Candidates,
		cache:      deps.Cache,
		bus:        deps.Bus,
		analytics:  deps.Analytics,
		dedup:      NewDedupService(DedupConfig{MaxRunningAge: cfg.MaxRunningAge}),
		requery: NewRequeryService(RequeryConfig{
			LocationDriftMeters: cfg.LocationDriftMeters,
			RadiusGrowthRatio:   cfg.RadiusGrowthRatio,
			PoolFloor:           cfg.PoolFloor,
		}),
		relax: NewRelaxationService(RelaxationConfig{
			MinResults:  cfg.MinResults,
			MaxAttempts: cfg.MaxRelaxAttempts,
		}),
		weights: NewRankingWeightService(RankingWeightConfig{
			Strategy: flags.WeightStrategy(),
			ClampMin: cfg.WeightClampMin,
			ClampMax: cfg.WeightClampMax,
		}),
		ranker:  NewResultRanker(),
		lang:    NewLanguageContextService(nil, ""),
		cuisine: utils.NewCuisineNormalizer(),
		flags:   flags,
		cfg:     cfg,
	}
}

// Submit runs the dedup decision and either attaches the caller to an existing
// job or registers a new one and starts the pipeline in the background.
func (s *SearchOrchestrator) Submit(ctx context.Context, req SearchRequest) (*SubmitOutcome, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, apperrors.NewValidationError("query must not be empty")
	}
	if req.SessionID == "" {
		return nil, apperrors.NewValidationError("session_id must not be empty")
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	key := idempotencyKey(req)

	candidate, boundID, err := s.jobs.FindCandidate(ctx, key, s.cfg.JobFreshWindow)
	if err != nil {
		return nil, apperrors.NewInternalError("job lookup failed", err)
	}

	decision := s.dedup.Evaluate(candidate, time.Now())
	if decision.ShouldReuse {
		recordDedupReuse(decision.Reason)
		return &SubmitOutcome{
			Job:         decision.ExistingJob,
			Reused:      true,
			DedupReason: decision.Reason,
		}, nil
	}

	now := time.Now()
	job := &entities.SearchJob{
		ID:             uuid.New().String(),
		RequestID:      req.RequestID,
		SessionID:      req.SessionID,
		IdempotencyKey: key,
		Status:         entities.JobStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if job.RequestID == "" {
		job.RequestID = uuid.New().String()
	}

	// A key still bound to a non-reusable job (failed, stale, or an expired
	// record) is rebound with a guard on the old ID, so the failed run does
	// not block retries for the rest of the idempotency TTL.
	var created bool
	if boundID != "" {
		created, err = s.jobs.Replace(ctx, job, boundID, s.cfg.JobResultTTL)
	} else {
		created, err = s.jobs.CreateIfAbsent(ctx, job, s.cfg.JobResultTTL)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("job creation failed", err)
	}
	if !created {
		// Another request won the create race. Attach only when the winner
		// itself passes the dedup decision.
		winner, _, err := s.jobs.FindCandidate(ctx, key, s.cfg.JobFreshWindow)
		if err != nil {
			return nil, apperrors.NewInternalError("job lookup failed", err)
		}
		winnerDecision := s.dedup.Evaluate(winner, time.Now())
		if !winnerDecision.ShouldReuse {
			return nil, apperrors.NewConflictError("a concurrent identical search is registering, retry")
		}
		recordDedupReuse(winnerDecision.Reason)
		return &SubmitOutcome{Job: winnerDecision.ExistingJob, Reused: true, DedupReason: winnerDecision.Reason}, nil
	}

	go s.run(job, req, decision.Reason)

	return &SubmitOutcome{Job: job, DedupReason: decision.Reason}, nil
}

// GetJob returns the current state of a job.
func (s *SearchOrchestrator) GetJob(ctx context.Context, id string) (*entities.SearchJob, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("job lookup failed", err)
	}
	if job == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("job %s not found", id))
	}
	return job, nil
}

// run executes the pipeline for a freshly created job. Detached from the
// request context so client disconnects do not abort the run.
func (s *SearchOrchestrator) run(job *entities.SearchJob, req SearchRequest, dedupReason string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ExecutionTimeout)
	defer cancel()

	started := time.Now()
	err := s.execute(ctx, job, req, dedupReason, started)
	if err == nil {
		return
	}

	observability.LoggerFromContext(ctx).Error().
		Err(err).
		Str("job_id", job.ID).
		Str("session_id", req.SessionID).
		Msg("search pipeline failed")

	// The run context is often already expired here (the timeout itself is a
	// failure mode), so the terminal transition gets its own deadline.
	persistCtx, cancelPersist := context.WithTimeout(context.Background(), failurePersistTimeout)
	defer cancelPersist()

	job.Status = entities.JobStatusDoneFailed
	job.FailureCode = string(apperrors.TypeOf(err))
	job.UpdatedAt = time.Now()
	if updateErr := s.jobs.Update(persistCtx, job); updateErr != nil {
		observability.LoggerFromContext(persistCtx).Error().
			Err(updateErr).
			Str("job_id", job.ID).
			Msg("failed to persist job failure")
	}

	s.publish(persistCtx, job, entities.StageDone, entities.PipelineEventJobFailed, map[string]interface{}{
		"failure_code": job.FailureCode,
	})
}

func (s *SearchOrchestrator) execute(ctx context.Context, job *entities.SearchJob, req SearchRequest, dedupReason string, started time.Time) error {
	job.Status = entities.JobStatusRunning
	job.UpdatedAt = time.Now()
	if err := s.jobs.Update(ctx, job); err != nil {
		return apperrors.NewInternalError("failed to mark job running", err)
	}

	// Classification and previous-session-context load are independent.
	s.publish(ctx, job, entities.StageClassify, entities.PipelineEventStageStarted, nil)

	var (
		signals *providers.QuerySignals
		prevCtx *entities.SearchContext
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.classifier.Classify(gctx, req.Query, providers.ClassificationHints{
			SessionID:   req.SessionID,
			RegionCode:  req.RegionCode,
			HasLocation: req.UserLocation != nil,
		})
		if err != nil {
			return apperrors.NewExternalError("query classification failed", err)
		}
		signals = out
		return nil
	})
	g.Go(func() error {
		prevCtx = s.loadSessionContext(gctx, req.SessionID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	langCtx := s.lang.InitLangCtx(signals.DetectedLanguage, signals.LanguageConfidence, req.RegionCode)
	if req.UILanguage != "" {
		updated, err := s.lang.UpdateLangCtx(langCtx, LangCtxUpdate{UILanguage: &req.UILanguage})
		if err != nil {
			return err
		}
		langCtx = updated
	}

	cuisineKey := ""
	if signals.CuisineTerm != "" {
		if norm := s.cuisine.Normalize(signals.CuisineTerm); norm.Matched {
			cuisineKey = norm.Key
		}
	}

	nextCtx := buildSearchContext(req, signals, cuisineKey)
	s.publish(ctx, job, entities.StageClassify, entities.PipelineEventStageCompleted, map[string]interface{}{
		"route":    string(nextCtx.Route),
		"language": langCtx.AssistantLanguage,
	})

	// Requery decision against the previous snapshot and the surviving pool.
	pool := s.poolStats(ctx, req.SessionID, nextCtx, req.Limit, prevCtx)
	requeryDecision := s.requery.Evaluate(prevCtx, nextCtx, pool)
	recordRequeryReason(requeryDecision.Reason)
	s.publish(ctx, job, entities.StageRequery, entities.PipelineEventStageCompleted, map[string]interface{}{
		"reason":      requeryDecision.Reason,
		"do_provider": requeryDecision.DoProvider,
	})

	if requeryDecision.DoProvider {
		if err := s.fetchAndIndex(ctx, job, req, nextCtx, langCtx); err != nil {
			return err
		}
	}

	// Relaxation loop over the locally indexed pool.
	filters := buildFinalFilters(nextCtx)
	results, relaxSteps, err := s.filterWithRelaxation(ctx, job, req.SessionID, filters, req.Limit)
	if err != nil {
		return err
	}

	// Weights plus the invariant enforcer, then the ranker.
	sig := IntentSignals{
		Route:            nextCtx.Route,
		CuisineKey:       cuisineKey,
		HasUserLocation:  req.UserLocation != nil,
		HasCuisineScores: anyCuisineScore(results),
		OpenNowRequested: signals.OpenNowRequested,
		ProximityIntent:  signals.ProximityIntent,
		BudgetIntent:     signals.BudgetIntent,
		QualityIntent:    signals.QualityIntent,
	}
	computed := s.weights.Compute(sig)
	s.publish(ctx, job, entities.StageWeights, entities.PipelineEventStageCompleted, map[string]interface{}{
		"profile":        computed.Profile,
		"trigger_flags":  computed.TriggerFlags,
		"enforcer_rules": computed.EnforcerRules,
	})

	ranked := s.ranker.Rank(results, computed.Weights, req.UserLocation)

	finalPool := entities.PoolStats{
		TotalCandidates:  totalOrLen(pool, results),
		AfterSoftFilters: len(results),
		RequestedLimit:   req.Limit,
	}

	// The result language is the classified assistant language; the emission
	// gate catches any stage that tried to swap it.
	if err := s.lang.AssertUserFacingLanguage(langCtx, langCtx.AssistantLanguage); err != nil {
		return err
	}

	result := &entities.SearchResult{
		Restaurants: make([]*entities.Restaurant, 0, len(ranked)),
		Scores:      make([]float64, 0, len(ranked)),
		Signals: entities.RankingSignals{
			Profile:        computed.Profile,
			DominantFactor: DominantFactor(computed.Weights),
			TriggerFlags:   computed.TriggerFlags,
			EnforcerRules:  computed.EnforcerRules,
			Pool:           finalPool,
			RelaxSteps:     relaxSteps,
			RequeryReason:  requeryDecision.Reason,
		},
		Language: langCtx.AssistantLanguage,
	}
	for _, rr := range ranked {
		result.Restaurants = append(result.Restaurants, rr.Restaurant)
		result.Scores = append(result.Scores, rr.Score)
	}

	job.Status = entities.JobStatusDoneSuccess
	job.Result = result
	job.UpdatedAt = time.Now()
	if err := s.jobs.Update(ctx, job); err != nil {
		return apperrors.NewInternalError("failed to persist job result", err)
	}

	s.saveSessionContext(ctx, req.SessionID, nextCtx)

	if s.analytics != nil && !s.flags.AnalyticsDisabled() {
		s.analytics.TrackSearch(ctx, s.buildSearchEvent(job, req, nextCtx, langCtx, dedupReason, requeryDecision.Reason, computed.Profile, len(relaxSteps), finalPool, started))
	}

	s.publish(ctx, job, entities.StageDone, entities.PipelineEventJobCompleted, map[string]interface{}{
		"result_count": len(ranked),
		"relax_steps":  relaxSteps,
	})

	return nil
}

// fetchAndIndex calls the places provider (with pagination) and replaces the
// session's candidate pool in the index.
func (s *SearchOrchestrator) fetchAndIndex(ctx context.Context, job *entities.SearchJob, req SearchRequest, sc entities.SearchContext, langCtx entities.LangCtx) error {
	if err := s.lang.AssertProviderLanguage(langCtx, langCtx.ProviderLanguage); err != nil {
		return err
	}

	s.publish(ctx, job, entities.StageFetch, entities.PipelineEventStageStarted, nil)

	query := providers.PlacesQuery{
		Text:     sc.Query,
		Language: langCtx.ProviderLanguage,
		Region:   sc.RegionCode,
		Location: sc.UserLocation,
		Limit:    req.Limit,
	}
	if sc.RadiusMeters != nil {
		query.RadiusMeters = *sc.RadiusMeters
	}
	if sc.OpenNow != nil {
		query.OpenNow = *sc.OpenNow
	}

	var (
		page *providers.PlacesPage
		err  error
	)
	if sc.Route == entities.RouteNearby {
		page, err = s.places.NearbySearch(ctx, query)
	} else {
		page, err = s.places.TextSearch(ctx, query)
	}
	if err != nil {
		return apperrors.NewExternalError("places lookup failed", err)
	}

	fetched := page.Restaurants
	// Overfetch so soft-filter changes and relaxation have headroom.
	poolTarget := req.Limit * 3
	for pages := 1; !s.flags.PaginationDisabled() && pages < maxProviderPages && page.NextPageToken != "" && len(fetched) < poolTarget; pages++ {
		page, err = s.places.NextPage(ctx, page.NextPageToken, langCtx.ProviderLanguage)
		if err != nil {
			// Partial pool is still usable; log and stop paginating.
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("job_id", job.ID).
				Msg("places pagination failed, continuing with partial pool")
			break
		}
		fetched = append(fetched, page.Restaurants...)
	}

	if err := s.candidates.Clear(ctx, req.SessionID); err != nil {
		return apperrors.NewInternalError("failed to clear candidate pool", err)
	}
	if len(fetched) > 0 {
		if err := s.candidates.IndexBatch(ctx, req.SessionID, fetched); err != nil {
			return apperrors.NewInternalError("failed to index candidate pool", err)
		}
	}

	s.publish(ctx, job, entities.StageFetch, entities.PipelineEventStageCompleted, map[string]interface{}{
		"fetched": len(fetched),
	})
	return nil
}

// filterWithRelaxation filters the indexed pool, loosening one filter per
// attempt until enough candidates survive or nothing is left to relax.
func (s *SearchOrchestrator) filterWithRelaxation(ctx context.Context, job *entities.SearchJob, sessionID string, filters entities.FinalFilters, limit int) ([]*entities.Restaurant, []string, error) {
	var stepNames []string

	for attempt := 0; ; attempt++ {
		results, err := s.candidates.Filter(ctx, sessionID, filters, limit)
		if err != nil {
			return nil, nil, apperrors.NewInternalError("candidate filtering failed", err)
		}

		outcome := s.relax.RelaxIfTooFew(len(results), attempt, filters)
		if !outcome.Relaxed {
			return results, stepNames, nil
		}

		for _, step := range outcome.Steps {
			stepNames = append(stepNames, step.Field)
			recordRelaxStep(step.Field)
			s.publish(ctx, job, entities.StageRelaxation, entities.PipelineEventRelaxStep, map[string]interface{}{
				"field":  step.Field,
				"reason": step.Reason,
			})
		}
		filters = outcome.NextFilters
	}
}

// poolStats snapshots the indexed pool for the requery decision. Nil when no
// previous context exists, so the first-request rule fires on prev alone.
func (s *SearchOrchestrator) poolStats(ctx context.Context, sessionID string, next entities.SearchContext, limit int, prev *entities.SearchContext) *entities.PoolStats {
	if prev == nil {
		return nil
	}

	total, err := s.candidates.Count(ctx, sessionID, entities.FinalFilters{})
	if err != nil {
		return nil
	}
	afterSoft, err := s.candidates.Count(ctx, sessionID, buildFinalFilters(next))
	if err != nil {
		return nil
	}
	return &entities.PoolStats{
		TotalCandidates:  total,
		AfterSoftFilters: afterSoft,
		RequestedLimit:   limit,
	}
}

func (s *SearchOrchestrator) loadSessionContext(ctx context.Context, sessionID string) *entities.SearchContext {
	data, err := s.cache.Get(ctx, sessionContextKeyPrefix+sessionID)
	if err != nil || len(data) == 0 {
		return nil
	}
	var sc entities.SearchContext
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil
	}
	return &sc
}

func (s *SearchOrchestrator) saveSessionContext(ctx context.Context, sessionID string, sc entities.SearchContext) {
	data, err := json.Marshal(sc)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, sessionContextKeyPrefix+sessionID, data, sessionContextTTL); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to cache session context")
	}
}

func (s *SearchOrchestrator) publish(ctx context.Context, job *entities.SearchJob, stage entities.PipelineStage, eventType entities.PipelineEventType, payload map[string]interface{}) {
	if s.bus == nil {
		return
	}
	event := entities.NewPipelineEvent(job.ID, job.SessionID, stage, eventType, payload)
	channels := []string{providers.GetJobChannel(job.ID)}
	if job.SessionID != "" {
		channels = append(channels, providers.GetSessionChannel(job.SessionID))
	}
	for _, channel := range channels {
		if err := s.bus.Publish(ctx, channel, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("job_id", job.ID).
				Str("channel", channel).
				Str("stage", string(stage)).
				Msg("failed to publish pipeline event")
		}
	}
}

func (s *SearchOrchestrator) buildSearchEvent(job *entities.SearchJob, req SearchRequest, sc entities.SearchContext, langCtx entities.LangCtx, dedupReason, requeryReason, profile string, relaxSteps int, pool entities.PoolStats, started time.Time) *entities.SearchEvent {
	event := &entities.SearchEvent{
		ID:            uuid.New().String(),
		JobID:         job.ID,
		SessionID:     req.SessionID,
		Query:         req.Query,
		Route:         string(sc.Route),
		CuisineKey:    sc.CuisineKey,
		Language:      langCtx.AssistantLanguage,
		DedupReason:   dedupReason,
		RequeryReason: requeryReason,
		RelaxSteps:    relaxSteps,
		WeightProfile: profile,
		ResultCount:   pool.AfterSoftFilters,
		PoolTotal:     pool.TotalCandidates,
		PoolAfterSoft: pool.AfterSoftFilters,
		LatencyMs:     int(time.Since(started).Milliseconds()),
		CreatedAt:     time.Now(),
	}
	if req.UserLocation != nil {
		event.UserLatitude = req.UserLocation.Latitude
		event.UserLongitude = req.UserLocation.Longitude
	}
	return event
}

// buildSearchContext merges request fields with classified signals into the
// snapshot the requery engine compares.
func buildSearchContext(req SearchRequest, signals *providers.QuerySignals, cuisineKey string) entities.SearchContext {
	sc := entities.SearchContext{
		Query:           strings.TrimSpace(strings.ToLower(req.Query)),
		Route:           signals.Route,
		UserLocation:    req.UserLocation,
		CityText:        signals.CityText,
		RegionCode:      req.RegionCode,
		PriceIntent:     signals.PriceIntent,
		MinRatingBucket: signals.MinRatingBucket,
		CuisineKey:      cuisineKey,
	}
	if signals.OpenNowRequested {
		v := true
		sc.OpenNow = &v
	}
	if signals.Kosher {
		v := true
		sc.Kosher = &v
	}
	if signals.GlutenFree {
		v := true
		sc.GlutenFree = &v
	}
	return sc
}

// buildFinalFilters extracts the relaxable subset of a context snapshot.
func buildFinalFilters(sc entities.SearchContext) entities.FinalFilters {
	return entities.FinalFilters{
		OpenState:       sc.OpenNow,
		Kosher:          sc.Kosher,
		GlutenFree:      sc.GlutenFree,
		MinRatingBucket: sc.MinRatingBucket,
	}
}

// idempotencyKey derives the dedup key from the fields that make two requests
// "the same search": session, normalized query and a coarse location bucket.
func idempotencyKey(req SearchRequest) string {
	var b strings.Builder
	b.WriteString(req.SessionID)
	b.WriteString("|")
	b.WriteString(strings.TrimSpace(strings.ToLower(req.Query)))
	if req.UserLocation != nil {
		// ~100m buckets; tiny GPS jitter should not defeat dedup.
		fmt.Fprintf(&b, "|%.3f,%.3f", req.UserLocation.Latitude, req.UserLocation.Longitude)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

func anyCuisineScore(restaurants []*entities.Restaurant) bool {
	for _, r := range restaurants {
		if r.CuisineScore != nil {
			return true
		}
	}
	return false
}

func totalOrLen(pool *entities.PoolStats, results []*entities.Restaurant) int {
	if pool != nil {
		return pool.TotalCandidates
	}
	return len(results)
}

// --- metrics ----------------------------------------------------------------

var (
	pipelineMetricsOnce  sync.Once
	dedupReuseCounter    metric.Int64Counter
	requeryReasonCounter metric.Int64Counter
	relaxStepCounter     metric.Int64Counter
)

func initPipelineMetrics() {
	meter := otel.Meter("github.com/platefinder/backend/search_pipeline")
	if c, err := meter.Int64Counter(
		"search.dedup_reuse.count",
		metric.WithDescription("Count of searches served from an existing job"),
	); err == nil {
		dedupReuseCounter = c
	}
	if c, err := meter.Int64Counter(
		"search.requery_reason.count",
		metric.WithDescription("Count of requery decisions by reason"),
	); err == nil {
		requeryReasonCounter = c
	}
	if c, err := meter.Int64Counter(
		"search.relax_step.count",
		metric.WithDescription("Count of relaxation steps by relaxed field"),
	); err == nil {
		relaxStepCounter = c
	}
}

func recordDedupReuse(reason string) {
	pipelineMetricsOnce.Do(initPipelineMetrics)
	if dedupReuseCounter == nil {
		return
	}
	dedupReuseCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("dedup.reason", reason)))
}

func recordRequeryReason(reason string) {
	pipelineMetricsOnce.Do(initPipelineMetrics)
	if requeryReasonCounter == nil {
		return
	}
	requeryReasonCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("requery.reason", reason)))
}

func recordRelaxStep(field string) {
	pipelineMetricsOnce.Do(initPipelineMetrics)
	if relaxStepCounter == nil {
		return
	}
	relaxStepCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("relax.field", field)))
}
