package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/platefinder/backend/internal/domain/providers"
	"github.com/platefinder/backend/pkg/config"
	apperrors "github.com/platefinder/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mocks

type MockJobStore struct {
	mock.Mock
}

func (m *MockJobStore) FindCandidate(ctx context.Context, key string, freshWindow time.Duration) (*entities.SearchJob, string, error) {
	args := m.Called(ctx, key, freshWindow)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*entities.SearchJob), args.String(1), args.Error(2)
}

func (m *MockJobStore) CreateIfAbsent(ctx context.Context, job *entities.SearchJob, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, job, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobStore) Replace(ctx context.Context, job *entities.SearchJob, supersededJobID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, job, supersededJobID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobStore) GetByID(ctx context.Context, id string) (*entities.SearchJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SearchJob), args.Error(1)
}

func (m *MockJobStore) Update(ctx context.Context, job *entities.SearchJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type MockQueryClassifier struct {
	mock.Mock
}

func (m *MockQueryClassifier) Classify(ctx context.Context, query string, hints providers.ClassificationHints) (*providers.QuerySignals, error) {
	args := m.Called(ctx, query, hints)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.QuerySignals), args.Error(1)
}

type MockPlacesProvider struct {
	mock.Mock
}

func (m *MockPlacesProvider) TextSearch(ctx context.Context, query providers.PlacesQuery) (*providers.PlacesPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.PlacesPage), args.Error(1)
}

func (m *MockPlacesProvider) NearbySearch(ctx context.Context, query providers.PlacesQuery) (*providers.PlacesPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.PlacesPage), args.Error(1)
}

func (m *MockPlacesProvider) NextPage(ctx context.Context, token string, language string) (*providers.PlacesPage, error) {
	args := m.Called(ctx, token, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.PlacesPage), args.Error(1)
}

type MockCandidateIndex struct {
	mock.Mock
}

func (m *MockCandidateIndex) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCandidateIndex) IndexBatch(ctx context.Context, sessionID string, restaurants []*entities.Restaurant) error {
	args := m.Called(ctx, sessionID, restaurants)
	return args.Error(0)
}

func (m *MockCandidateIndex) Filter(ctx context.Context, sessionID string, filters entities.FinalFilters, limit int) ([]*entities.Restaurant, error) {
	args := m.Called(ctx, sessionID, filters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Restaurant), args.Error(1)
}

func (m *MockCandidateIndex) Count(ctx context.Context, sessionID string, filters entities.FinalFilters) (int, error) {
	args := m.Called(ctx, sessionID, filters)
	return args.Int(0), args.Error(1)
}

func (m *MockCandidateIndex) Clear(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.PipelineEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.PipelineEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.PipelineEvent), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	args := m.Called(ctx, key, value, expirationSeconds)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// Helpers

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		JobFreshWindow:      5 * time.Minute,
		MaxRunningAge:       90 * time.Second,
		JobResultTTL:        30 * time.Minute,
		LocationDriftMeters: 500,
		RadiusGrowthRatio:   0.5,
		PoolFloor:           5,
		MinResults:          3,
		MaxRelaxAttempts:    4,
		WeightClampMin:      5,
		WeightClampMax:      50,
		ExecutionTimeout:    25 * time.Second,
	}
}

func newTestOrchestrator(jobs *MockJobStore, classifier *MockQueryClassifier, places *MockPlacesProvider, candidates *MockCandidateIndex, cache *MockCache) *SearchOrchestrator {
	return NewSearchOrchestrator(OrchestratorDeps{
		Jobs:       jobs,
		Classifier: classifier,
		Places:     places,
		Candidates: candidates,
		Cache:      cache,
	}, testPipelineConfig())
}

func testRestaurants(n int) []*entities.Restaurant {
	out := make([]*entities.Restaurant, 0, n)
	for i := 0; i < n; i++ {
		rating := 3.5 + float64(i)*0.2
		reviews := 40 + i*10
		out = append(out, &entities.Restaurant{
			ID:          string(rune('a' + i)),
			Name:        "Place",
			Rating:      &rating,
			ReviewCount: &reviews,
			Open:        entities.OpenStatusOpen,
		})
	}
	return out
}

func textSearchSignals() *providers.QuerySignals {
	return &providers.QuerySignals{
		Route:              entities.RouteTextSearch,
		DetectedLanguage:   "en",
		LanguageConfidence: 0.95,
	}
}

// Tests

func TestOrchestrator_SubmitRejectsEmptyQuery(t *testing.T) {
	svc := newTestOrchestrator(&MockJobStore{}, &MockQueryClassifier{}, &MockPlacesProvider{}, &MockCandidateIndex{}, &MockCache{})

	_, err := svc.Submit(context.Background(), SearchRequest{SessionID: "s1"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))

	_, err = svc.Submit(context.Background(), SearchRequest{Query: "pizza"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
}

func TestOrchestrator_SubmitReusesCompletedJob(t *testing.T) {
	jobs := &MockJobStore{}
	svc := newTestOrchestrator(jobs, &MockQueryClassifier{}, &MockPlacesProvider{}, &MockCandidateIndex{}, &MockCache{})

	existing := &entities.SearchJob{
		ID:        "job-1",
		Status:    entities.JobStatusDoneSuccess,
		CreatedAt: time.Now().Add(-time.Minute),
		UpdatedAt: time.Now().Add(-time.Minute),
		Result:    &entities.SearchResult{},
	}
	jobs.On("FindCandidate", mock.Anything, mock.Anything, 5*time.Minute).Return(existing, existing.ID, nil)

	outcome, err := svc.Submit(context.Background(), SearchRequest{Query: "pizza", SessionID: "s1"})

	require.NoError(t, err)
	assert.True(t, outcome.Reused)
	assert.Equal(t, DedupReasonCachedResult, outcome.DedupReason)
	assert.Equal(t, "job-1", outcome.Job.ID)
	jobs.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_SubmitAttachesToRaceWinner(t *testing.T) {
	jobs := &MockJobStore{}
	svc := newTestOrchestrator(jobs, &MockQueryClassifier{}, &MockPlacesProvider{}, &MockCandidateIndex{}, &MockCache{})

	winner := &entities.SearchJob{
		ID:        "winner",
		Status:    entities.JobStatusRunning,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	jobs.On("FindCandidate", mock.Anything, mock.Anything, mock.Anything).Return(nil, "", nil).Once()
	jobs.On("CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	jobs.On("FindCandidate", mock.Anything, mock.Anything, mock.Anything).Return(winner, winner.ID, nil).Once()

	outcome, err := svc.Submit(context.Background(), SearchRequest{Query: "pizza", SessionID: "s1"})

	require.NoError(t, err)
	assert.True(t, outcome.Reused)
	assert.Equal(t, DedupReasonRunningFresh, outcome.DedupReason)
	assert.Equal(t, "winner", outcome.Job.ID)
}

func TestOrchestrator_SubmitLostRaceToNonReusableWinner(t *testing.T) {
	jobs := &MockJobStore{}
	svc := newTestOrchestrator(jobs, &MockQueryClassifier{}, &MockPlacesProvider{}, &MockCandidateIndex{}, &MockCache{})

	jobs.On("FindCandidate", mock.Anything, mock.Anything, mock.Anything).Return(nil, "", nil).Once()
	jobs.On("CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	jobs.On("FindCandidate", mock.Anything, mock.Anything, mock.Anything).Return(nil, "gone", nil).Once()

	_, err := svc.Submit(context.Background(), SearchRequest{Query: "pizza", SessionID: "s1"})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
}

func TestOrchestrator_SubmitSupersedesFailedJob(t *testing.T) {
	jobs := &MockJobStore{}
	classifier := &MockQueryClassifier{}
	places := &MockPlacesProvider{}
	candidates := &MockCandidateIndex{}
	cache := &MockCache{}
	svc := newTestOrchestrator(jobs, classifier, places, candidates, cache)

	failed := &entities.SearchJob{
		ID:        "failed-job",
		Status:    entities.JobStatusDoneFailed,
		CreatedAt: time.Now().Add(-time.Minute),
		UpdatedAt: time.Now().Add(-time.Minute),
	}
	jobs.On("FindCandidate", mock.Anything, mock.Anything, mock.Anything).Return(failed, failed.ID, nil)
	jobs.On("Replace", mock.Anything, mock.Anything, "failed-job", mock.Anything).Return(true, nil)

	// The background run is free to complete against permissive mocks.
	jobs.On("Update", mock.Anything, mock.Anything).Return(nil)
	classifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).Return(textSearchSignals(), nil)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("miss"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	places.On("TextSearch", mock.Anything, mock.Anything).Return(&providers.PlacesPage{}, nil)
	candidates.On("Clear", mock.Anything, mock.Anything).Return(nil)
	candidates.On("IndexBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	candidates.On("Filter", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*entities.Restaurant{}, nil)

	outcome, err := svc.Submit(context.Background(), SearchRequest{Query: "pizza", SessionID: "s1"})

	require.NoError(t, err)
	assert.False(t, outcome.Reused)
	assert.Equal(t, DedupReasonPreviousJobFailed, outcome.DedupReason)
	assert.NotEqual(t, "failed-job", outcome.Job.ID)
	jobs.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_SubmitRebindsDanglingKey(t *testing.T) {
	jobs := &MockJobStore{}
	classifier := &MockQueryClassifier{}
	places := &MockPlacesProvider{}
	candidates := &MockCandidateIndex{}
	cache := &MockCache{}
	svc := newTestOrchestrator(jobs, classifier, places, candidates, cache)

	// Key still bound to a job that aged out of the freshness window.
	jobs.On("FindCandidate", mock.Anything, mock.Anything, mock.Anything).Return(nil, "aged-out", nil)
	jobs.On("Replace", mock.Anything, mock.Anything, "aged-out", mock.Anything).Return(true, nil)

	jobs.On("Update", mock.Anything, mock.Anything).Return(nil)
	classifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).Return(textSearchSignals(), nil)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("miss"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	places.On("TextSearch", mock.Anything, mock.Anything).Return(&providers.PlacesPage{}, nil)
	candidates.On("Clear", mock.Anything, mock.Anything).Return(nil)
	candidates.On("IndexBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	candidates.On("Filter", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*entities.Restaurant{}, nil)

	outcome, err := svc.Submit(context.Background(), SearchRequest{Query: "pizza", SessionID: "s1"})

	require.NoError(t, err)
	assert.False(t, outcome.Reused)
	assert.Equal(t, DedupReasonNoCandidate, outcome.DedupReason)
	jobs.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_SubmitSameRequestSameKey(t *testing.T) {
	loc := &entities.Location{Latitude: 32.0853, Longitude: 34.7818}
	a := idempotencyKey(SearchRequest{Query: "  Pizza ", SessionID: "s1", UserLocation: loc})
	b := idempotencyKey(SearchRequest{Query: "pizza", SessionID: "s1", UserLocation: loc})
	c := idempotencyKey(SearchRequest{Query: "pizza", SessionID: "s2", UserLocation: loc})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

// deadlineJobStore refuses writes on an expired context, the way the real
// Redis store would surface context.DeadlineExceeded.
type deadlineJobStore struct {
	mu        sync.Mutex
	persisted []entities.JobStatus
}

func (s *deadlineJobStore) FindCandidate(ctx context.Context, key string, freshWindow time.Duration) (*entities.SearchJob, string, error) {
	return nil, "", nil
}

func (s *deadlineJobStore) CreateIfAbsent(ctx context.Context, job *entities.SearchJob, ttl time.Duration) (bool, error) {
	return true, nil
}

func (s *deadlineJobStore) Replace(ctx context.Context, job *entities.SearchJob, supersededJobID string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (s *deadlineJobStore) GetByID(ctx context.Context, id string) (*entities.SearchJob, error) {
	return nil, nil
}

func (s *deadlineJobStore) Update(ctx context.Context, job *entities.SearchJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisted = append(s.persisted, job.Status)
	return nil
}

func TestOrchestrator_RunPersistsFailureAfterPipelineTimeout(t *testing.T) {
	store := &deadlineJobStore{}
	cfg := testPipelineConfig()
	cfg.ExecutionTimeout = -time.Millisecond

	svc := NewSearchOrchestrator(OrchestratorDeps{Jobs: store}, cfg)

	job := &entities.SearchJob{ID: "job-t", SessionID: "s1", Status: entities.JobStatusPending}
	svc.run(job, SearchRequest{Query: "pizza", SessionID: "s1", Limit: 10}, DedupReasonNoCandidate)

	// The terminal transition must land even though the run context expired.
	assert.Equal(t, entities.JobStatusDoneFailed, job.Status)
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, []entities.JobStatus{entities.JobStatusDoneFailed}, store.persisted)
}

func TestOrchestrator_PublishFansOutToJobAndSessionChannels(t *testing.T) {
	bus := &MockEventBus{}
	svc := NewSearchOrchestrator(OrchestratorDeps{
		Jobs: &MockJobStore{},
		Bus:  bus,
	}, testPipelineConfig())

	job := &entities.SearchJob{ID: "job-9", SessionID: "s9"}
	bus.On("Publish", mock.Anything, providers.GetJobChannel("job-9"), mock.Anything).Return(nil).Once()
	bus.On("Publish", mock.Anything, providers.GetSessionChannel("s9"), mock.Anything).Return(nil).Once()

	svc.publish(context.Background(), job, entities.StageClassify, entities.PipelineEventStageStarted, nil)

	bus.AssertExpectations(t)
}

func TestOrchestrator_ExecuteFirstRequestFullPipeline(t *testing.T) {
	jobs := &MockJobStore{}
	classifier := &MockQueryClassifier{}
	places := &MockPlacesProvider{}
	candidates := &MockCandidateIndex{}
	cache := &MockCache{}
	svc := newTestOrchestrator(jobs, classifier, places, candidates, cache)

	pool := testRestaurants(5)

	jobs.On("Update", mock.Anything, mock.Anything).Return(nil)
	classifier.On("Classify", mock.Anything, "pizza", mock.Anything).Return(textSearchSignals(), nil)
	cache.On("Get", mock.Anything, "session_ctx:s1").Return(nil, errors.New("miss"))
	cache.On("Set", mock.Anything, "session_ctx:s1", mock.Anything, mock.Anything).Return(nil)
	places.On("TextSearch", mock.Anything, mock.Anything).Return(&providers.PlacesPage{Restaurants: pool}, nil)
	candidates.On("Clear", mock.Anything, "s1").Return(nil)
	candidates.On("IndexBatch", mock.Anything, "s1", pool).Return(nil)
	candidates.On("Filter", mock.Anything, "s1", mock.Anything, 10).Return(pool, nil)

	job := &entities.SearchJob{ID: "job-1", SessionID: "s1", Status: entities.JobStatusPending}
	req := SearchRequest{Query: "pizza", SessionID: "s1", Limit: 10}

	err := svc.execute(context.Background(), job, req, DedupReasonNoCandidate, time.Now())

	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusDoneSuccess, job.Status)
	require.NotNil(t, job.Result)
	assert.Len(t, job.Result.Restaurants, 5)
	assert.Len(t, job.Result.Scores, 5)
	assert.Equal(t, RequeryReasonFirstRequest, job.Result.Signals.RequeryReason)
	assert.Equal(t, "en", job.Result.Language)
	// Best-rated candidate first under the balanced weight baseline.
	assert.Equal(t, pool[4].ID, job.Result.Restaurants[0].ID)
}

func TestOrchestrator_ExecuteRelaxesOpenNowWhenPoolTooSmall(t *testing.T) {
	jobs := &MockJobStore{}
	classifier := &MockQueryClassifier{}
	places := &MockPlacesProvider{}
	candidates := &MockCandidateIndex{}
	cache := &MockCache{}
	svc := newTestOrchestrator(jobs, classifier, places, candidates, cache)

	signals := textSearchSignals()
	signals.OpenNowRequested = true

	strict := testRestaurants(1)
	relaxed := testRestaurants(5)

	jobs.On("Update", mock.Anything, mock.Anything).Return(nil)
	classifier.On("Classify", mock.Anything, "pizza open now", mock.Anything).Return(signals, nil)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("miss"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	places.On("TextSearch", mock.Anything, mock.Anything).Return(&providers.PlacesPage{Restaurants: relaxed}, nil)
	candidates.On("Clear", mock.Anything, mock.Anything).Return(nil)
	candidates.On("IndexBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	candidates.On("Filter", mock.Anything, "s1", mock.MatchedBy(func(f entities.FinalFilters) bool {
		return f.OpenState != nil
	}), 10).Return(strict, nil)
	candidates.On("Filter", mock.Anything, "s1", mock.MatchedBy(func(f entities.FinalFilters) bool {
		return f.OpenState == nil
	}), 10).Return(relaxed, nil)

	job := &entities.SearchJob{ID: "job-2", SessionID: "s1", Status: entities.JobStatusPending}
	req := SearchRequest{Query: "pizza open now", SessionID: "s1", Limit: 10}

	err := svc.execute(context.Background(), job, req, DedupReasonNoCandidate, time.Now())

	require.NoError(t, err)
	require.NotNil(t, job.Result)
	assert.Equal(t, []string{RelaxFieldOpenState}, job.Result.Signals.RelaxSteps)
	assert.Len(t, job.Result.Restaurants, 5)
}

func TestOrchestrator_ExecuteClassifierFailure(t *testing.T) {
	jobs := &MockJobStore{}
	classifier := &MockQueryClassifier{}
	cache := &MockCache{}
	svc := newTestOrchestrator(jobs, classifier, &MockPlacesProvider{}, &MockCandidateIndex{}, cache)

	jobs.On("Update", mock.Anything, mock.Anything).Return(nil)
	classifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("upstream down"))
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("miss"))

	job := &entities.SearchJob{ID: "job-3", SessionID: "s1", Status: entities.JobStatusPending}

	err := svc.execute(context.Background(), job, SearchRequest{Query: "pizza", SessionID: "s1", Limit: 10}, DedupReasonNoCandidate, time.Now())

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
}

func TestOrchestrator_ExecuteNearbyRouteUsesNearbySearch(t *testing.T) {
	jobs := &MockJobStore{}
	classifier := &MockQueryClassifier{}
	places := &MockPlacesProvider{}
	candidates := &MockCandidateIndex{}
	cache := &MockCache{}
	svc := newTestOrchestrator(jobs, classifier, places, candidates, cache)

	signals := textSearchSignals()
	signals.Route = entities.RouteNearby
	pool := testRestaurants(4)

	jobs.On("Update", mock.Anything, mock.Anything).Return(nil)
	classifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).Return(signals, nil)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("miss"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	places.On("NearbySearch", mock.Anything, mock.Anything).Return(&providers.PlacesPage{Restaurants: pool}, nil)
	candidates.On("Clear", mock.Anything, mock.Anything).Return(nil)
	candidates.On("IndexBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	candidates.On("Filter", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(pool, nil)

	job := &entities.SearchJob{ID: "job-4", SessionID: "s1", Status: entities.JobStatusPending}
	req := SearchRequest{
		Query:        "restaurants near me",
		SessionID:    "s1",
		UserLocation: &entities.Location{Latitude: 32.0853, Longitude: 34.7818},
		Limit:        10,
	}

	err := svc.execute(context.Background(), job, req, DedupReasonNoCandidate, time.Now())

	require.NoError(t, err)
	places.AssertCalled(t, "NearbySearch", mock.Anything, mock.Anything)
	places.AssertNotCalled(t, "TextSearch", mock.Anything, mock.Anything)
}
