package analyses

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tire-backend/internal/shared/cache"
	"tire-backend/internal/shared/metrics"
	"tire-backend/internal/tires"
	"tire-backend/internal/tires/engine"
	"tire-backend/internal/vision"
)

var testNow = time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

type fakeResolver struct {
	err   error
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, imageURL string) (vision.Image, error) {
	f.calls++
	if f.err != nil {
		return vision.Image{}, f.err
	}
	return vision.Image{URL: imageURL}, nil
}

type fakeVision struct {
	signal tires.VisionSignal
	err    error
	calls  int
}

func (f *fakeVision) Analyze(context.Context, vision.Image) (tires.VisionSignal, error) {
	f.calls++
	return f.signal, f.err
}

type countingCache struct {
	*cache.LRU
	mu     sync.Mutex
	clears int
	hits   int
}

func (c *countingCache) Clear() {
	c.mu.Lock()
	c.clears++
	c.mu.Unlock()
	c.LRU.Clear()
}

func (c *countingCache) Get(key string) ([]byte, bool) {
	v, ok := c.LRU.Get(key)
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
	}
	return v, ok
}

type failingRepo struct{ *MemoryRepo }

func (failingRepo) Create(context.Context, Analysis) error { return errors.New("db down") }

type testEnv struct {
	svc      *Service
	repo     *MemoryRepo
	resolver *fakeResolver
	vision   *fakeVision
	cache    *countingCache
	registry *prometheus.Registry
}

func crackedTireSignal() tires.VisionSignal {
	return tires.VisionSignal{
		Tags: []tires.Tag{
			{Name: "tire", Confidence: 0.97},
			{Name: "crack", Confidence: 0.9},
		},
		Caption: &tires.Caption{Text: "a close up of a black tire", Confidence: 0.8},
	}
}

func newTestEnv(t *testing.T, signal tires.VisionSignal) *testEnv {
	t.Helper()
	reg := prometheus.NewRegistry()
	env := &testEnv{
		repo:     NewMemoryRepo(),
		resolver: &fakeResolver{},
		vision:   &fakeVision{signal: signal},
		cache:    &countingCache{LRU: cache.NewLRU(8, time.Minute)},
		registry: reg,
	}
	env.svc = &Service{
		Repo:    env.repo,
		Images:  env.resolver,
		Vision:  env.vision,
		Engine:  engine.New(nil, engine.WithClock(func() time.Time { return testNow })),
		Cache:   env.cache,
		Metrics: metrics.MustNewMetrics(reg),
		Now:     func() time.Time { return testNow },
	}
	return env
}

func (e *testEnv) counter(t *testing.T, name string) float64 {
	t.Helper()
	families, err := e.registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func validRequest() Request {
	return Request{
		ImageURL: "store://owner/photo.jpg",
		FormData: FormData{
			TireType:       "summer",
			Brand:          "Michelin",
			Model:          "Primacy 4",
			Size:           "205/55 R16",
			ProductionYear: 2014,
			Mileage:        "120.000",
		},
	}
}
