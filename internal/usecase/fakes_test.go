package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"Yatra-App/internal/domain/model"
	"Yatra-App/internal/domain/repository"
	"Yatra-App/internal/domain/service"
	repoImpl "Yatra-App/internal/repository"
)

func kolkataPOIs() []*model.POI {
	return []*model.POI{
		{ID: "A", Name: "Victoria Memorial", Category: model.CategoryHeritage, Location: &model.GeoPoint{Latitude: 22.5726, Longitude: 88.3639}},
		{ID: "B", Name: "Kumartuli Workshop", Category: model.CategoryArtisanShop, Location: &model.GeoPoint{Latitude: 22.6, Longitude: 88.4}},
		{ID: "C", Name: "Bishnupur Terracotta", Category: model.CategoryTerracotta, Location: &model.GeoPoint{Latitude: 23.5, Longitude: 89.0}},
		{ID: "D", Name: "Unmapped Homestay", Category: model.CategoryHomestay},
	}
}

// fakePOIsRepository メモリ上のPOIを返すPOIsRepositoryのフェイク
type fakePOIsRepository struct {
	pois []*model.POI
	err  error

	mu         sync.Mutex
	lastBound  orb.Bound
	boundCalls int
}

func (f *fakePOIsRepository) GetByID(ctx context.Context, id string) (*model.POI, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.pois {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrPOINotFound
}

func (f *fakePOIsRepository) FindAll(ctx context.Context) ([]*model.POI, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pois, nil
}

func (f *fakePOIsRepository) FindByCategories(ctx context.Context, categories []string) ([]*model.POI, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []*model.POI
	for _, p := range f.pois {
		if len(categories) == 0 || contains(categories, p.Category) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakePOIsRepository) FindWithinBound(ctx context.Context, bound orb.Bound, categories []string) ([]*model.POI, error) {
	f.mu.Lock()
	f.lastBound = bound
	f.boundCalls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	var result []*model.POI
	for _, p := range f.pois {
		if repoImpl.BoundContains(bound, p) && (len(categories) == 0 || contains(categories, p.Category)) {
			result = append(result, p)
		}
	}
	return result, nil
}

// sharedSlicePOIsRepository 保持しているスライスをそのまま返すフェイク
type sharedSlicePOIsRepository struct {
	*fakePOIsRepository
	pois []*model.POI
}

func (f *sharedSlicePOIsRepository) FindWithinBound(ctx context.Context, bound orb.Bound, categories []string) ([]*model.POI, error) {
	return f.pois, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

type fakeNarrationRepository struct {
	calls int
}

func (f *fakeNarrationRepository) GenerateNarration(ctx context.Context, poi *model.POI) (string, string, bool, error) {
	f.calls++
	if poi.Name == "" {
		return "", "", false, errors.New("name required")
	}
	return poi.Name, "Guide text for " + poi.Name, false, nil
}

// manualTicker はテストから手動で発火させるTicker
type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *manualTicker) isStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func (m *manualTicker) fire(t *testing.T) {
	t.Helper()
	select {
	case m.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("tickが受け取られませんでした")
	}
}

// tickerRecorder 生成したmanualTickerを記録するTickerFactory
type tickerRecorder struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (r *tickerRecorder) factory(time.Duration) service.Ticker {
	ticker := &manualTicker{ch: make(chan time.Time)}
	r.mu.Lock()
	r.tickers = append(r.tickers, ticker)
	r.mu.Unlock()
	return ticker
}

func (r *tickerRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickers)
}

func (r *tickerRecorder) last() *manualTicker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickers[len(r.tickers)-1]
}
