package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Yatra-App/internal/domain/model"
	"Yatra-App/internal/domain/repository"
	"Yatra-App/internal/domain/service"
	repoImpl "Yatra-App/internal/repository"
)

var kolkataOrigin = model.GeoPoint{Latitude: 22.5726, Longitude: 88.3639}

func newTestTourUseCase(pois []*model.POI, recorder *tickerRecorder) *tourUseCaseImpl {
	var factory service.TickerFactory
	if recorder != nil {
		factory = recorder.factory
	}
	uc := NewTourUseCase(
		&fakePOIsRepository{pois: pois},
		repoImpl.NewMemoryTourSessionRepository(2),
		service.NewTourController(),
		time.Second,
		factory,
	)
	return uc.(*tourUseCaseImpl)
}

func (u *tourUseCaseImpl) schedulerRunning(sessionID string) bool {
	e := u.acquire(sessionID)
	e.mu.Lock()
	s := e.scheduler
	e.mu.Unlock()
	u.release(sessionID, e)
	return s != nil && s.Running()
}

// entryCount は保持しているセッションエントリの数
func (u *tourUseCaseImpl) entryCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.sessions)
}

func TestTourUseCase_ManualTour(t *testing.T) {
	ctx := context.Background()
	uc := newTestTourUseCase(kolkataPOIs(), nil)
	defer uc.Shutdown()

	started, err := uc.StartTour(ctx, &model.StartTourRequest{Origin: &kolkataOrigin, StartPOIID: "A"})
	require.NoError(t, err)
	assert.Equal(t, model.TourStateFlying, started.State)
	assert.Equal(t, []string{"A"}, started.VisitedIDs)
	// 座標の無いDも候補には含まれる
	assert.Equal(t, 3, started.Remaining)
	assert.False(t, uc.schedulerRunning(started.SessionID))

	snap, err := uc.Advance(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "B", snap.CurrentPOI.ID)

	snap, err = uc.Advance(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "C", snap.CurrentPOI.ID)

	// 座標の無いDには進まずCompleteになる
	snap, err = uc.Advance(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.TourStateComplete, snap.State)
	assert.Equal(t, []string{"A", "B", "C"}, snap.VisitOrder)
	assert.Zero(t, uc.entryCount())

	_, err = uc.Advance(ctx, started.SessionID)
	assert.ErrorIs(t, err, service.ErrInvalidTourTransition)
	assert.Zero(t, uc.entryCount())

	got, err := uc.GetTour(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.TourStateComplete, got.State)
	assert.Equal(t, 2, got.Steps)
}

func TestTourUseCase_StartTour(t *testing.T) {
	ctx := context.Background()

	t.Run("半径を指定すると候補を絞り込む", func(t *testing.T) {
		uc := newTestTourUseCase(kolkataPOIs(), nil)
		defer uc.Shutdown()

		started, err := uc.StartTour(ctx, &model.StartTourRequest{Origin: &kolkataOrigin, RadiusKm: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, started.Remaining)
	})

	t.Run("カテゴリを指定すると候補を絞り込む", func(t *testing.T) {
		uc := newTestTourUseCase(kolkataPOIs(), nil)
		defer uc.Shutdown()

		started, err := uc.StartTour(ctx, &model.StartTourRequest{
			Origin:     &kolkataOrigin,
			Categories: []string{model.CategoryTerracotta},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, started.Remaining)
	})

	t.Run("不正なリクエスト", func(t *testing.T) {
		uc := newTestTourUseCase(kolkataPOIs(), nil)
		defer uc.Shutdown()

		_, err := uc.StartTour(ctx, &model.StartTourRequest{})
		assert.ErrorIs(t, err, ErrInvalidRequest)

		_, err = uc.StartTour(ctx, &model.StartTourRequest{Origin: &model.GeoPoint{Latitude: 200}})
		assert.ErrorIs(t, err, ErrInvalidRequest)

		_, err = uc.StartTour(ctx, &model.StartTourRequest{Origin: &kolkataOrigin, RadiusKm: -1})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("候補の取得に失敗した場合はエラー", func(t *testing.T) {
		uc := NewTourUseCase(&fakePOIsRepository{err: errors.New("db down")},
			repoImpl.NewMemoryTourSessionRepository(2), service.NewTourController(), time.Second, nil)
		defer uc.Shutdown()

		_, err := uc.StartTour(ctx, &model.StartTourRequest{Origin: &kolkataOrigin})
		assert.Error(t, err)
	})

	t.Run("存在しないセッション", func(t *testing.T) {
		uc := newTestTourUseCase(kolkataPOIs(), nil)
		defer uc.Shutdown()

		_, err := uc.GetTour(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrTourSessionNotFound)
		_, err = uc.Advance(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrTourSessionNotFound)
		_, err = uc.Pause(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrTourSessionNotFound)
		assert.Zero(t, uc.entryCount())
	})
}

func TestTourUseCase_AutoAdvance(t *testing.T) {
	ctx := context.Background()
	recorder := &tickerRecorder{}
	uc := newTestTourUseCase(kolkataPOIs(), recorder)
	defer uc.Shutdown()

	started, err := uc.StartTour(ctx, &model.StartTourRequest{Origin: &kolkataOrigin, StartPOIID: "A", AutoAdvance: true})
	require.NoError(t, err)
	id := started.SessionID
	require.True(t, uc.schedulerRunning(id))
	require.Equal(t, 1, recorder.count())

	stepsEventually := func(steps int) {
		t.Helper()
		assert.Eventually(t, func() bool {
			snap, err := uc.GetTour(ctx, id)
			return err == nil && snap.Steps == steps
		}, time.Second, 5*time.Millisecond)
	}

	// tickごとに1ステップ進む
	recorder.last().fire(t)
	stepsEventually(1)

	// 一時停止でスケジューラが止まる
	paused, err := uc.Pause(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.TourStatePaused, paused.State)
	assert.False(t, uc.schedulerRunning(id))
	assert.True(t, recorder.last().isStopped())

	// 再開で新しいTickerが作られる
	resumed, err := uc.Resume(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.TourStateFlying, resumed.State)
	assert.True(t, uc.schedulerRunning(id))
	assert.Equal(t, 2, recorder.count())

	recorder.last().fire(t)
	stepsEventually(2)

	// 最後のtickでCompleteになりスケジューラが止まる
	recorder.last().fire(t)
	assert.Eventually(t, func() bool { return !uc.schedulerRunning(id) }, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return uc.entryCount() == 0 }, time.Second, 5*time.Millisecond)

	snap, err := uc.GetTour(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.TourStateComplete, snap.State)
	assert.Equal(t, []string{"A", "B", "C"}, snap.VisitOrder)
}

func TestTourUseCase_ResetStopsScheduler(t *testing.T) {
	ctx := context.Background()
	recorder := &tickerRecorder{}
	uc := newTestTourUseCase(kolkataPOIs(), recorder)
	defer uc.Shutdown()

	started, err := uc.StartTour(ctx, &model.StartTourRequest{Origin: &kolkataOrigin, AutoAdvance: true})
	require.NoError(t, err)
	recorder.last().fire(t)

	reset, err := uc.Reset(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.TourStateIdle, reset.State)
	assert.Empty(t, reset.VisitedIDs)
	assert.Nil(t, reset.Origin)
	assert.False(t, uc.schedulerRunning(started.SessionID))
	assert.Zero(t, uc.entryCount())

	// Idleからは再開できない
	_, err = uc.Resume(ctx, started.SessionID)
	assert.ErrorIs(t, err, service.ErrInvalidTourTransition)
}

func TestTourUseCase_Shutdown(t *testing.T) {
	ctx := context.Background()
	recorder := &tickerRecorder{}
	uc := newTestTourUseCase(kolkataPOIs(), recorder)

	first, err := uc.StartTour(ctx, &model.StartTourRequest{Origin: &kolkataOrigin, AutoAdvance: true})
	require.NoError(t, err)
	second, err := uc.StartTour(ctx, &model.StartTourRequest{Origin: &kolkataOrigin, AutoAdvance: true})
	require.NoError(t, err)

	uc.Shutdown()
	assert.False(t, uc.schedulerRunning(first.SessionID))
	assert.False(t, uc.schedulerRunning(second.SessionID))

	// 停止後は自動進行を開始しない
	third, err := uc.StartTour(ctx, &model.StartTourRequest{Origin: &kolkataOrigin, AutoAdvance: true})
	require.NoError(t, err)
	assert.False(t, uc.schedulerRunning(third.SessionID))
}

func TestTourUseCase_RestartTour(t *testing.T) {
	ctx := context.Background()
	recorder := &tickerRecorder{}
	uc := newTestTourUseCase(kolkataPOIs(), recorder)
	defer uc.Shutdown()

	started, err := uc.StartTour(ctx, &model.StartTourRequest{Origin: &kolkataOrigin, AutoAdvance: true})
	require.NoError(t, err)
	id := started.SessionID

	// Flyingからは再開始できない
	_, err = uc.RestartTour(ctx, id, &model.RestartTourRequest{Origin: &kolkataOrigin})
	assert.ErrorIs(t, err, service.ErrInvalidTourTransition)

	_, err = uc.Reset(ctx, id)
	require.NoError(t, err)

	_, err = uc.RestartTour(ctx, id, &model.RestartTourRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	restarted, err := uc.RestartTour(ctx, id, &model.RestartTourRequest{Origin: &kolkataOrigin, StartPOIID: "B"})
	require.NoError(t, err)
	assert.Equal(t, model.TourStateFlying, restarted.State)
	assert.Equal(t, []string{"B"}, restarted.VisitedIDs)
	assert.True(t, uc.schedulerRunning(id))
	assert.Equal(t, 2, recorder.count())

	_, err = uc.RestartTour(ctx, "missing", &model.RestartTourRequest{Origin: &kolkataOrigin})
	assert.ErrorIs(t, err, repository.ErrTourSessionNotFound)
}

func TestTourUseCase_EndTour(t *testing.T) {
	ctx := context.Background()
	recorder := &tickerRecorder{}
	uc := newTestTourUseCase(kolkataPOIs(), recorder)
	defer uc.Shutdown()

	started, err := uc.StartTour(ctx, &model.StartTourRequest{Origin: &kolkataOrigin, AutoAdvance: true})
	require.NoError(t, err)
	id := started.SessionID
	require.True(t, uc.schedulerRunning(id))

	require.NoError(t, uc.EndTour(ctx, id))
	assert.True(t, recorder.last().isStopped())
	assert.Zero(t, uc.entryCount())

	_, err = uc.GetTour(ctx, id)
	assert.ErrorIs(t, err, repository.ErrTourSessionNotFound)
	assert.ErrorIs(t, uc.EndTour(ctx, id), repository.ErrTourSessionNotFound)
}

func TestTourUseCase_ConcurrentPauseResume(t *testing.T) {
	ctx := context.Background()
	recorder := &tickerRecorder{}
	uc := newTestTourUseCase(kolkataPOIs(), recorder)
	defer uc.Shutdown()

	started, err := uc.StartTour(ctx, &model.StartTourRequest{Origin: &kolkataOrigin, AutoAdvance: true})
	require.NoError(t, err)
	id := started.SessionID

	for i := 0; i < 200; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = uc.Pause(ctx, id)
		}()
		go func() {
			defer wg.Done()
			_, _ = uc.Resume(ctx, id)
		}()
		wg.Wait()

		// Flyingなら必ずスケジューラが動き、Pausedなら止まっている
		snap, err := uc.GetTour(ctx, id)
		require.NoError(t, err)
		require.Equal(t, snap.State == model.TourStateFlying, uc.schedulerRunning(id), "iteration %d state %s", i, snap.State)
	}
}
