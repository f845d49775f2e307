package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"Yatra-App/internal/domain/helper"
	"Yatra-App/internal/domain/model"
	"Yatra-App/internal/domain/repository"
	"Yatra-App/internal/domain/service"
	"Yatra-App/internal/logger"
	"Yatra-App/internal/metrics"
	repoImpl "Yatra-App/internal/repository"
)

// errSchedulerDetached は既に切り離されたスケジューラのtickを無視するためのエラー
var errSchedulerDetached = errors.New("スケジューラは切り離されています")

type TourUseCase interface {
	// StartTour は候補POIを読み込んで新しいツアーセッションを開始する
	StartTour(ctx context.Context, req *model.StartTourRequest) (*model.TourSnapshotResponse, error)
	GetTour(ctx context.Context, sessionID string) (*model.TourSnapshotResponse, error)

	// RestartTour はIdleのセッションを読み込み済みの候補で再び開始する
	RestartTour(ctx context.Context, sessionID string, req *model.RestartTourRequest) (*model.TourSnapshotResponse, error)

	// Advance は最も近い未訪問POIへ進む。候補が無くなった場合はComplete
	Advance(ctx context.Context, sessionID string) (*model.TourSnapshotResponse, error)
	Pause(ctx context.Context, sessionID string) (*model.TourSnapshotResponse, error)
	Resume(ctx context.Context, sessionID string) (*model.TourSnapshotResponse, error)
	Reset(ctx context.Context, sessionID string) (*model.TourSnapshotResponse, error)

	// EndTour はセッションを削除し自動進行を止める
	EndTour(ctx context.Context, sessionID string) error

	// Shutdown は全ての自動進行を停止する
	Shutdown()
}

// sessionEntry はセッション単位のロックと自動進行スケジューラ
// schedulerはmuを持っている間だけ読み書きする
type sessionEntry struct {
	mu        sync.Mutex
	refs      int
	scheduler *service.TourScheduler
}

// detach はスケジューラを切り離して返す。停止はロックの外で行う
func (e *sessionEntry) detach() *service.TourScheduler {
	s := e.scheduler
	e.scheduler = nil
	return s
}

// tourUseCaseImpl はTourUseCaseの実装
// 同じセッションへの操作はsessionEntryのロックで直列化する
type tourUseCaseImpl struct {
	poisRepo     repository.POIsRepository
	sessionsRepo repository.TourSessionsRepository
	controller   service.TourController
	interval     time.Duration
	newTicker    service.TickerFactory

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewTourUseCase は新しいTourUseCaseインスタンスを作成
// newTickerがnilの場合はtime.Tickerを使用する
func NewTourUseCase(
	poisRepo repository.POIsRepository,
	sessionsRepo repository.TourSessionsRepository,
	controller service.TourController,
	interval time.Duration,
	newTicker service.TickerFactory,
) TourUseCase {
	ctx, cancel := context.WithCancel(context.Background())
	return &tourUseCaseImpl{
		poisRepo:     poisRepo,
		sessionsRepo: sessionsRepo,
		controller:   controller,
		interval:     interval,
		newTicker:    newTicker,
		baseCtx:      ctx,
		cancel:       cancel,
		sessions:     make(map[string]*sessionEntry),
	}
}

func (u *tourUseCaseImpl) StartTour(ctx context.Context, req *model.StartTourRequest) (*model.TourSnapshotResponse, error) {
	if req == nil || req.Origin == nil || !req.Origin.IsValid() {
		return nil, fmt.Errorf("%w: 開始地点の座標が無効です", ErrInvalidRequest)
	}
	if req.RadiusKm < 0 {
		return nil, fmt.Errorf("%w: radius_kmは0以上で指定してください", ErrInvalidRequest)
	}

	candidates, err := u.loadCandidates(ctx, req)
	if err != nil {
		return nil, err
	}

	session := model.TourSession{
		ID:          fmt.Sprintf("tour_%s", uuid.New().String()),
		State:       model.TourStateIdle,
		Candidates:  candidates,
		AutoAdvance: req.AutoAdvance,
	}

	started, err := u.controller.Start(session, *req.Origin, req.StartPOIID)
	if err != nil {
		return nil, err
	}

	e := u.acquire(started.ID)
	defer u.release(started.ID, e)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := u.sessionsRepo.Save(ctx, &started); err != nil {
		return nil, fmt.Errorf("ツアーセッションの保存に失敗: %w", err)
	}

	metrics.TourSessionsStartedTotal.Inc()
	logger.L().Infof("🚀 ツアー開始: %s (候補 %d件, 自動進行: %v)", started.ID, len(candidates), started.AutoAdvance)

	if started.AutoAdvance {
		u.attachScheduler(e, started.ID)
	}
	return started.ToResponse(), nil
}

// loadCandidates はツアーの候補POIを読み込む。半径が0の場合はカテゴリのみで絞り込む
func (u *tourUseCaseImpl) loadCandidates(ctx context.Context, req *model.StartTourRequest) ([]*model.POI, error) {
	if req.RadiusKm == 0 {
		candidates, err := u.poisRepo.FindByCategories(ctx, req.Categories)
		if err != nil {
			return nil, fmt.Errorf("候補POIの取得に失敗: %w", err)
		}
		return candidates, nil
	}

	bound := repoImpl.BoundAroundPoint(*req.Origin, req.RadiusKm)
	candidates, err := u.poisRepo.FindWithinBound(ctx, bound, req.Categories)
	if err != nil {
		return nil, fmt.Errorf("候補POIの取得に失敗: %w", err)
	}
	return helper.FilterWithinRadius(*req.Origin, req.RadiusKm, candidates), nil
}

func (u *tourUseCaseImpl) GetTour(ctx context.Context, sessionID string) (*model.TourSnapshotResponse, error) {
	session, err := u.sessionsRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.ToResponse(), nil
}

func (u *tourUseCaseImpl) RestartTour(ctx context.Context, sessionID string, req *model.RestartTourRequest) (*model.TourSnapshotResponse, error) {
	if req == nil || req.Origin == nil || !req.Origin.IsValid() {
		return nil, fmt.Errorf("%w: 開始地点の座標が無効です", ErrInvalidRequest)
	}

	next, retired, err := u.transition(ctx, sessionID, nil,
		func(session model.TourSession) (model.TourSession, error) {
			return u.controller.Start(session, *req.Origin, req.StartPOIID)
		},
		func(e *sessionEntry, next *model.TourSession) *service.TourScheduler {
			if next.AutoAdvance {
				u.attachScheduler(e, sessionID)
			}
			return nil
		})
	stopRetired(retired)
	if err != nil {
		return nil, err
	}

	metrics.TourSessionsStartedTotal.Inc()
	logger.L().Infof("🚀 ツアー再開始: %s", sessionID)
	return next.ToResponse(), nil
}

func (u *tourUseCaseImpl) Advance(ctx context.Context, sessionID string) (*model.TourSnapshotResponse, error) {
	next, retired, err := u.transition(ctx, sessionID, nil, u.advanceSession,
		func(e *sessionEntry, next *model.TourSession) *service.TourScheduler {
			if next.State == model.TourStateComplete {
				return e.detach()
			}
			return nil
		})
	stopRetired(retired)
	if err != nil {
		return nil, err
	}
	return next.ToResponse(), nil
}

// advanceSession は1ステップ進めて結果をメトリクスとログに残す
func (u *tourUseCaseImpl) advanceSession(session model.TourSession) (model.TourSession, error) {
	next, err := u.controller.Advance(session)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTourTransition) {
			metrics.TourAdvancesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		}
		return next, err
	}

	if next.State == model.TourStateComplete {
		metrics.TourAdvancesTotal.WithLabelValues(metrics.OutcomeComplete).Inc()
		logger.L().Infof("🏁 ツアー完了: %s (%dスポット)", next.ID, len(next.VisitOrder))
	} else {
		metrics.TourAdvancesTotal.WithLabelValues(metrics.OutcomeMoved).Inc()
		logger.L().Infof("➡️ ツアー進行: %s → %s (%dステップ目)", next.ID, next.Current.Name, next.Steps)
	}
	return next, nil
}

func (u *tourUseCaseImpl) Pause(ctx context.Context, sessionID string) (*model.TourSnapshotResponse, error) {
	next, retired, err := u.transition(ctx, sessionID, nil, u.controller.Pause,
		func(e *sessionEntry, _ *model.TourSession) *service.TourScheduler {
			return e.detach()
		})
	stopRetired(retired)
	if err != nil {
		return nil, err
	}
	logger.L().Infof("⏸️ ツアー一時停止: %s", sessionID)
	return next.ToResponse(), nil
}

func (u *tourUseCaseImpl) Resume(ctx context.Context, sessionID string) (*model.TourSnapshotResponse, error) {
	next, retired, err := u.transition(ctx, sessionID, nil, u.controller.Resume,
		func(e *sessionEntry, next *model.TourSession) *service.TourScheduler {
			if next.AutoAdvance {
				u.attachScheduler(e, sessionID)
			}
			return nil
		})
	stopRetired(retired)
	if err != nil {
		return nil, err
	}
	logger.L().Infof("▶️ ツアー再開: %s", sessionID)
	return next.ToResponse(), nil
}

func (u *tourUseCaseImpl) Reset(ctx context.Context, sessionID string) (*model.TourSnapshotResponse, error) {
	next, retired, err := u.transition(ctx, sessionID, nil,
		func(session model.TourSession) (model.TourSession, error) {
			return u.controller.Reset(session), nil
		},
		func(e *sessionEntry, _ *model.TourSession) *service.TourScheduler {
			return e.detach()
		})
	stopRetired(retired)
	if err != nil {
		return nil, err
	}
	logger.L().Infof("🔄 ツアーリセット: %s", sessionID)
	return next.ToResponse(), nil
}

func (u *tourUseCaseImpl) EndTour(ctx context.Context, sessionID string) error {
	e := u.acquire(sessionID)
	defer u.release(sessionID, e)

	retired, err := func() (*service.TourScheduler, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		if _, err := u.sessionsRepo.Get(ctx, sessionID); err != nil {
			return e.detach(), err
		}
		if err := u.sessionsRepo.Delete(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("ツアーセッションの削除に失敗: %w", err)
		}
		return e.detach(), nil
	}()
	stopRetired(retired)
	if err != nil {
		return err
	}

	logger.L().Infof("🗑️ ツアー終了: %s", sessionID)
	return nil
}

func (u *tourUseCaseImpl) Shutdown() {
	u.cancel()

	u.mu.Lock()
	ids := make([]string, 0, len(u.sessions))
	for id := range u.sessions {
		ids = append(ids, id)
	}
	u.mu.Unlock()

	stopped := 0
	for _, id := range ids {
		e := u.acquire(id)
		e.mu.Lock()
		retired := e.detach()
		e.mu.Unlock()
		u.release(id, e)

		if retired != nil {
			retired.Stop()
			stopped++
		}
	}
	logger.L().Infof("🛑 %d件のツアー自動進行を停止しました", stopped)
}

// transition はセッションのロックを取り、読み込み・遷移・保存を行う
// guardは読み込み前にロックを持った状態で呼ばれ、エラーの場合は何もしない
// settleは保存に成功した後もロックを持ったまま呼ばれ、切り離したスケジューラを返す
// 返されたスケジューラの停止は呼び出し側がロックの外で行う
func (u *tourUseCaseImpl) transition(
	ctx context.Context,
	sessionID string,
	guard func(e *sessionEntry) error,
	apply func(model.TourSession) (model.TourSession, error),
	settle func(e *sessionEntry, next *model.TourSession) *service.TourScheduler,
) (*model.TourSession, *service.TourScheduler, error) {
	e := u.acquire(sessionID)
	defer u.release(sessionID, e)
	e.mu.Lock()
	defer e.mu.Unlock()

	if guard != nil {
		if err := guard(e); err != nil {
			return nil, nil, err
		}
	}

	current, err := u.sessionsRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrTourSessionNotFound) {
			// 期限切れで消えたセッションの自動進行も止める
			return nil, e.detach(), err
		}
		return nil, nil, err
	}

	next, err := apply(*current)
	if err != nil {
		return nil, nil, err
	}
	if err := u.sessionsRepo.Save(ctx, &next); err != nil {
		return nil, nil, fmt.Errorf("ツアーセッションの保存に失敗: %w", err)
	}

	var retired *service.TourScheduler
	if settle != nil {
		retired = settle(e, &next)
	}
	return &next, retired, nil
}

// acquire はセッションのエントリを参照カウント付きで取得する
func (u *tourUseCaseImpl) acquire(sessionID string) *sessionEntry {
	u.mu.Lock()
	defer u.mu.Unlock()
	e, ok := u.sessions[sessionID]
	if !ok {
		e = &sessionEntry{}
		u.sessions[sessionID] = e
	}
	e.refs++
	return e
}

// release は参照を返し、誰も使っておらずスケジューラも無いエントリを削除する
// refsが0のエントリのschedulerは他に触る者がいないためu.muだけで読める
func (u *tourUseCaseImpl) release(sessionID string, e *sessionEntry) {
	u.mu.Lock()
	defer u.mu.Unlock()
	e.refs--
	if e.refs == 0 && e.scheduler == nil {
		delete(u.sessions, sessionID)
	}
}

// attachScheduler はセッションの自動進行を開始する（実行中の場合は何もしない）
// e.muを持った状態で呼ぶ
func (u *tourUseCaseImpl) attachScheduler(e *sessionEntry, sessionID string) {
	if e.scheduler != nil || u.baseCtx.Err() != nil {
		return
	}

	var scheduler *service.TourScheduler
	scheduler = service.NewTourScheduler(u.interval, u.newTicker, func(ctx context.Context) bool {
		return u.autoAdvance(ctx, sessionID, scheduler)
	})
	e.scheduler = scheduler
	scheduler.Start(u.baseCtx)
}

// autoAdvance はスケジューラが一定間隔で実行する進行処理
// Flying以外になった場合やエラーの場合はfalseを返してスケジューラを止める
// タスク内からはStopを呼ばない（終了待ちでデッドロックするため）
func (u *tourUseCaseImpl) autoAdvance(ctx context.Context, sessionID string, self *service.TourScheduler) bool {
	next, _, err := u.transition(ctx, sessionID,
		func(e *sessionEntry) error {
			if e.scheduler != self {
				return errSchedulerDetached
			}
			return nil
		},
		u.advanceSession,
		func(e *sessionEntry, next *model.TourSession) *service.TourScheduler {
			if next.State != model.TourStateFlying {
				return e.detach()
			}
			return nil
		})
	if err != nil {
		if errors.Is(err, errSchedulerDetached) {
			return false
		}
		u.detachIfCurrent(sessionID, self)
		if !errors.Is(err, service.ErrInvalidTourTransition) && ctx.Err() == nil {
			logger.L().Errorf("❌ ツアー自動進行に失敗: %s: %v", sessionID, err)
		}
		return false
	}
	return next.State == model.TourStateFlying
}

// detachIfCurrent はselfがまだ登録されていれば切り離す
func (u *tourUseCaseImpl) detachIfCurrent(sessionID string, self *service.TourScheduler) {
	e := u.acquire(sessionID)
	e.mu.Lock()
	if e.scheduler == self {
		e.scheduler = nil
	}
	e.mu.Unlock()
	u.release(sessionID, e)
}

// stopRetired は切り離したスケジューラを停止し、実行中のtickの終了を待つ
func stopRetired(s *service.TourScheduler) {
	if s != nil {
		s.Stop()
	}
}
