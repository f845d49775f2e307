package service

import (
	"Yatra-App/internal/domain/helper"
	"Yatra-App/internal/domain/model"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTourTransition は現在の状態では実行できない操作を表す
var ErrInvalidTourTransition = errors.New("この状態では実行できない操作です")

// TourController はツアーガイドモードの状態遷移を担う
// 全ての操作は受け取ったセッションを変更せず、新しいスナップショットを返す
type TourController interface {
	// Start は Idle から Flying へ遷移する。startPOIIDが候補に含まれる場合は訪問済みにする
	Start(session model.TourSession, origin model.GeoPoint, startPOIID string) (model.TourSession, error)
	// Advance は最も近い未訪問POIへ進む。候補が無ければ Complete へ遷移する
	Advance(session model.TourSession) (model.TourSession, error)
	Pause(session model.TourSession) (model.TourSession, error)
	Resume(session model.TourSession) (model.TourSession, error)
	// Reset はどの状態からでも Idle に戻し、訪問履歴を消去する
	Reset(session model.TourSession) model.TourSession
}

type tourController struct {
	now func() time.Time
}

// NewTourController は新しいTourControllerインスタンスを作成
func NewTourController() TourController {
	return &tourController{now: time.Now}
}

// NewTourControllerWithClock は時刻取得関数を指定してTourControllerを作成（テスト用）
func NewTourControllerWithClock(now func() time.Time) TourController {
	return &tourController{now: now}
}

func (c *tourController) Start(session model.TourSession, origin model.GeoPoint, startPOIID string) (model.TourSession, error) {
	if session.State != model.TourStateIdle && session.State != "" {
		return session, fmt.Errorf("%w: %s からは開始できません", ErrInvalidTourTransition, session.State)
	}
	if !origin.IsValid() {
		return session, fmt.Errorf("開始地点の座標が無効です: (%f, %f)", origin.Latitude, origin.Longitude)
	}

	next := session
	next.State = model.TourStateFlying
	next.Origin = &origin
	next.Current = nil
	next.Visited = model.NewVisitedSet()
	next.VisitOrder = []string{}
	next.Steps = 0

	if startPOIID != "" {
		if start := helper.FindByID(session.Candidates, startPOIID); start != nil {
			next.Current = start
			next.Visited = next.Visited.Add(start.ID)
			next.VisitOrder = append(next.VisitOrder, start.ID)
		}
	}
	next.UpdatedAt = c.now()
	return next, nil
}

func (c *tourController) Advance(session model.TourSession) (model.TourSession, error) {
	if session.State != model.TourStateFlying {
		return session, fmt.Errorf("%w: %s では進めません", ErrInvalidTourTransition, session.State)
	}
	if session.Origin == nil {
		return session, fmt.Errorf("%w: 基準地点が設定されていません", ErrInvalidTourTransition)
	}

	next := session
	next.UpdatedAt = c.now()

	poi, ok := helper.NearestUnvisited(*session.Origin, session.Candidates, session.Visited)
	if !ok {
		next.State = model.TourStateComplete
		return next, nil
	}

	point, _ := poi.Point()
	next.Origin = &point
	next.Current = poi
	next.Visited = session.Visited.Add(poi.ID)
	order := make([]string, 0, len(session.VisitOrder)+1)
	order = append(order, session.VisitOrder...)
	next.VisitOrder = append(order, poi.ID)
	next.Steps = session.Steps + 1
	return next, nil
}

func (c *tourController) Pause(session model.TourSession) (model.TourSession, error) {
	if session.State != model.TourStateFlying {
		return session, fmt.Errorf("%w: %s では一時停止できません", ErrInvalidTourTransition, session.State)
	}
	next := session
	next.State = model.TourStatePaused
	next.UpdatedAt = c.now()
	return next, nil
}

func (c *tourController) Resume(session model.TourSession) (model.TourSession, error) {
	if session.State != model.TourStatePaused {
		return session, fmt.Errorf("%w: %s では再開できません", ErrInvalidTourTransition, session.State)
	}
	next := session
	next.State = model.TourStateFlying
	next.UpdatedAt = c.now()
	return next, nil
}

func (c *tourController) Reset(session model.TourSession) model.TourSession {
	next := session
	next.State = model.TourStateIdle
	next.Origin = nil
	next.Current = nil
	next.Visited = model.NewVisitedSet()
	next.VisitOrder = []string{}
	next.Steps = 0
	next.UpdatedAt = c.now()
	return next
}
