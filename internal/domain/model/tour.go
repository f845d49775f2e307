package model

import (
	"sort"
	"time"
)

// TourState はツアーガイドモードの状態
type TourState string

const (
	TourStateIdle     TourState = "idle"
	TourStateFlying   TourState = "flying"
	TourStatePaused   TourState = "paused"
	TourStateComplete TourState = "complete"
)

// VisitedSet はツアー中に表示済みのPOI IDの集合
// 値は不変で、Addは新しい集合を返す
type VisitedSet struct {
	ids map[string]struct{}
}

// NewVisitedSet は指定IDを含むVisitedSetを作成する
func NewVisitedSet(ids ...string) VisitedSet {
	set := VisitedSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

// Contains はIDが訪問済みかどうかを判定する
func (v VisitedSet) Contains(id string) bool {
	_, ok := v.ids[id]
	return ok
}

// Add はIDを追加した新しいVisitedSetを返す（元の集合は変更しない）
func (v VisitedSet) Add(id string) VisitedSet {
	next := VisitedSet{ids: make(map[string]struct{}, len(v.ids)+1)}
	for k := range v.ids {
		next.ids[k] = struct{}{}
	}
	next.ids[id] = struct{}{}
	return next
}

// Len は訪問済みIDの数を返す
func (v VisitedSet) Len() int {
	return len(v.ids)
}

// IDs は訪問済みIDをソートして返す
func (v VisitedSet) IDs() []string {
	ids := make([]string, 0, len(v.ids))
	for id := range v.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TourSession はツアーセッションのスナップショット
// TourControllerは常に新しいスナップショットを返し、既存の値は書き換えない
type TourSession struct {
	ID          string     `json:"session_id"`
	State       TourState  `json:"state"`
	Origin      *GeoPoint  `json:"origin"`
	Current     *POI       `json:"current_poi"`
	Visited     VisitedSet `json:"-"`
	VisitOrder  []string   `json:"visit_order"` // 訪問した順のPOI ID
	Candidates  []*POI     `json:"-"`           // セッション開始時に読み込んだ候補（変更しない）
	Steps       int        `json:"steps"`
	AutoAdvance bool       `json:"auto_advance"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Remaining はまだ訪問していない候補の数を返す
func (s *TourSession) Remaining() int {
	remaining := 0
	for _, c := range s.Candidates {
		if c != nil && !s.Visited.Contains(c.ID) {
			remaining++
		}
	}
	return remaining
}

// IsTerminal はこれ以上自動で進まない状態かどうか
func (s *TourSession) IsTerminal() bool {
	return s.State == TourStateComplete || s.State == TourStateIdle
}

// TourSnapshotResponse はツアーAPIのレスポンス
type TourSnapshotResponse struct {
	SessionID   string    `json:"session_id"`
	State       TourState `json:"state"`
	Origin      *GeoPoint `json:"origin"`
	CurrentPOI  *POI      `json:"current_poi"`
	VisitedIDs  []string  `json:"visited_ids"`
	VisitOrder  []string  `json:"visit_order"`
	Remaining   int       `json:"remaining"`
	Steps       int       `json:"steps"`
	AutoAdvance bool      `json:"auto_advance"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToResponse はスナップショットをレスポンス形式に変換する
func (s *TourSession) ToResponse() *TourSnapshotResponse {
	order := s.VisitOrder
	if order == nil {
		order = []string{}
	}
	return &TourSnapshotResponse{
		SessionID:   s.ID,
		State:       s.State,
		Origin:      s.Origin,
		CurrentPOI:  s.Current,
		VisitedIDs:  s.Visited.IDs(),
		VisitOrder:  order,
		Remaining:   s.Remaining(),
		Steps:       s.Steps,
		AutoAdvance: s.AutoAdvance,
		UpdatedAt:   s.UpdatedAt,
	}
}

// StartTourRequest はツアー開始リクエスト
type StartTourRequest struct {
	Origin      *GeoPoint `json:"origin"`
	StartPOIID  string    `json:"start_poi_id"`
	Categories  []string  `json:"categories"`
	RadiusKm    float64   `json:"radius_km"`    // 0の場合は全候補が対象
	AutoAdvance bool      `json:"auto_advance"` // trueの場合サーバー側で一定間隔ごとに進める
}

// RestartTourRequest はリセット済みセッションを再開始するリクエスト
// 候補POIはStartTour時に読み込んだものを使う
type RestartTourRequest struct {
	Origin     *GeoPoint `json:"origin"`
	StartPOIID string    `json:"start_poi_id"`
}

// NearbySearchRequest は周辺検索の条件
type NearbySearchRequest struct {
	Origin     GeoPoint
	RadiusKm   RadiusSetting
	Categories []string

	// SortByDistance がtrueの場合は近い順に並べる（falseは取得順）
	SortByDistance bool
}

// NearbySearchResponse は周辺検索のレスポンス
type NearbySearchResponse struct {
	Origin   GeoPoint          `json:"origin"`
	RadiusKm float64           `json:"radius_km"`
	Count    int               `json:"count"`
	POIs     []POIWithDistance `json:"pois"`
}

// NarrationResponse はPOI案内文のレスポンス
type NarrationResponse struct {
	POIID    string `json:"poi_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Fallback bool   `json:"fallback"`
}

// FirestoreTourSession はFirestoreに保存するツアーセッションのドキュメント
type FirestoreTourSession struct {
	State       string         `firestore:"state"`
	Origin      *GeoPoint      `firestore:"origin"`
	CurrentID   string         `firestore:"current_poi_id"`
	VisitedIDs  []string       `firestore:"visited_ids"`
	VisitOrder  []string       `firestore:"visit_order"`
	Candidates  []FirestorePOI `firestore:"candidates"`
	Steps       int            `firestore:"steps"`
	AutoAdvance bool           `firestore:"auto_advance"`
	UpdatedAt   time.Time      `firestore:"updated_at"`
	ExpireAt    time.Time      `firestore:"expireAt"`
}

// FirestorePOI はセッションドキュメント内のPOI情報
type FirestorePOI struct {
	ID        string    `firestore:"id"`
	Name      string    `firestore:"name"`
	Location  *GeoPoint `firestore:"location"`
	Category  string    `firestore:"category"`
	Rate      float64   `firestore:"rate"`
	MediaURLs []string  `firestore:"media_urls"`
}

// ToFirestoreTourSession はセッションをFirestore用の構造体に変換する
func (s *TourSession) ToFirestoreTourSession(ttlHours int) *FirestoreTourSession {
	candidates := make([]FirestorePOI, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		if c == nil {
			continue
		}
		candidates = append(candidates, FirestorePOI{
			ID:        c.ID,
			Name:      c.Name,
			Location:  c.Location,
			Category:  c.Category,
			Rate:      c.Rate,
			MediaURLs: c.MediaURLs,
		})
	}

	currentID := ""
	if s.Current != nil {
		currentID = s.Current.ID
	}

	return &FirestoreTourSession{
		State:       string(s.State),
		Origin:      s.Origin,
		CurrentID:   currentID,
		VisitedIDs:  s.Visited.IDs(),
		VisitOrder:  s.VisitOrder,
		Candidates:  candidates,
		Steps:       s.Steps,
		AutoAdvance: s.AutoAdvance,
		UpdatedAt:   s.UpdatedAt,
		ExpireAt:    s.UpdatedAt.Add(time.Duration(ttlHours) * time.Hour),
	}
}

// ToTourSession はFirestoreのドキュメントをセッションに戻す
func (f *FirestoreTourSession) ToTourSession(sessionID string) *TourSession {
	candidates := make([]*POI, 0, len(f.Candidates))
	var current *POI
	for _, c := range f.Candidates {
		poi := &POI{
			ID:        c.ID,
			Name:      c.Name,
			Location:  c.Location,
			Category:  c.Category,
			Rate:      c.Rate,
			MediaURLs: c.MediaURLs,
		}
		if poi.ID == f.CurrentID {
			current = poi
		}
		candidates = append(candidates, poi)
	}

	return &TourSession{
		ID:          sessionID,
		State:       TourState(f.State),
		Origin:      f.Origin,
		Current:     current,
		Visited:     NewVisitedSet(f.VisitedIDs...),
		VisitOrder:  f.VisitOrder,
		Candidates:  candidates,
		Steps:       f.Steps,
		AutoAdvance: f.AutoAdvance,
		UpdatedAt:   f.UpdatedAt,
	}
}
