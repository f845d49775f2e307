package service

import (
	"context"
	"sync"
	"time"
)

// DefaultTourInterval は自動で次のPOIへ進む間隔
const DefaultTourInterval = 7 * time.Second

// Ticker は一定間隔で通知するタイマーの抽象化
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory は指定間隔のTickerを生成する
type TickerFactory func(interval time.Duration) Ticker

type timeTicker struct {
	ticker *time.Ticker
}

func (t *timeTicker) C() <-chan time.Time { return t.ticker.C }
func (t *timeTicker) Stop()               { t.ticker.Stop() }

// NewTimeTicker はtime.Tickerを使ったTickerを生成する
func NewTimeTicker(interval time.Duration) Ticker {
	return &timeTicker{ticker: time.NewTicker(interval)}
}

// TourTask はスケジューラが毎回実行する処理。continueRunningがfalseの場合はスケジューラを停止する
type TourTask func(ctx context.Context) (continueRunning bool)

// TourScheduler は単一の繰り返しタスクを実行するスケジューラ
// Stopを呼ぶかタスクがfalseを返すまで、間隔ごとにタスクを実行する
type TourScheduler struct {
	interval  time.Duration
	newTicker TickerFactory
	task      TourTask

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewTourScheduler は新しいTourSchedulerインスタンスを作成
func NewTourScheduler(interval time.Duration, newTicker TickerFactory, task TourTask) *TourScheduler {
	if interval <= 0 {
		interval = DefaultTourInterval
	}
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	return &TourScheduler{
		interval:  interval,
		newTicker: newTicker,
		task:      task,
	}
}

// Start はバックグラウンドでタスクの定期実行を開始する。既に実行中の場合は何もしない
func (s *TourScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	ticker := s.newTicker(s.interval)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.running = true

	go func() {
		defer close(done)
		defer ticker.Stop()
		defer s.markStopped(done)
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C():
				if !s.task(runCtx) {
					return
				}
			}
		}
	}()
}

// Stop はタスクの定期実行を止め、実行中のタスクの終了を待つ
func (s *TourScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running はスケジューラが実行中かどうか
func (s *TourScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// markStopped は終了したループが現在のループであれば状態をリセットする
func (s *TourScheduler) markStopped(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == done {
		s.running = false
		s.cancel = nil
	}
}
