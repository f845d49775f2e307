package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"Yatra-App/internal/domain/model"
	"Yatra-App/internal/domain/repository"
	"Yatra-App/internal/logger"
)

const tourSessionsCollection = "tourSessions"

// FirestoreTourSessionRepository Firestoreを使用したツアーセッションリポジトリ
// ドキュメントのexpireAtをTTLポリシーに設定して期限切れセッションを削除する
type FirestoreTourSessionRepository struct {
	client   *firestore.Client
	ttlHours int
}

// NewFirestoreTourSessionRepository 新しいFirestoreTourSessionRepositoryインスタンスを作成
func NewFirestoreTourSessionRepository(client *firestore.Client, ttlHours int) repository.TourSessionsRepository {
	return &FirestoreTourSessionRepository{
		client:   client,
		ttlHours: ttlHours,
	}
}

// Save セッションのスナップショットを保存する（既存のドキュメントは上書き）
func (r *FirestoreTourSessionRepository) Save(ctx context.Context, session *model.TourSession) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("セッションIDが空です")
	}

	firestoreData := session.ToFirestoreTourSession(r.ttlHours)
	if _, err := r.client.Collection(tourSessionsCollection).Doc(session.ID).Set(ctx, firestoreData); err != nil {
		logger.L().Errorf("❌ Failed to save tour session %s: %v", session.ID, err)
		return fmt.Errorf("ツアーセッションの保存に失敗しました: %w", err)
	}

	logger.L().Debugf("✅ Tour session saved: %s (state: %s)", session.ID, session.State)
	return nil
}

// Get 指定IDのセッションを取得する
func (r *FirestoreTourSessionRepository) Get(ctx context.Context, sessionID string) (*model.TourSession, error) {
	doc, err := r.client.Collection(tourSessionsCollection).Doc(sessionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s（有効期限切れまたは無効なID）: %w", sessionID, repository.ErrTourSessionNotFound)
		}
		return nil, fmt.Errorf("ツアーセッションの取得に失敗しました: %w", err)
	}

	var firestoreData model.FirestoreTourSession
	if err := doc.DataTo(&firestoreData); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}

	// TTLによる削除は即時ではないため期限を確認する
	if !firestoreData.ExpireAt.IsZero() && time.Now().After(firestoreData.ExpireAt) {
		return nil, fmt.Errorf("%s（有効期限切れ）: %w", sessionID, repository.ErrTourSessionNotFound)
	}

	return firestoreData.ToTourSession(sessionID), nil
}

func (r *FirestoreTourSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.client.Collection(tourSessionsCollection).Doc(sessionID).Delete(ctx); err != nil {
		return fmt.Errorf("ツアーセッションの削除に失敗しました: %w", err)
	}
	return nil
}
