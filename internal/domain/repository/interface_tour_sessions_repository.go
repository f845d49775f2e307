package repository

import (
	"context"
	"errors"

	"Yatra-App/internal/domain/model"
)

// ErrTourSessionNotFound はツアーセッションが存在しない（または期限切れ）ことを表す
var ErrTourSessionNotFound = errors.New("ツアーセッションが見つかりません")

type TourSessionsRepository interface {
	Save(ctx context.Context, session *model.TourSession) error
	Get(ctx context.Context, sessionID string) (*model.TourSession, error)
	Delete(ctx context.Context, sessionID string) error
}
