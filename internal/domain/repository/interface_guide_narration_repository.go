package repository

import (
	"Yatra-App/internal/domain/model"
	"context"
)

// GuideNarrationRepository はPOIの案内文生成の責務を持つリポジトリインターフェース
type GuideNarrationRepository interface {
	// GenerateNarration はタイトルと案内文を生成する。fallbackはAPI失敗時の定型文かどうか
	GenerateNarration(ctx context.Context, poi *model.POI) (title, body string, fallback bool, err error)
}
