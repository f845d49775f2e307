package repository

import (
	"context"
	"errors"

	"github.com/paulmach/orb"

	"Yatra-App/internal/domain/model"
)

// ErrPOINotFound は指定IDのPOIが存在しないことを表す
var ErrPOINotFound = errors.New("POIが見つかりません")

type POIsRepository interface {
	GetByID(ctx context.Context, id string) (*model.POI, error)
	FindAll(ctx context.Context) ([]*model.POI, error)
	// categoriesが空の場合は全カテゴリが対象
	FindByCategories(ctx context.Context, categories []string) ([]*model.POI, error)
	// 矩形範囲による粗い絞り込み。半径による厳密な判定は呼び出し側で行う
	FindWithinBound(ctx context.Context, bound orb.Bound, categories []string) ([]*model.POI, error)
}
