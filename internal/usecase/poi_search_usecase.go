package usecase

import (
	"context"
	"fmt"
	"time"

	"Yatra-App/internal/domain/helper"
	"Yatra-App/internal/domain/model"
	"Yatra-App/internal/domain/repository"
	"Yatra-App/internal/logger"
	"Yatra-App/internal/metrics"
	repoImpl "Yatra-App/internal/repository"
)

type POISearchUseCase interface {
	// SearchNearby は基準点から指定半径内のPOIを距離付きで返す
	SearchNearby(ctx context.Context, req *model.NearbySearchRequest) (*model.NearbySearchResponse, error)

	GetPOI(ctx context.Context, id string) (*model.POI, error)

	// GetNarration はPOIのガイド文を生成する
	GetNarration(ctx context.Context, id string) (*model.NarrationResponse, error)
}

type poiSearchUseCaseImpl struct {
	poisRepo      repository.POIsRepository
	narrationRepo repository.GuideNarrationRepository
}

// NewPOISearchUseCase は新しいPOISearchUseCaseインスタンスを作成
func NewPOISearchUseCase(poisRepo repository.POIsRepository, narrationRepo repository.GuideNarrationRepository) POISearchUseCase {
	return &poiSearchUseCaseImpl{
		poisRepo:      poisRepo,
		narrationRepo: narrationRepo,
	}
}

func (u *poiSearchUseCaseImpl) SearchNearby(ctx context.Context, req *model.NearbySearchRequest) (*model.NearbySearchResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: 検索条件がありません", ErrInvalidRequest)
	}
	if !req.Origin.IsValid() {
		return nil, fmt.Errorf("%w: 基準点の座標が無効です (%f, %f)", ErrInvalidRequest, req.Origin.Latitude, req.Origin.Longitude)
	}
	if !req.RadiusKm.IsValid() {
		return nil, fmt.Errorf("%w: 未対応の検索半径です: %v", ErrInvalidRequest, float64(req.RadiusKm))
	}

	start := time.Now()
	metrics.NearbySearchesTotal.Inc()
	defer func() {
		metrics.NearbySearchDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
	}()

	radiusKm := req.RadiusKm.Kilometers()
	bound := repoImpl.BoundAroundPoint(req.Origin, radiusKm)

	candidates, err := u.poisRepo.FindWithinBound(ctx, bound, req.Categories)
	if err != nil {
		return nil, fmt.Errorf("周辺POIの取得に失敗: %w", err)
	}

	if req.SortByDistance {
		// リポジトリのスライスは並べ替えずにコピーを使う
		sorted := make([]*model.POI, len(candidates))
		copy(sorted, candidates)
		helper.SortByDistanceFromLocation(req.Origin, sorted)
		candidates = sorted
	}
	pois := helper.FilterWithinRadiusWithDistance(req.Origin, radiusKm, candidates)
	if len(pois) == 0 {
		metrics.NearbyEmptyResultsTotal.Inc()
	}

	logger.L().Infof("📍 周辺検索: (%.5f, %.5f) 半径%.1fkm 候補%d件 → %d件",
		req.Origin.Latitude, req.Origin.Longitude, radiusKm, len(candidates), len(pois))

	return &model.NearbySearchResponse{
		Origin:   req.Origin,
		RadiusKm: radiusKm,
		Count:    len(pois),
		POIs:     pois,
	}, nil
}

func (u *poiSearchUseCaseImpl) GetPOI(ctx context.Context, id string) (*model.POI, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: POI IDが空です", ErrInvalidRequest)
	}
	return u.poisRepo.GetByID(ctx, id)
}

func (u *poiSearchUseCaseImpl) GetNarration(ctx context.Context, id string) (*model.NarrationResponse, error) {
	poi, err := u.GetPOI(ctx, id)
	if err != nil {
		return nil, err
	}

	title, body, fallback, err := u.narrationRepo.GenerateNarration(ctx, poi)
	if err != nil {
		return nil, fmt.Errorf("案内文の生成に失敗: %w", err)
	}

	return &model.NarrationResponse{
		POIID:    poi.ID,
		Title:    title,
		Body:     body,
		Fallback: fallback,
	}, nil
}
