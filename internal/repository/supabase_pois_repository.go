package repository

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"Yatra-App/internal/domain/model"
	"Yatra-App/internal/domain/repository"
	"Yatra-App/internal/infrastructure/database"
	"Yatra-App/internal/logger"
)

const poisColumns = "id,name,location,category,rate,media_urls"

type SupabasePOIsRepository struct {
	client *database.SupabaseClient
}

func NewSupabasePOIsRepository(client *database.SupabaseClient) repository.POIsRepository {
	return &SupabasePOIsRepository{
		client: client,
	}
}

func (r *SupabasePOIsRepository) GetByID(ctx context.Context, id string) (*model.POI, error) {
	data, count, err := r.client.GetClient().From("pois").Select(poisColumns, "exact", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("POIデータの取得失敗: %w", err)
	}
	logger.L().Debugf("🔍 POI取得: %s (%d件)", id, count)

	pois, err := decodePOIRows(data)
	if err != nil {
		return nil, err
	}
	if len(pois) == 0 {
		return nil, fmt.Errorf("POI ID %s: %w", id, repository.ErrPOINotFound)
	}

	return pois[0], nil
}

func (r *SupabasePOIsRepository) FindAll(ctx context.Context) ([]*model.POI, error) {
	data, count, err := r.client.GetClient().From("pois").Select(poisColumns, "exact", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("POIデータの取得失敗: %w", err)
	}
	logger.L().Debugf("🔍 全POI取得: %d件", count)

	return decodePOIRows(data)
}

func (r *SupabasePOIsRepository) FindByCategories(ctx context.Context, categories []string) ([]*model.POI, error) {
	if len(categories) == 0 {
		return r.FindAll(ctx)
	}

	// 複数カテゴリのORクエリを作成
	data, count, err := r.client.GetClient().From("pois").
		Select(poisColumns, "exact", false).
		In("category", categories).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("カテゴリ別POIデータの取得失敗: %w", err)
	}
	logger.L().Debugf("🔍 カテゴリ別POI取得: %v (%d件)", categories, count)

	return decodePOIRows(data)
}

func (r *SupabasePOIsRepository) FindWithinBound(ctx context.Context, bound orb.Bound, categories []string) ([]*model.POI, error) {
	wktString := BoundToWKT(bound)

	// PostGIS ST_Intersects関数を使用して境界ボックス内のPOIを検索
	query := r.client.GetClient().From("pois").
		Select(poisColumns, "exact", false).
		Filter("location", "st_intersects", fmt.Sprintf("ST_GeomFromText('%s', 4326)", wktString))
	if len(categories) > 0 {
		query = query.In("category", categories)
	}

	data, count, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("境界ボックス検索エラー: %w", err)
	}

	pois, err := decodePOIRows(data)
	if err != nil {
		return nil, err
	}

	// 座標の無いPOIや範囲外のPOIを除外
	result := make([]*model.POI, 0, len(pois))
	for _, poi := range pois {
		if BoundContains(bound, poi) {
			result = append(result, poi)
		}
	}

	logger.L().Debugf("🔍 境界ボックス検索: %d件 (該当 %d件)", count, len(result))
	return result, nil
}
