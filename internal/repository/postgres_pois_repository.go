package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/paulmach/orb"

	"Yatra-App/internal/domain/model"
	"Yatra-App/internal/domain/repository"
	"Yatra-App/internal/infrastructure/database"
)

const postgresPOIColumns = `p.id, p.name, ST_AsGeoJSON(p.location) as location, p.category, p.rate, p.media_urls`

type PostgresPOIsRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresPOIsRepository(client *database.PostgreSQLClient) repository.POIsRepository {
	return &PostgresPOIsRepository{
		client: client,
	}
}

// POIResult SQLの結果を受け取るための構造体
type POIResult struct {
	ID        string
	Name      string
	Location  sql.NullString
	Category  sql.NullString
	Rate      sql.NullFloat64
	MediaURLs pq.StringArray
}

// ToPOI POIResultをmodel.POIに変換
func (pr *POIResult) ToPOI() (*model.POI, error) {
	poi := &model.POI{
		ID:        pr.ID,
		Name:      pr.Name,
		Category:  pr.Category.String,
		Rate:      pr.Rate.Float64,
		MediaURLs: []string(pr.MediaURLs),
	}

	if pr.Location.Valid && pr.Location.String != "" {
		var location model.Geometry
		if err := json.Unmarshal([]byte(pr.Location.String), &location); err != nil {
			return nil, fmt.Errorf("location GeoJSONパースエラー: %w", err)
		}
		poi.Location = location.ToGeoPoint()
	}

	return poi, nil
}

func (r *PostgresPOIsRepository) GetByID(ctx context.Context, id string) (*model.POI, error) {
	query := `SELECT ` + postgresPOIColumns + ` FROM pois p WHERE p.id = $1`

	row := r.client.DB.QueryRowContext(ctx, query, id)

	var result POIResult
	err := row.Scan(&result.ID, &result.Name, &result.Location, &result.Category, &result.Rate, &result.MediaURLs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("POI ID %s: %w", id, repository.ErrPOINotFound)
		}
		return nil, fmt.Errorf("POIデータの取得失敗: %w", err)
	}

	return result.ToPOI()
}

func (r *PostgresPOIsRepository) FindAll(ctx context.Context) ([]*model.POI, error) {
	query := `SELECT ` + postgresPOIColumns + ` FROM pois p ORDER BY p.id`
	return r.query(ctx, query)
}

func (r *PostgresPOIsRepository) FindByCategories(ctx context.Context, categories []string) ([]*model.POI, error) {
	if len(categories) == 0 {
		return r.FindAll(ctx)
	}

	query := `SELECT ` + postgresPOIColumns + ` FROM pois p WHERE p.category = ANY($1) ORDER BY p.id`
	return r.query(ctx, query, pq.Array(categories))
}

func (r *PostgresPOIsRepository) FindWithinBound(ctx context.Context, bound orb.Bound, categories []string) ([]*model.POI, error) {
	// nilはNULLとして送られるため空配列にする
	if categories == nil {
		categories = []string{}
	}
	query := `
		SELECT ` + postgresPOIColumns + `
		FROM pois p
		WHERE p.location IS NOT NULL
		AND ST_Intersects(p.location, ST_MakeEnvelope($1, $2, $3, $4, 4326))
		AND (cardinality($5::text[]) = 0 OR p.category = ANY($5))
		ORDER BY p.id
	`

	return r.query(ctx, query,
		bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon(), bound.Max.Lat(),
		pq.Array(categories))
}

func (r *PostgresPOIsRepository) query(ctx context.Context, query string, args ...any) ([]*model.POI, error) {
	rows, err := r.client.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("POI検索失敗: %w", err)
	}
	defer rows.Close()

	pois := []*model.POI{}
	for rows.Next() {
		var result POIResult
		err := rows.Scan(&result.ID, &result.Name, &result.Location, &result.Category, &result.Rate, &result.MediaURLs)
		if err != nil {
			return nil, fmt.Errorf("POIデータスキャンエラー: %w", err)
		}

		poi, err := result.ToPOI()
		if err != nil {
			return nil, err
		}
		pois = append(pois, poi)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("行イテレーション中のエラー: %w", err)
	}

	return pois, nil
}
