package repository

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geo"

	"Yatra-App/internal/domain/model"
)

// boundPadding 境界ボックスに持たせる余裕（約111m）
const boundPadding = 0.001

// GeoPointToOrb model.GeoPoint を orb.Point（[lng, lat]）に変換
func GeoPointToOrb(p model.GeoPoint) orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// BoundAroundPoint 中心から半径radiusKmを覆う境界ボックスを作成
// 緯度は[-90, 90]に収め、日付変更線をまたぐ場合は経度方向を全範囲にする
// geo.NewBoundAroundPointは経度を折り返すため、幅は中心からの差で求め直す
func BoundAroundPoint(center model.GeoPoint, radiusKm float64) orb.Bound {
	bound := geo.NewBoundAroundPoint(GeoPointToOrb(center), radiusKm*1000)

	minLat := math.Max(bound.Min.Lat()-boundPadding, -90)
	maxLat := math.Min(bound.Max.Lat()+boundPadding, 90)

	deltaLng := math.Abs(center.Longitude - bound.Min.Lon())
	if deltaLng > 180 {
		deltaLng = 360 - deltaLng
	}
	deltaLng += boundPadding
	minLng := center.Longitude - deltaLng
	maxLng := center.Longitude + deltaLng

	if math.IsNaN(minLng) || math.IsNaN(maxLng) || math.IsNaN(minLat) || math.IsNaN(maxLat) ||
		minLng <= -180 || maxLng >= 180 || minLat <= -90 || maxLat >= 90 {
		minLng, maxLng = -180, 180
	}

	return orb.Bound{
		Min: orb.Point{minLng, minLat},
		Max: orb.Point{maxLng, maxLat},
	}
}

// BoundToWKT 境界ボックスをPostGISに渡すWKTのPOLYGONに変換
func BoundToWKT(bound orb.Bound) string {
	return wkt.MarshalString(bound.ToPolygon())
}

// BoundContains POIの座標が境界ボックス内にあるか（座標が無効な場合はfalse）
func BoundContains(bound orb.Bound, poi *model.POI) bool {
	point, ok := poi.Point()
	if !ok {
		return false
	}
	return bound.Contains(GeoPointToOrb(point))
}

// POIRow DBのpoisテーブル1行分（locationはGeoJSON）
type POIRow struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Location  *model.Geometry `json:"location"`
	Category  string          `json:"category"`
	Rate      float64         `json:"rate"`
	MediaURLs []string        `json:"media_urls"`
}

// ToPOI POIRowをmodel.POIに変換
func (r *POIRow) ToPOI() *model.POI {
	return &model.POI{
		ID:        r.ID,
		Name:      r.Name,
		Location:  r.Location.ToGeoPoint(),
		Category:  r.Category,
		Rate:      r.Rate,
		MediaURLs: r.MediaURLs,
	}
}

// decodePOIRows PostgRESTのレスポンスをPOIのスライスに変換
func decodePOIRows(data []byte) ([]*model.POI, error) {
	var rows []POIRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("POIデータのJSONアンマーシャル失敗: %w", err)
	}

	pois := make([]*model.POI, 0, len(rows))
	for i := range rows {
		pois = append(pois, rows[i].ToPOI())
	}
	return pois, nil
}
