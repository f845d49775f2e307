package model

import "math"

// GeoPoint 緯度経度を表す基本的な型
type GeoPoint struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

// IsValid 緯度経度が有効範囲内かつNaNでないかチェック
func (g GeoPoint) IsValid() bool {
	if math.IsNaN(g.Latitude) || math.IsNaN(g.Longitude) {
		return false
	}
	return g.Latitude >= -90 && g.Latitude <= 90 &&
		g.Longitude >= -180 && g.Longitude <= 180
}

// ToGeometry GeoPoint を PostGIS GEOMETRY 型に変換
func (g GeoPoint) ToGeometry() *Geometry {
	return &Geometry{
		Type:        "Point",
		Coordinates: []float64{g.Longitude, g.Latitude},
	}
}

// Geometry PostGIS GEOMETRY型に対応する構造体
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude]
}

// ToGeoPoint GeoJSONのPointをGeoPointに変換（座標が欠けている場合はnil）
func (g *Geometry) ToGeoPoint() *GeoPoint {
	if g == nil || len(g.Coordinates) < 2 {
		return nil
	}
	return &GeoPoint{
		Latitude:  g.Coordinates[1],
		Longitude: g.Coordinates[0],
	}
}

// POI Point of Interest（ホテル、工房、観光地など）を表すモデル
type POI struct {
	ID        string    `json:"id" db:"id"`                           // ユニークなスポットID
	Name      string    `json:"name" db:"name"`                       // 表示名
	Location  *GeoPoint `json:"location" db:"location"`               // 位置情報（NULLの場合あり）
	Category  string    `json:"category" db:"category"`               // カテゴリタグ
	Rate      float64   `json:"rate" db:"rate"`                       // 評価値
	MediaURLs []string  `json:"media_urls,omitempty" db:"media_urls"` // 画像などのメディア参照
}

// Point POIの位置情報を返す。座標が無い、または無効な場合はfalse
func (p *POI) Point() (GeoPoint, bool) {
	if p == nil || p.Location == nil || !p.Location.IsValid() {
		return GeoPoint{}, false
	}
	return *p.Location, true
}

// POIWithDistance 検索結果として基準点からの距離を付与したPOI
type POIWithDistance struct {
	*POI
	DistanceKm float64 `json:"distance_km"`
}
