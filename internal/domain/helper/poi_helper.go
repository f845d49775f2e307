package helper

import (
	"Yatra-App/internal/domain/model"
	"math"
	"sort"
)

const earthRadiusKm = 6371.0

// DistanceKm は2地点間の大円距離をハバーサイン公式で計算する (km)
func DistanceKm(a, b model.GeoPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// 浮動小数点誤差でhが1をわずかに超えるとasinがNaNになる
	if h > 1 {
		h = 1
	}
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// DistancePOI は基準点からPOIまでの距離を計算する (km)
// POIの座標が欠けている、または無効な場合はfalse
func DistancePOI(origin model.GeoPoint, poi *model.POI) (float64, bool) {
	point, ok := poi.Point()
	if !ok {
		return 0, false
	}
	return DistanceKm(origin, point), true
}

// FilterWithinRadius は基準点から半径radiusKm以内のPOIを入力順のまま抽出する
// 座標が無効なPOIは除外する
func FilterWithinRadius(origin model.GeoPoint, radiusKm float64, candidates []*model.POI) []*model.POI {
	filtered := make([]*model.POI, 0, len(candidates))
	for _, c := range candidates {
		d, ok := DistancePOI(origin, c)
		if !ok {
			continue
		}
		if d <= radiusKm {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// FilterWithinRadiusWithDistance はFilterWithinRadiusと同じ条件で距離付きの結果を返す
func FilterWithinRadiusWithDistance(origin model.GeoPoint, radiusKm float64, candidates []*model.POI) []model.POIWithDistance {
	results := make([]model.POIWithDistance, 0, len(candidates))
	for _, c := range candidates {
		d, ok := DistancePOI(origin, c)
		if !ok || d > radiusKm {
			continue
		}
		results = append(results, model.POIWithDistance{POI: c, DistanceKm: d})
	}
	return results
}

// NearestUnvisited は未訪問のPOIの中で基準点に最も近いものを返す
// 同じ距離の場合は入力順で先に出現したものを優先する
// 未訪問の候補が無い場合はfalse（ツアー完了）
func NearestUnvisited(origin model.GeoPoint, candidates []*model.POI, visited model.VisitedSet) (*model.POI, bool) {
	var nearest *model.POI
	minDistance := math.Inf(1)
	for _, c := range candidates {
		if c == nil || visited.Contains(c.ID) {
			continue
		}
		d, ok := DistancePOI(origin, c)
		if !ok {
			continue
		}
		if d < minDistance {
			minDistance = d
			nearest = c
		}
	}
	return nearest, nearest != nil
}

// FilterByCategory は指定されたカテゴリのPOIのみを抽出する
// categoriesが空の場合はそのまま返す
func FilterByCategory(pois []*model.POI, categories []string) []*model.POI {
	if len(categories) == 0 {
		return pois
	}
	catSet := make(map[string]struct{})
	for _, c := range categories {
		catSet[c] = struct{}{}
	}
	var filtered []*model.POI
	for _, p := range pois {
		if p == nil {
			continue
		}
		if _, ok := catSet[p.Category]; ok {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// FindByID はスライスから指定IDのPOIを探す
func FindByID(pois []*model.POI, id string) *model.POI {
	for _, p := range pois {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// SortByDistanceFromLocation は基準座標からの距離でPOIスライスを安定ソートする
// 座標が無効なPOIは末尾に回す
func SortByDistanceFromLocation(origin model.GeoPoint, targets []*model.POI) {
	distance := func(p *model.POI) float64 {
		d, ok := DistancePOI(origin, p)
		if !ok {
			return math.Inf(1)
		}
		return d
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return distance(targets[i]) < distance(targets[j])
	})
}
