package repository

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Yatra-App/internal/domain/helper"
	"Yatra-App/internal/domain/model"
)

func poiAt(id string, lat, lng float64) *model.POI {
	return &model.POI{ID: id, Name: id, Location: &model.GeoPoint{Latitude: lat, Longitude: lng}}
}

func TestBoundAroundPoint(t *testing.T) {
	kolkata := model.GeoPoint{Latitude: 22.5726, Longitude: 88.3639}

	t.Run("半径内のPOIを含み遠方のPOIを含まない", func(t *testing.T) {
		bound := BoundAroundPoint(kolkata, 5)

		assert.True(t, BoundContains(bound, poiAt("A", 22.5726, 88.3639)))
		assert.True(t, BoundContains(bound, poiAt("B", 22.6, 88.4)))
		assert.False(t, BoundContains(bound, poiAt("C", 23.5, 89.0)))
		assert.Less(t, bound.Max.Lat()-bound.Min.Lat(), 0.2)
	})

	t.Run("日付変更線付近では経度を全範囲にする", func(t *testing.T) {
		bound := BoundAroundPoint(model.GeoPoint{Latitude: 0, Longitude: 179.99}, 10)
		assert.Equal(t, -180.0, bound.Min.Lon())
		assert.Equal(t, 180.0, bound.Max.Lon())
		assert.True(t, BoundContains(bound, poiAt("east", 0, -179.99)))
	})

	t.Run("日付変更線の両側のPOIを取りこぼさない", func(t *testing.T) {
		west := poiAt("west", -17, 179.985)
		east := poiAt("east", -17, -179.995)

		for _, lng := range []float64{179.99, -179.99} {
			origin := model.GeoPoint{Latitude: -17, Longitude: lng}
			bound := BoundAroundPoint(origin, 5)

			assert.LessOrEqual(t, bound.Min.Lon(), bound.Max.Lon())
			assert.True(t, BoundContains(bound, west), "origin lng %v", lng)
			assert.True(t, BoundContains(bound, east), "origin lng %v", lng)
			assert.Len(t, helper.FilterWithinRadius(origin, 5, []*model.POI{west, east}), 2)
		}
	})

	t.Run("日付変更線に近くても半径が届かなければ絞り込む", func(t *testing.T) {
		bound := BoundAroundPoint(model.GeoPoint{Latitude: -17, Longitude: 179.5}, 5)
		assert.Less(t, bound.Max.Lon(), 180.0)
		assert.Greater(t, bound.Min.Lon(), 179.4)
		assert.True(t, BoundContains(bound, poiAt("near", -17, 179.52)))
		assert.False(t, BoundContains(bound, poiAt("other-side", -17, -179.99)))
	})

	t.Run("極付近では緯度を丸めて経度を全範囲にする", func(t *testing.T) {
		bound := BoundAroundPoint(model.GeoPoint{Latitude: 89.99, Longitude: 10}, 10)
		assert.Equal(t, 90.0, bound.Max.Lat())
		assert.Equal(t, -180.0, bound.Min.Lon())
		assert.Equal(t, 180.0, bound.Max.Lon())
	})
}

func TestBoundContains_InvalidLocation(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

	assert.False(t, BoundContains(bound, &model.POI{ID: "no-location"}))
	assert.False(t, BoundContains(bound, poiAt("out-of-range", 91, 0)))
	assert.False(t, BoundContains(bound, nil))
}

func TestBoundToWKT(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{88, 22}, Max: orb.Point{89, 23}}
	s := BoundToWKT(bound)
	assert.True(t, strings.HasPrefix(s, "POLYGON(("))

	polygon, err := wkt.UnmarshalPolygon(s)
	require.NoError(t, err)
	assert.Equal(t, bound, polygon.Bound())
}

func TestGeoPointOrbConversion(t *testing.T) {
	p := model.GeoPoint{Latitude: 22.5726, Longitude: 88.3639}
	point := GeoPointToOrb(p)

	assert.Equal(t, 88.3639, point.Lon())
	assert.Equal(t, 22.5726, point.Lat())
}

func TestDecodePOIRows(t *testing.T) {
	data := []byte(`[
		{"id":"1","name":"Kumartuli","location":{"type":"Point","coordinates":[88.36,22.6]},"category":"artisan_shop","rate":4.5,"media_urls":["https://example.com/k.jpg"]},
		{"id":"2","name":"No Location","location":null,"category":"cafe","rate":3}
	]`)

	pois, err := decodePOIRows(data)
	require.NoError(t, err)
	require.Len(t, pois, 2)

	require.NotNil(t, pois[0].Location)
	assert.Equal(t, 22.6, pois[0].Location.Latitude)
	assert.Equal(t, 88.36, pois[0].Location.Longitude)
	assert.Equal(t, "artisan_shop", pois[0].Category)
	assert.Equal(t, []string{"https://example.com/k.jpg"}, pois[0].MediaURLs)

	assert.Nil(t, pois[1].Location)
	assert.Empty(t, pois[1].MediaURLs)

	_, err = decodePOIRows([]byte(`{invalid`))
	assert.Error(t, err)
}

func TestPOIResult_ToPOI(t *testing.T) {
	result := POIResult{ID: "1", Name: "Dakshineswar"}
	result.Location.String = `{"type":"Point","coordinates":[88.3577,22.6547]}`
	result.Location.Valid = true
	result.Category.String = "temple"
	result.Category.Valid = true

	poi, err := result.ToPOI()
	require.NoError(t, err)
	require.NotNil(t, poi.Location)
	assert.Equal(t, 22.6547, poi.Location.Latitude)
	assert.Equal(t, "temple", poi.Category)

	result.Location.Valid = false
	poi, err = result.ToPOI()
	require.NoError(t, err)
	assert.Nil(t, poi.Location)

	result.Location = sql.NullString{String: `not-json`, Valid: true}
	_, err = result.ToPOI()
	assert.Error(t, err)
}
