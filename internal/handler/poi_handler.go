package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"Yatra-App/internal/domain/model"
	"Yatra-App/internal/usecase"
)

// POIHandler はPOI検索APIのハンドラー
type POIHandler struct {
	searchUseCase usecase.POISearchUseCase
}

// NewPOIHandler は新しいPOIHandlerインスタンスを作成
func NewPOIHandler(searchUseCase usecase.POISearchUseCase) *POIHandler {
	return &POIHandler{
		searchUseCase: searchUseCase,
	}
}

// GetNearbyPOIs は基準点から指定半径内のPOIを返すエンドポイント
// GET /api/pois/nearby?lat=22.5726&lng=88.3639&radius_km=1&category=hotel,cafe
func (h *POIHandler) GetNearbyPOIs(c *gin.Context) {
	req, err := h.parseNearbyQuery(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	response, err := h.searchUseCase.SearchNearby(c.Request.Context(), req)
	if err != nil {
		respondUseCaseError(c, "周辺POIの検索に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// parseNearbyQuery はクエリパラメータを検索条件に変換する
func (h *POIHandler) parseNearbyQuery(c *gin.Context) (*model.NearbySearchRequest, error) {
	lat, err := parseFloatQuery(c, "lat")
	if err != nil {
		return nil, err
	}
	lng, err := parseFloatQuery(c, "lng")
	if err != nil {
		return nil, err
	}

	origin := model.GeoPoint{Latitude: lat, Longitude: lng}
	if lat < -90 || lat > 90 {
		return nil, &ValidationError{Field: "lat", Message: "緯度は-90から90の範囲で指定してください"}
	}
	if lng < -180 || lng > 180 {
		return nil, &ValidationError{Field: "lng", Message: "経度は-180から180の範囲で指定してください"}
	}

	radius := model.Radius1km
	if c.Query("radius_km") != "" {
		r, err := parseFloatQuery(c, "radius_km")
		if err != nil {
			return nil, err
		}
		radius = model.RadiusSetting(r)
		if !radius.IsValid() {
			return nil, &ValidationError{Field: "radius_km", Message: "radius_kmは0.3, 1, 2, 3, 5のいずれかを指定してください"}
		}
	}

	categories, err := parseCategories(c.Query("category"))
	if err != nil {
		return nil, err
	}

	sortBy := c.Query("sort")
	if sortBy != "" && sortBy != "distance" {
		return nil, &ValidationError{Field: "sort", Message: "sortはdistanceのみ指定できます"}
	}

	return &model.NearbySearchRequest{
		Origin:         origin,
		RadiusKm:       radius,
		Categories:     categories,
		SortByDistance: sortBy == "distance",
	}, nil
}

// GetPOI は指定IDのPOIを返すエンドポイント
// GET /api/pois/:id
func (h *POIHandler) GetPOI(c *gin.Context) {
	poi, err := h.searchUseCase.GetPOI(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondUseCaseError(c, "POIの取得に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, poi)
}

// GetNarration はPOIのガイド文を生成するエンドポイント
// GET /api/pois/:id/narration
func (h *POIHandler) GetNarration(c *gin.Context) {
	narration, err := h.searchUseCase.GetNarration(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondUseCaseError(c, "ガイド文の生成に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, narration)
}

// GetRadiusSettings は選択可能な検索半径を返すエンドポイント
// GET /api/radius-settings
func (h *POIHandler) GetRadiusSettings(c *gin.Context) {
	settings := model.GetRadiusSettings()
	kilometers := make([]float64, 0, len(settings))
	for _, s := range settings {
		kilometers = append(kilometers, s.Kilometers())
	}

	c.JSON(http.StatusOK, gin.H{
		"radius_km": kilometers,
		"default":   model.Radius1km.Kilometers(),
	})
}

func parseFloatQuery(c *gin.Context, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, &ValidationError{Field: key, Message: "必須パラメータです"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValidationError{Field: key, Message: "数値で指定してください"}
	}
	return v, nil
}

// parseCategories はカンマ区切りのカテゴリを分解して検証する
func parseCategories(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}

	var categories []string
	for _, c := range strings.Split(raw, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !model.IsValidCategory(c) {
			return nil, &ValidationError{Field: "category", Message: "未対応のカテゴリです: " + c}
		}
		categories = append(categories, c)
	}
	return categories, nil
}
