package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"Yatra-App/internal/domain/model"
	"Yatra-App/internal/usecase"
)

// TourHandler はツアーガイドモードAPIのハンドラー
type TourHandler struct {
	tourUseCase usecase.TourUseCase
}

// NewTourHandler は新しいTourHandlerインスタンスを作成
func NewTourHandler(tourUseCase usecase.TourUseCase) *TourHandler {
	return &TourHandler{
		tourUseCase: tourUseCase,
	}
}

// PostTour はツアーを開始するエンドポイント
// POST /api/tours
func (h *TourHandler) PostTour(c *gin.Context) {
	var req model.StartTourRequest

	// リクエストボディのバインド
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	if err := h.validateStartRequest(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	snapshot, err := h.tourUseCase.StartTour(c.Request.Context(), &req)
	if err != nil {
		respondUseCaseError(c, "ツアーの開始に失敗しました", err)
		return
	}

	c.JSON(http.StatusCreated, snapshot)
}

// validateStartRequest はツアー開始リクエストの詳細バリデーションを行う
func (h *TourHandler) validateStartRequest(req *model.StartTourRequest) error {
	if err := validateOrigin(req.Origin); err != nil {
		return err
	}
	if req.RadiusKm < 0 {
		return &ValidationError{Field: "radius_km", Message: "radius_kmは0以上で指定してください"}
	}
	for _, category := range req.Categories {
		if !model.IsValidCategory(category) {
			return &ValidationError{Field: "categories", Message: "未対応のカテゴリです: " + category}
		}
	}
	return nil
}

func validateOrigin(origin *model.GeoPoint) error {
	if origin == nil {
		return &ValidationError{Field: "origin", Message: "開始地点は必須です"}
	}
	if origin.Latitude < -90 || origin.Latitude > 90 {
		return &ValidationError{Field: "origin.latitude", Message: "緯度は-90から90の範囲で指定してください"}
	}
	if origin.Longitude < -180 || origin.Longitude > 180 {
		return &ValidationError{Field: "origin.longitude", Message: "経度は-180から180の範囲で指定してください"}
	}
	return nil
}

// GetTour はツアーの現在のスナップショットを返すエンドポイント
// GET /api/tours/:id
func (h *TourHandler) GetTour(c *gin.Context) {
	h.respondSnapshot(c, "ツアーの取得に失敗しました", h.tourUseCase.GetTour)
}

// PostAdvance POST /api/tours/:id/advance
func (h *TourHandler) PostAdvance(c *gin.Context) {
	h.respondSnapshot(c, "ツアーを進められませんでした", h.tourUseCase.Advance)
}

// PostPause POST /api/tours/:id/pause
func (h *TourHandler) PostPause(c *gin.Context) {
	h.respondSnapshot(c, "ツアーを一時停止できませんでした", h.tourUseCase.Pause)
}

// PostResume POST /api/tours/:id/resume
func (h *TourHandler) PostResume(c *gin.Context) {
	h.respondSnapshot(c, "ツアーを再開できませんでした", h.tourUseCase.Resume)
}

// PostStart はリセット済みのツアーを再び開始するエンドポイント
// POST /api/tours/:id/start
func (h *TourHandler) PostStart(c *gin.Context) {
	var req model.RestartTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}
	if err := validateOrigin(req.Origin); err != nil {
		respondValidationError(c, err)
		return
	}

	h.respondSnapshot(c, "ツアーを開始できませんでした", func(ctx context.Context, sessionID string) (*model.TourSnapshotResponse, error) {
		return h.tourUseCase.RestartTour(ctx, sessionID, &req)
	})
}

// DeleteTour はツアーを終了してセッションを削除するエンドポイント
// DELETE /api/tours/:id
func (h *TourHandler) DeleteTour(c *gin.Context) {
	if err := h.tourUseCase.EndTour(c.Request.Context(), c.Param("id")); err != nil {
		respondUseCaseError(c, "ツアーを終了できませんでした", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PostReset POST /api/tours/:id/reset
func (h *TourHandler) PostReset(c *gin.Context) {
	h.respondSnapshot(c, "ツアーをリセットできませんでした", h.tourUseCase.Reset)
}

func (h *TourHandler) respondSnapshot(c *gin.Context, message string, op func(context.Context, string) (*model.TourSnapshotResponse, error)) {
	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "session_idが指定されていません",
		})
		return
	}

	snapshot, err := op(c.Request.Context(), sessionID)
	if err != nil {
		respondUseCaseError(c, message, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
