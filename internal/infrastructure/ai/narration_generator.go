package ai

import (
	"context"
	"fmt"

	"Yatra-App/internal/domain/model"
	"Yatra-App/internal/domain/repository"
	"Yatra-App/internal/logger"
	"Yatra-App/internal/metrics"
)

// ContentGenerator はプロンプトからタイトルと案内文を生成する
type ContentGenerator interface {
	GenerateNarrationContent(ctx context.Context, prompt string) (*NarrationContent, error)
}

// geminiNarrationRepository はGemini APIを使用してGuideNarrationRepositoryを実装
type geminiNarrationRepository struct {
	client ContentGenerator
}

// NewGeminiNarrationRepository は新しいgeminiNarrationRepositoryインスタンスを作成
func NewGeminiNarrationRepository(client ContentGenerator) repository.GuideNarrationRepository {
	return &geminiNarrationRepository{
		client: client,
	}
}

// GenerateNarration はPOIの案内タイトルと本文を生成する。API呼び出しに失敗した場合は定型文を返す
func (g *geminiNarrationRepository) GenerateNarration(ctx context.Context, poi *model.POI) (title, body string, fallback bool, err error) {
	if poi == nil {
		return "", "", false, fmt.Errorf("POIが指定されていません")
	}
	log := logger.L()

	log.Infof("🤖 Gemini APIで案内文を生成中... (POI: %s)", poi.Name)
	content, err := g.client.GenerateNarrationContent(ctx, g.buildNarrationPrompt(poi))
	if err != nil {
		log.Errorf("❌ 案内文の生成に失敗: %v", err)
		metrics.NarrationFallbacksTotal.Inc()
		return poi.Name, g.generateFallbackNarration(poi), true, nil
	}

	log.Infof("✅ 案内文生成完了: %s (本文: %d文字)", content.Title, len([]rune(content.Body)))
	return content.Title, content.Body, false, nil
}

// buildNarrationPrompt は案内文生成用プロンプトを構築
func (g *geminiNarrationRepository) buildNarrationPrompt(poi *model.POI) string {
	location := "不明"
	if point, ok := poi.Point(); ok {
		location = fmt.Sprintf("%.5f, %.5f", point.Latitude, point.Longitude)
	}

	return fmt.Sprintf(`以下のスポットについて、旅行者向けの短いガイド文を生成してください：

【スポット】
名前: %s
カテゴリ: %s
評価: %.1f
座標: %s

【出力フォーマット】
タイトル: [10-20語の魅力的なタイトル]

本文: [80-120語のガイド文]

【要件】
- 地元の職人や文化、歴史の魅力を伝える
- 訪問者が実際に立ち寄りたくなる内容
- 誇張や不確かな事実は書かない

上記のフォーマットに従って、英語で出力してください。`,
		poi.Name,
		model.GetCategoryDisplayName(poi.Category),
		poi.Rate,
		location)
}

// generateFallbackNarration はAPI呼び出しが失敗した場合の定型文を生成
func (g *geminiNarrationRepository) generateFallbackNarration(poi *model.POI) string {
	category := model.GetCategoryDisplayName(poi.Category)
	if category == "" {
		return fmt.Sprintf("Welcome to %s. Take your time and discover what makes this place special.", poi.Name)
	}
	return fmt.Sprintf("Welcome to %s, a local %s. Take your time and discover what makes this place special.",
		poi.Name, category)
}
