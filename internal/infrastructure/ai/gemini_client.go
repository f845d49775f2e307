package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"

// GeminiClient はGemini APIとの通信を担当するクライアント
type GeminiClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewGeminiClient は新しいGeminiClientインスタンスを作成
func NewGeminiClient(apiKey string) *GeminiClient {
	return NewGeminiClientWithEndpoint(apiKey, defaultGeminiEndpoint, &http.Client{
		Timeout: 30 * time.Second,
	})
}

// NewGeminiClientWithEndpoint は接続先とHTTPクライアントを指定してGeminiClientを作成
func NewGeminiClientWithEndpoint(apiKey, endpoint string, httpClient *http.Client) *GeminiClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeminiClient{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// GeminiRequest はGemini APIへのリクエスト構造体
type GeminiRequest struct {
	Contents []Content `json:"contents"`
}

// Content はリクエストの内容
type Content struct {
	Parts []Part `json:"parts"`
}

// Part はテキスト部分
type Part struct {
	Text string `json:"text"`
}

// GeminiResponse はGemini APIからのレスポンス構造体
type GeminiResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate は生成された候補
type Candidate struct {
	Content Content `json:"content"`
}

// NarrationContent は案内文のタイトルと本文
type NarrationContent struct {
	Title string
	Body  string
}

// GenerateContent はGemini APIを使ってコンテンツを生成する
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEYが設定されていません")
	}

	req := GeminiRequest{
		Contents: []Content{
			{
				Parts: []Part{
					{Text: prompt},
				},
			},
		},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("リクエストのシリアライズに失敗: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API呼び出しエラー (status: %d): %s", resp.StatusCode, string(body))
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("レスポンスのパースに失敗: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("有効なレスポンスが生成されませんでした")
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// GenerateNarrationContent はGemini APIを使ってタイトルと案内文を同時生成する
func (c *GeminiClient) GenerateNarrationContent(ctx context.Context, prompt string) (*NarrationContent, error) {
	content, err := c.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	narration := parseNarrationContent(content)
	if narration.Body == "" {
		return nil, fmt.Errorf("案内文が生成されませんでした")
	}
	return narration, nil
}

// parseNarrationContent は生成されたコンテンツからタイトルと本文を抽出
func parseNarrationContent(content string) *NarrationContent {
	var title string
	var body []string
	var bodyStarted bool

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// タイトルの検出パターン
		if rest, ok := cutAnyPrefix(line, "タイトル:", "タイトル：", "【タイトル】"); ok {
			title = rest
			continue
		}

		// 本文の開始検出パターン
		if rest, ok := cutAnyPrefix(line, "本文:", "本文：", "【本文】"); ok {
			bodyStarted = true
			if rest != "" {
				body = append(body, rest)
			}
			continue
		}

		// タイトルがまだ設定されていない場合、最初の行をタイトルとする
		if title == "" && !bodyStarted {
			title = line
			continue
		}

		body = append(body, line)
	}

	text := strings.Join(body, " ")

	// フォールバック処理
	if title == "" && text != "" {
		// 本文の最初の30文字をタイトルにする
		runes := []rune(text)
		if len(runes) > 30 {
			title = string(runes[:30]) + "..."
		} else {
			title = text
		}
	}

	return &NarrationContent{
		Title: title,
		Body:  text,
	}
}

func cutAnyPrefix(s string, prefixes ...string) (string, bool) {
	for _, prefix := range prefixes {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return s, false
}
