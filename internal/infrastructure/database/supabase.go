package database

import (
	"fmt"

	"github.com/supabase-community/supabase-go"

	"Yatra-App/internal/logger"
)

// SupabaseClient Supabaseクライアントのラッパー
type SupabaseClient struct {
	Client *supabase.Client
	url    string
}

// NewSupabaseClient 新しいSupabaseクライアントを作成
func NewSupabaseClient(supabaseURL, supabaseAnonKey string) (*SupabaseClient, error) {
	if supabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URLが設定されていません")
	}
	if supabaseAnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEYが設定されていません")
	}

	// クライアントオプションの設定
	client, err := supabase.NewClient(supabaseURL, supabaseAnonKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("Supabaseクライアントの初期化に失敗: %w", err)
	}

	return &SupabaseClient{
		Client: client,
		url:    supabaseURL,
	}, nil
}

// GetClient Supabaseクライアントを取得
func (sc *SupabaseClient) GetClient() *supabase.Client {
	return sc.Client
}

// HealthCheck データベース接続のヘルスチェック
func (sc *SupabaseClient) HealthCheck() error {
	// 軽量なヘルスチェックとしてクライアントの存在のみ確認
	if sc.Client == nil {
		return fmt.Errorf("Supabaseクライアントが初期化されていません")
	}

	logger.L().Infof("Supabase client initialized with URL: %s", sc.url)
	return nil
}
