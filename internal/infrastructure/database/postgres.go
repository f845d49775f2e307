package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"Yatra-App/internal/logger"
)

// PostgreSQLClient PostgreSQL直接接続クライアント
type PostgreSQLClient struct {
	DB *sql.DB
}

// BuildConnString SupabaseのURLとDBパスワードから接続文字列を構築
func BuildConnString(supabaseURL, password string) (string, error) {
	if supabaseURL == "" {
		return "", fmt.Errorf("SUPABASE_URLが設定されていません")
	}
	if password == "" {
		return "", fmt.Errorf("SUPABASE_DB_PASSWORDが設定されていません")
	}

	// SupabaseのURLからホスト名を抽出 (https://xxx.supabase.co -> xxx.supabase.co)
	host := strings.TrimPrefix(strings.TrimPrefix(supabaseURL, "https://"), "http://")
	host = strings.TrimSuffix(host, "/")

	// SupabaseのPostgreSQL接続文字列を構築（ポート6543を使用）
	return fmt.Sprintf(
		"host=db.%s port=6543 user=postgres password=%s dbname=postgres sslmode=require",
		host, password,
	), nil
}

// NewPostgreSQLClient 新しいPostgreSQLクライアントを作成
func NewPostgreSQLClient(ctx context.Context, supabaseURL, password string) (*PostgreSQLClient, error) {
	connStr, err := BuildConnString(supabaseURL, password)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL接続の初期化に失敗: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// 接続テスト
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("PostgreSQLへの接続に失敗: %w", err)
	}

	return &PostgreSQLClient{
		DB: db,
	}, nil
}

// NewPostgreSQLClientWithRetry 接続に失敗した場合に指定回数リトライする
func NewPostgreSQLClientWithRetry(ctx context.Context, supabaseURL, password string, maxRetries int, interval time.Duration) (*PostgreSQLClient, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		client, err := NewPostgreSQLClient(ctx, supabaseURL, password)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.L().Warnf("⚠️ PostgreSQL接続失敗 (%d/%d): %v", attempt, maxRetries, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil, fmt.Errorf("PostgreSQL接続のリトライ上限に達しました: %w", lastErr)
}

// Close データベース接続を閉じる
func (pc *PostgreSQLClient) Close() error {
	if pc.DB != nil {
		return pc.DB.Close()
	}
	return nil
}

// HealthCheck データベース接続のヘルスチェック
func (pc *PostgreSQLClient) HealthCheck(ctx context.Context) error {
	if pc.DB == nil {
		return fmt.Errorf("PostgreSQLクライアントが初期化されていません")
	}
	return pc.DB.PingContext(ctx)
}
