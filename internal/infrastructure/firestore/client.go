package firestore

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"Yatra-App/internal/logger"
)

// defaultCredentialsFile はローカル開発用のサービスアカウントキー
const defaultCredentialsFile = "yatra-firestore-key.json"

// FirestoreClient はツアーセッション保存用のFirestore接続
type FirestoreClient struct {
	client    *firestore.Client
	projectID string
}

func NewFirestoreClient(ctx context.Context, projectID string) (*FirestoreClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_IDが設定されていません")
	}

	client, err := firestore.NewClient(ctx, projectID, clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("Firestoreクライアントの作成に失敗: %w", err)
	}

	logger.L().Infof("✅ Firestore接続完了: %s", projectID)
	return &FirestoreClient{client: client, projectID: projectID}, nil
}

// clientOptions は実行環境に応じた認証オプションを返す
// Cloud Run(K_SERVICE)ではデフォルト認証、ローカルではキーファイルがあれば使う
func clientOptions() []option.ClientOption {
	log := logger.L()

	if os.Getenv("K_SERVICE") != "" {
		log.Info("☁️ Cloud Run環境: デフォルト認証を使用")
		return nil
	}

	credentialsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credentialsFile == "" {
		credentialsFile = defaultCredentialsFile
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		log.Warnf("⚠️ 認証ファイルが見つかりません: %s (デフォルト認証を使用)", credentialsFile)
		return nil
	}

	log.Infof("📄 認証ファイルを使用: %s", credentialsFile)
	return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}
}

func (fc *FirestoreClient) Close() error {
	return fc.client.Close()
}

func (fc *FirestoreClient) GetClient() *firestore.Client {
	return fc.client
}

func (fc *FirestoreClient) ProjectID() string {
	return fc.projectID
}
