package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"Yatra-App/internal/config"
	"Yatra-App/internal/domain/repository"
	"Yatra-App/internal/domain/service"
	"Yatra-App/internal/handler"
	"Yatra-App/internal/infrastructure/ai"
	"Yatra-App/internal/infrastructure/cache"
	"Yatra-App/internal/infrastructure/database"
	"Yatra-App/internal/infrastructure/firestore"
	"Yatra-App/internal/logger"
	repoImpl "Yatra-App/internal/repository"
	"Yatra-App/internal/usecase"
)

func main() {
	log := logger.L()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("⚠️  設定の読み込みに失敗: %v", err)
	}
	// .envにだけ書かれたLOGLEVELを反映する
	logger.ApplyLevel(cfg.LogLevel)

	ctx := context.Background()
	var closers []func() error

	// POIリポジトリの初期化
	poisRepo, closer, err := newPOIsRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("POIリポジトリ初期化失敗: %v", err)
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	if cfg.UseRedisCache() {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warnf("⚠️ Redisキャッシュを無効化します: %v", err)
		} else {
			poisRepo = repoImpl.NewRedisPOIsCache(poisRepo, rdb, cfg.POICacheTTL)
			closers = append(closers, rdb.Close)
		}
	}

	// ツアーセッションリポジトリの初期化
	var sessionsRepo repository.TourSessionsRepository
	if cfg.UseFirestore() {
		firestoreClient, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			log.Fatalf("Firestore初期化失敗: %v", err)
		}
		log.Infof("💾 ツアーセッションはFirestore(%s)に保存します", firestoreClient.ProjectID())
		sessionsRepo = repoImpl.NewFirestoreTourSessionRepository(firestoreClient.GetClient(), cfg.TourSessionTTLHours)
		closers = append(closers, firestoreClient.Close)
	} else {
		log.Info("💾 ツアーセッションはメモリに保存します")
		sessionsRepo = repoImpl.NewMemoryTourSessionRepository(cfg.TourSessionTTLHours)
	}

	if cfg.GeminiAPIKey == "" {
		log.Warn("⚠️ GEMINI_API_KEYが未設定のためガイド文は定型文になります")
	}
	narrationRepo := ai.NewGeminiNarrationRepository(ai.NewGeminiClient(cfg.GeminiAPIKey))

	// Dependency injection
	searchUseCase := usecase.NewPOISearchUseCase(poisRepo, narrationRepo)
	tourUseCase := usecase.NewTourUseCase(poisRepo, sessionsRepo, service.NewTourController(), cfg.TourInterval, nil)

	if !log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.NewPOIHandler(searchUseCase), handler.NewTourHandler(tourUseCase))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("🚀 Yatra-App server starting on :%s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("サーバーの起動に失敗: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("🛑 シャットダウン中...")

	tourUseCase.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("❌ サーバーのシャットダウンに失敗: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warnf("⚠️ 接続のクローズに失敗: %v", err)
		}
	}
	log.Info("✅ シャットダウン完了")
}

// newPOIsRepository はPOI_BACKENDに応じたPOIリポジトリを作成する
func newPOIsRepository(ctx context.Context, cfg *config.Config) (repository.POIsRepository, func() error, error) {
	log := logger.L()

	switch cfg.POIBackend {
	case config.BackendPostgres:
		log.Info("Initializing PostgreSQL client...")
		client, err := database.NewPostgreSQLClientWithRetry(ctx, cfg.SupabaseURL, cfg.SupabaseDBPassword, 3, 2*time.Second)
		if err != nil {
			return nil, nil, err
		}
		log.Info("✅ PostgreSQL connection successful!")
		return repoImpl.NewPostgresPOIsRepository(client), client.Close, nil

	default:
		log.Info("Initializing Supabase client...")
		client, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, nil, err
		}
		if err := client.HealthCheck(); err != nil {
			return nil, nil, err
		}
		log.Info("✅ Supabase connection successful!")
		return repoImpl.NewSupabasePOIsRepository(client), nil, nil
	}
}
