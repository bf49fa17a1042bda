package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/char5742/nspire-input/internal/config"
	"github.com/char5742/nspire-input/internal/logging"
)

// Server はAPIサーバーを表す構造体
type Server struct {
	server     *http.Server
	cfg        *config.Config
	configPath string
	mutex      sync.RWMutex
	port       int
	service    *PumpService
	hub        *Hub
	log        *zerolog.Logger
}

// NewServer は新しいAPIサーバーを作成する
// configPath は設定の保存先（空ならデフォルトパス）
func NewServer(cfg *config.Config, configPath string, port int, opts ...ServiceOption) *Server {
	hub := NewHub()
	return &Server{
		cfg:        cfg,
		configPath: configPath,
		port:       port,
		hub:        hub,
		service:    NewPumpService(cfg, append([]ServiceOption{WithSinks(hub)}, opts...)...),
		log:        logging.Logger("api"),
	}
}

// Handler はルーティング済みのハンドラーを返す
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		ginlogger.SetLogger(ginlogger.WithLogger(func(_ *gin.Context, l zerolog.Logger) zerolog.Logger {
			return s.log.With().Logger()
		})),
		gin.Recovery(),
		cors(),
	)

	// APIエンドポイントの設定
	s.setupRoutes(router)

	// WebSocket は接続を乗っ取るため gin のレスポンスライターを通さない
	mux := http.NewServeMux()
	mux.Handle(EventsPath, s.hub)
	mux.Handle("/", router)
	return mux
}

// Start はAPIサーバーを開始する
func (s *Server) Start() error {
	// HTTPサーバーの設定
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	// サーバーの起動
	s.log.Info().Msgf("APIサーバーを開始します: %s", s.URL())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// URL はブラウザで開くアドレスを返す
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d/api/service/status", s.port)
}

// Stop はAPIサーバーとサービスを停止する
func (s *Server) Stop(ctx context.Context) error {
	if s.service.IsRunning() {
		if err := s.service.Stop(); err != nil {
			s.log.Warn().Err(err).Msg("サービスの停止に失敗しました")
		}
	}
	if s.server != nil {
		s.log.Info().Msg("APIサーバーを停止します...")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Service はサーバーが管理する PumpService を返す
func (s *Server) Service() *PumpService { return s.service }

// GetConfig は現在の設定のコピーを返す
func (s *Server) GetConfig() *config.Config {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	cfg := *s.cfg
	return &cfg
}

// UpdateConfig は設定を更新し、動作中のサービスにも反映する
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.mutex.Lock()
	s.cfg = cfg
	s.mutex.Unlock()
	s.service.UpdateConfig(cfg)
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// writeError はエラーレスポンスを書き込む
func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
