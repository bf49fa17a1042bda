package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/char5742/nspire-input/internal/config"
	"github.com/char5742/nspire-input/internal/features"
	"github.com/char5742/nspire-input/internal/keymap"
	"github.com/char5742/nspire-input/internal/metrics"
)

// EventsPath はイベントを WebSocket で配信するパス
// Handler が gin の外で処理する
const EventsPath = "/api/events"

// ルートの設定
func (s *Server) setupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	// 設定関連のエンドポイント
	api.GET("/config", s.handleGetConfig)
	api.PUT("/config", s.handleUpdateConfig)
	api.POST("/config/save", s.handleSaveConfig)

	// デバイス関連のエンドポイント
	api.GET("/devices", s.handleGetDevices)
	api.PUT("/devices/preferred", s.handleSetPreferredDevices)

	// サービス関連のエンドポイント
	api.POST("/service/start", s.handleStartService)
	api.POST("/service/stop", s.handleStopService)
	api.GET("/service/status", s.handleServiceStatus)

	api.GET("/keymap", s.handleGetKeymap)

	// ヘルスチェック用エンドポイント
	api.GET("/health", s.handleHealthCheck)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// 設定取得ハンドラ
func (s *Server) handleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.GetConfig())
}

// 設定更新ハンドラ
// 書かれていない項目は現在の値のまま
func (s *Server) handleUpdateConfig(c *gin.Context) {
	newConfig := s.GetConfig()
	if err := c.ShouldBindJSON(newConfig); err != nil {
		writeError(c, http.StatusBadRequest, "設定の解析に失敗しました")
		return
	}
	if err := newConfig.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	s.UpdateConfig(newConfig)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// 設定保存ハンドラ
func (s *Server) handleSaveConfig(c *gin.Context) {
	var saveRequest struct {
		Path string `json:"path"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&saveRequest); err != nil {
			writeError(c, http.StatusBadRequest, "リクエストの解析に失敗しました")
			return
		}
	}

	configPath := saveRequest.Path
	if configPath == "" {
		configPath = s.configPath
	}
	if configPath == "" {
		// デフォルトパスを使用
		path, err := config.GetDefaultConfigPath()
		if err != nil {
			writeError(c, http.StatusInternalServerError, "デフォルト設定ディレクトリの取得に失敗しました")
			return
		}
		configPath = path
	}

	if err := config.SaveConfig(configPath, s.GetConfig()); err != nil {
		writeError(c, http.StatusInternalServerError, "設定の保存に失敗しました: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"path":   configPath,
	})
}

// デバイス一覧取得ハンドラ
func (s *Server) handleGetDevices(c *gin.Context) {
	devices, err := features.GetDevices()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "デバイス一覧の取得に失敗しました: "+err.Error())
		return
	}

	ports, err := features.SerialPorts()
	if err != nil {
		s.log.Debug().Err(err).Msg("シリアルポートの一覧を取得できませんでした")
	}

	c.JSON(http.StatusOK, gin.H{
		"devices":      devices,
		"serial_ports": ports,
	})
}

// 優先デバイス設定ハンドラ
func (s *Server) handleSetPreferredDevices(c *gin.Context) {
	var request struct {
		KeyboardDevice string `json:"keyboard_device"`
		TouchPadDevice string `json:"touchpad_device"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		writeError(c, http.StatusBadRequest, "リクエストの解析に失敗しました")
		return
	}

	cfg := s.GetConfig()
	cfg.Devices.PreferredKeyboard = request.KeyboardDevice
	cfg.Devices.PreferredTouchPad = request.TouchPadDevice
	s.UpdateConfig(cfg)

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// サービス起動ハンドラ
func (s *Server) handleStartService(c *gin.Context) {
	err := s.service.Start()
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		c.JSON(http.StatusOK, gin.H{"status": "already_running"})
	case err != nil:
		writeError(c, http.StatusInternalServerError, fmt.Sprintf("サービスの起動に失敗しました: %v", err))
	default:
		c.JSON(http.StatusOK, gin.H{"status": "started"})
	}
}

// サービス停止ハンドラ
func (s *Server) handleStopService(c *gin.Context) {
	err := s.service.Stop()
	switch {
	case errors.Is(err, ErrNotRunning):
		c.JSON(http.StatusOK, gin.H{"status": "not_running"})
	case err != nil:
		writeError(c, http.StatusInternalServerError, fmt.Sprintf("サービスの停止に失敗しました: %v", err))
	default:
		c.JSON(http.StatusOK, gin.H{"status": "stopped"})
	}
}

// サービス状態取得ハンドラ
func (s *Server) handleServiceStatus(c *gin.Context) {
	st := s.service.Status()
	status := "stopped"
	if st.Running {
		status = "running"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      status,
		"detail":      st,
		"subscribers": s.hub.Clients(),
	})
}

type keymapRow struct {
	Slot       int    `json:"slot"`
	Name       string `json:"name"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Output     int32  `json:"output"`
	OutputName string `json:"output_name"`
}

// 対応表取得ハンドラ
func (s *Server) handleGetKeymap(c *gin.Context) {
	var rows []keymapRow
	for _, e := range keymap.Entries() {
		rows = append(rows, keymapRow{
			Slot:       int(e.Slot),
			Name:       e.Name,
			Row:        e.Hardware.Row(),
			Col:        e.Hardware.Col(),
			Output:     int32(e.Output),
			OutputName: e.Output.String(),
		})
	}

	arrows := make([]gin.H, 0, len(keymap.Arrows))
	for i, code := range keymap.Arrows {
		var keys []string
		for _, k := range keymap.ArrowKeys(i) {
			keys = append(keys, k.String())
		}
		arrows = append(arrows, gin.H{"output": int32(code), "output_name": code.String(), "keys": keys})
	}

	c.JSON(http.StatusOK, gin.H{"slots": rows, "arrows": arrows})
}

// ヘルスチェックハンドラ
func (s *Server) handleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
