package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/char5742/nspire-input/internal/api"
	"github.com/char5742/nspire-input/internal/config"
	"github.com/char5742/nspire-input/internal/logging"
)

var (
	configPath = kingpin.Flag("config", "設定ファイルのパス (指定しない場合はデフォルトパスを使用)").Short('c').String()
	useAPI     = kingpin.Flag("api", "APIサーバーモードで起動します").Bool()
	port       = kingpin.Flag("port", "APIサーバーのポート番号 (0 なら設定ファイルの値)").Short('p').Int()
	openPage   = kingpin.Flag("open", "起動後にブラウザで状態を開きます").Bool()
	backend    = kingpin.Flag("backend", "入力元 (evdev, serial)").Enum(config.BackendEvdev, config.BackendSerial)
	logLevel   = kingpin.Flag("log-level", "ログレベル").String()
)

func main() {
	// コマンドライン引数の解析
	kingpin.Version("0.1.0")
	kingpin.Parse()

	cfg, cfgPath := loadConfig()
	if *backend != "" {
		cfg.Backend.Kind = *backend
	}
	if *port != 0 {
		cfg.API.Port = *port
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Console)
	log := logging.Logger("main")
	log.Info().Str("path", cfgPath).Str("backend", cfg.Backend.Kind).Msg("設定を読み込みました")

	server := api.NewServer(cfg, cfgPath, cfg.API.Port)

	// シグナルハンドラの設定
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	if *useAPI {
		// APIモードで実行
		go func() { errCh <- server.Start() }()
		if *openPage {
			if err := browser.OpenURL(server.URL()); err != nil {
				log.Warn().Err(err).Msg("ブラウザを開けませんでした")
			}
		}
	} else {
		// CLIモードで実行
		log.Info().Msg("CLIモードで起動します...")
		if err := server.Service().Start(); err != nil {
			log.Fatal().Err(err).Msg("サービスの起動に失敗しました")
		}
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("シャットダウンします...")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("APIサーバーの起動に失敗しました")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("終了処理に失敗しました")
	}
}

// loadConfig は設定ファイルを読み込む。失敗した場合はデフォルト設定を使う
func loadConfig() (*config.Config, string) {
	boot := logging.Logger("main")

	// 設定ファイルパスの決定
	cfgPath := *configPath
	if cfgPath == "" {
		path, err := config.GetDefaultConfigPath()
		if err != nil {
			boot.Warn().Err(err).Msg("デフォルト設定ファイルのパスを決められません")
			return config.DefaultConfig(), ""
		}
		cfgPath = path
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		boot.Warn().Err(err).Msg("設定ファイルの読み込みに失敗しました。デフォルト設定を使用します")
		return config.DefaultConfig(), cfgPath
	}
	return cfg, cfgPath
}
