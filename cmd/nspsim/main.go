// nspsim はウィンドウのキーボードとマウスを電卓の入力として扱うシミュレーター
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/char5742/nspire-input/internal/api"
	"github.com/char5742/nspire-input/internal/config"
	"github.com/char5742/nspire-input/internal/features"
	"github.com/char5742/nspire-input/internal/hostsim"
	"github.com/char5742/nspire-input/internal/logging"
)

var (
	configPath = kingpin.Flag("config", "設定ファイルのパス").Short('c').String()
	port       = kingpin.Flag("port", "APIサーバーのポート番号 (0 なら起動しない)").Short('p').Default("0").Int()
	virtual    = kingpin.Flag("virtual", "uinput の仮想デバイスに出力します").Bool()
)

func main() {
	kingpin.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			logging.Logger("nspsim").Fatal().Err(err).Msg("設定ファイルの読み込みに失敗しました")
		}
		cfg = loaded
	}
	cfg.Backend.Kind = config.BackendSim
	cfg.Output.Virtual = *virtual
	logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Console)
	log := logging.Logger("nspsim")

	dev := hostsim.NewDevice()
	server := api.NewServer(cfg, *configPath, *port,
		api.WithOpener(func(*config.Config, *zerolog.Logger) (features.InputDevice, error) {
			dev.Reopen()
			return dev, nil
		}),
	)
	if err := server.Service().Start(); err != nil {
		log.Fatal().Err(err).Msg("サービスの起動に失敗しました")
	}
	if *port != 0 {
		go func() {
			if err := server.Start(); err != nil {
				log.Error().Err(err).Msg("APIサーバーの起動に失敗しました")
			}
		}()
	}

	// ウィンドウはメインゴルーチンで動かす
	if err := hostsim.Run(dev, "Nspire Keypad"); err != nil {
		log.Error().Err(err).Msg("ウィンドウを開けませんでした")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("終了処理に失敗しました")
	}
}
