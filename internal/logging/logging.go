package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu   sync.Mutex
	root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).
		With().Timestamp().Logger()
)

// Setup はログの出力先とレベルを設定する
// level が不正な場合は info にする
func Setup(w io.Writer, level string, console bool) {
	mu.Lock()
	defer mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	root = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Logger はサブシステム名付きのロガーを返す
func Logger(subsystem string) *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	l := root.With().Str("subsystem", subsystem).Logger()
	return &l
}
