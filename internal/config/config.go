package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/char5742/nspire-input/internal/keymap"
)

// MinQueueSize は1周期で出うるイベント数（全スロット、矢印、ボタン、移動）
const MinQueueSize = keymap.NumSlots + len(keymap.Arrows) + 2

// 入力元の種類
const (
	BackendEvdev  = "evdev"
	BackendSerial = "serial"
	BackendSim    = "sim"
)

// Config はアプリケーション全体の設定を表す構造体
type Config struct {
	Backend  BackendConfig  `toml:"backend" json:"backend"`
	Devices  DevicesConfig  `toml:"devices" json:"devices"`
	Serial   SerialConfig   `toml:"serial" json:"serial"`
	TouchPad TouchPadConfig `toml:"touchpad" json:"touchpad"`
	Motion   MotionConfig   `toml:"motion" json:"motion"`
	Pump     PumpConfig     `toml:"pump" json:"pump"`
	Output   OutputConfig   `toml:"output" json:"output"`
	API      APIConfig      `toml:"api" json:"api"`
	Log      LogConfig      `toml:"log" json:"log"`
}

// BackendConfig は入力元の設定
type BackendConfig struct {
	Kind string `toml:"kind" json:"kind"`
}

// DevicesConfig は evdev で読むデバイスの設定
// パスが空の場合は優先名、なければ最初に見つかったデバイスを使う
type DevicesConfig struct {
	KeyboardPath      string `toml:"keyboard_path" json:"keyboard_path"`
	TouchPadPath      string `toml:"touchpad_path" json:"touchpad_path"`
	PreferredKeyboard string `toml:"preferred_keyboard" json:"preferred_keyboard"`
	PreferredTouchPad string `toml:"preferred_touchpad" json:"preferred_touchpad"`
	Grab              bool   `toml:"grab" json:"grab"`
}

// SerialConfig はシリアルリンクの設定
type SerialConfig struct {
	Port string `toml:"port" json:"port"`
	Baud int    `toml:"baud" json:"baud"`
}

// TouchPadConfig はタッチ座標の範囲
type TouchPadConfig struct {
	MaxX  int32 `toml:"max_x" json:"max_x"`
	MaxY  int32 `toml:"max_y" json:"max_y"`
	FlipY bool  `toml:"flip_y" json:"flip_y"`
}

// MotionConfig はモーション制御の設定
type MotionConfig struct {
	DeltaDivisor          int     `toml:"delta_divisor" json:"delta_divisor"`
	InvertY               bool    `toml:"invert_y" json:"invert_y"`
	FilterEnabled         bool    `toml:"filter_enabled" json:"filter_enabled"`
	FilterSmoothingFactor float64 `toml:"filter_smoothing_factor" json:"filter_smoothing_factor"`
	FilterWarmUpCount     int     `toml:"filter_warm_up_count" json:"filter_warm_up_count"`
}

// PumpConfig はポーリングの設定
type PumpConfig struct {
	Interval Duration `toml:"interval" json:"interval"`
}

// OutputConfig はイベントの出力先の設定
type OutputConfig struct {
	Virtual    bool   `toml:"virtual" json:"virtual"`
	UinputPath string `toml:"uinput_path" json:"uinput_path"`
	DeviceName string `toml:"device_name" json:"device_name"`
	QueueSize  int    `toml:"queue_size" json:"queue_size"`
}

// APIConfig はHTTPサーバーの設定
type APIConfig struct {
	Port int `toml:"port" json:"port"`
}

// LogConfig はログの設定
type LogConfig struct {
	Level   string `toml:"level" json:"level"`
	Console bool   `toml:"console" json:"console"`
}

// Duration は "10ms" のような文字列で書ける time.Duration
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("不正な時間の指定です[%s]: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{Kind: BackendEvdev},
		Devices: DevicesConfig{Grab: true},
		Serial: SerialConfig{
			Port: "/dev/ttyACM0",
			Baud: 115200,
		},
		TouchPad: TouchPadConfig{
			MaxX:  2328,
			MaxY:  1691,
			FlipY: true,
		},
		Motion: MotionConfig{
			DeltaDivisor:          15,
			InvertY:               true,
			FilterEnabled:         false,
			FilterSmoothingFactor: 0.85,
			FilterWarmUpCount:     10,
		},
		Pump: PumpConfig{Interval: Duration{10 * time.Millisecond}},
		Output: OutputConfig{
			Virtual:    true,
			UinputPath: "/dev/uinput",
			DeviceName: "Nspire Keypad",
			QueueSize:  128,
		},
		API: APIConfig{Port: 8080},
		Log: LogConfig{Level: "info", Console: true},
	}
}

// Validate は設定値を確認する
func (c *Config) Validate() error {
	switch c.Backend.Kind {
	case BackendEvdev, BackendSerial, BackendSim:
	default:
		return fmt.Errorf("不明なバックエンドです: %q", c.Backend.Kind)
	}
	if c.Motion.DeltaDivisor <= 0 {
		return fmt.Errorf("delta_divisor は正の値にしてください: %d", c.Motion.DeltaDivisor)
	}
	if c.Pump.Interval.Duration <= 0 {
		return fmt.Errorf("interval は正の値にしてください: %v", c.Pump.Interval)
	}
	if c.Motion.FilterSmoothingFactor < 0 || c.Motion.FilterSmoothingFactor > 1 {
		return fmt.Errorf("filter_smoothing_factor は0から1の範囲にしてください: %v", c.Motion.FilterSmoothingFactor)
	}
	// 0 はデフォルトのサイズ
	if c.Output.QueueSize != 0 && c.Output.QueueSize < MinQueueSize {
		return fmt.Errorf("queue_size は %d 以上にしてください: %d", MinQueueSize, c.Output.QueueSize)
	}
	// 専有しないと元のキー入力と仮想デバイスの出力が二重に届く
	if c.Backend.Kind == BackendEvdev && c.Output.Virtual && !c.Devices.Grab {
		return fmt.Errorf("evdev で仮想デバイスに出力する場合は grab を有効にしてください")
	}
	return nil
}

// GetDefaultConfigDir は設定ファイルを置くディレクトリを返す
func GetDefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "nspire-input"), nil
}

// GetDefaultConfigPath は設定ファイルのデフォルトパスを返す
func GetDefaultConfigPath() (string, error) {
	dir, err := GetDefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadConfig は設定ファイルから設定を読み込む
func LoadConfig(configPath string) (*Config, error) {
	// デフォルト設定を用意
	config := DefaultConfig()

	// ファイルが存在しない場合はデフォルト設定を保存して返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveConfig(configPath, config); err != nil {
			return config, err
		}
		return config, nil
	}

	// 設定ファイルの読み込み（書かれていない項目はデフォルトのまま）
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return config, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// SaveConfig は設定をTOMLファイルに保存する
func SaveConfig(configPath string, config *Config) error {
	// 設定ディレクトリの作成
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// ファイルを開く（なければ作成）
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// TOML形式でエンコードして書き込み
	encoder := toml.NewEncoder(f)
	return encoder.Encode(config)
}
