package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err, "デフォルト設定が保存される")

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[backend]
kind = "serial"

[serial]
port = "/dev/ttyUSB1"

[pump]
interval = "5ms"

[motion]
delta_divisor = 10
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSerial, cfg.Backend.Kind)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.Baud, "書かれていない項目はデフォルト")
	assert.Equal(t, 5*time.Millisecond, cfg.Pump.Interval.Duration)
	assert.Equal(t, 10, cfg.Motion.DeltaDivisor)
	assert.True(t, cfg.Motion.InvertY)
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"backend":  "[backend]\nkind = \"usb\"\n",
		"divisor":  "[motion]\ndelta_divisor = 0\n",
		"interval": "[pump]\ninterval = \"soon\"\n",
		"syntax":   "[pump\n",
		"queue":    "[output]\nqueue_size = 8\n",
		"grab":     "[devices]\ngrab = false\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Devices.Grab)

	cfg.Output.QueueSize = MinQueueSize - 1
	assert.Error(t, cfg.Validate(), "1周期分のイベントが入らない")
	cfg.Output.QueueSize = MinQueueSize
	assert.NoError(t, cfg.Validate())
	cfg.Output.QueueSize = 0
	assert.NoError(t, cfg.Validate(), "0 はデフォルトのサイズ")

	cfg.Devices.Grab = false
	assert.Error(t, cfg.Validate())
	cfg.Output.Virtual = false
	assert.NoError(t, cfg.Validate(), "仮想デバイスに出力しないなら専有は不要")
	cfg.Output.Virtual = true
	cfg.Backend.Kind = BackendSerial
	assert.NoError(t, cfg.Validate(), "シリアルでは元の入力がない")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Devices.PreferredKeyboard = "usb-TI-event-kbd"
	cfg.Pump.Interval = Duration{20 * time.Millisecond}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
