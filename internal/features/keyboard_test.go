package features

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 通常のファイルは EVIOCGRAB を受け付けないので、専有を試みたかどうかが分かる
func TestOpenEvdevDeviceGrabsKeypad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event0")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := OpenEvdevDevice(path, "", DefaultTouchArea(), true)
	require.Error(t, err, "キーボードも専有する")
	assert.Contains(t, err.Error(), "キーボードの専有")

	d, err := OpenEvdevDevice(path, "", DefaultTouchArea(), false)
	require.NoError(t, err)
	assert.False(t, d.keypad.grabbed)
	assert.NoError(t, d.keypad.Release(), "専有していなければ何もしない")
	assert.NoError(t, d.Close())
}
