package features

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeInputDir(t *testing.T) (root, byID string) {
	t.Helper()
	root = t.TempDir()
	byID = filepath.Join(root, "by-id")
	require.NoError(t, os.MkdirAll(byID, 0755))
	return root, byID
}

func link(t *testing.T, dir, name, target string) {
	t.Helper()
	require.NoError(t, os.Symlink(filepath.Join("..", target), filepath.Join(dir, name)))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want DeviceType
		ok   bool
	}{
		{"usb-TI_Nspire-event-kbd", DeviceTypeKeyboard, true},
		{"usb-TI_Nspire-event-mouse", DeviceTypeTouchPad, true},
		{"platform-i2c-SYNA-TouchPad-event", DeviceTypeTouchPad, true},
		{"usb-TI_Nspire-mouse", 0, false},
		{"usb-foo-event-joystick", 0, false},
	}
	for _, c := range cases {
		got, ok := classify(c.name)
		assert.Equal(t, c.ok, ok, c.name)
		if c.ok {
			assert.Equal(t, c.want, got, c.name)
		}
	}
}

func TestScanDirs(t *testing.T) {
	root, byID := makeInputDir(t)
	link(t, byID, "usb-B-event-kbd", "event4")
	link(t, byID, "usb-A-event-mouse", "event5")
	link(t, byID, "usb-A-if01-event-mouse", "event5")
	link(t, byID, "usb-A-mouse", "mouse0")

	devices, err := ScanDirs(byID, filepath.Join(root, "missing"))
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, Device{Name: "usb-A-event-mouse", Path: filepath.Join(root, "event5"), Type: DeviceTypeTouchPad}, devices[0])
	assert.Equal(t, Device{Name: "usb-B-event-kbd", Path: filepath.Join(root, "event4"), Type: DeviceTypeKeyboard}, devices[1])

	_, err = ScanDirs(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestSelectDevice(t *testing.T) {
	devices := []Device{
		{Name: "a-event-kbd", Type: DeviceTypeKeyboard},
		{Name: "b-event-kbd", Type: DeviceTypeKeyboard},
		{Name: "c-event-mouse", Type: DeviceTypeTouchPad},
	}
	d, ok := SelectDevice(devices, DeviceTypeKeyboard, "b-event-kbd")
	require.True(t, ok)
	assert.Equal(t, "b-event-kbd", d.Name)

	d, ok = SelectDevice(devices, DeviceTypeKeyboard, "gone")
	require.True(t, ok)
	assert.Equal(t, "a-event-kbd", d.Name, "優先デバイスがなければ最初のもの")

	_, ok = SelectDevice(devices[:2], DeviceTypeTouchPad, "")
	assert.False(t, ok)
}

func TestDeviceTypeText(t *testing.T) {
	b, err := DeviceTypeTouchPad.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "touchpad", string(b))
	assert.Equal(t, "keyboard", DeviceTypeKeyboard.String())
}

func TestDeviceMonitor(t *testing.T) {
	_, byID := makeInputDir(t)
	link(t, byID, "usb-A-event-kbd", "event1")

	dm, err := NewDeviceMonitor(byID)
	require.NoError(t, err)
	dm.debounce = 10 * time.Millisecond
	dm.pollInterval = 50 * time.Millisecond

	var (
		mu     sync.Mutex
		events []DeviceEvent
	)
	dm.RegisterCallback(func(ev DeviceEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})
	require.NoError(t, dm.Start())
	defer dm.Stop()

	require.Len(t, dm.GetConnectedDevices(), 1)

	link(t, byID, "usb-B-event-mouse", "event2")
	require.Eventually(t, func() bool { return len(dm.GetConnectedDevices()) == 2 }, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(byID, "usb-A-event-kbd")))
	require.Eventually(t, func() bool { return len(dm.GetConnectedDevices()) == 1 }, 3*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 3)
	assert.Equal(t, DeviceAdded, events[0].Type)
	assert.Equal(t, DeviceAdded, events[1].Type)
	assert.Equal(t, "usb-B-event-mouse", events[1].Device.Name)
	assert.Equal(t, DeviceRemoved, events[2].Type)
}
