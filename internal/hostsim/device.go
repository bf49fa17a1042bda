// Package hostsim はPCのウィンドウを電卓のキーパッドとタッチパッドとして使うシミュレーター
package hostsim

import (
	"errors"
	"sync"

	"github.com/char5742/nspire-input/internal/features"
	"github.com/char5742/nspire-input/internal/keymap"
)

// 電卓の画面サイズ
const (
	ScreenWidth  = 320
	ScreenHeight = 240
)

var ErrNoWindow = errors.New("このビルドではウィンドウを使えません")

// Device はウィンドウの入力状態を保持する
// Set はウィンドウ側、Refresh 以降はポーリング側から呼ぶ
type Device struct {
	mu     sync.Mutex
	keys   features.Snapshot
	touch  features.TouchReport
	closed bool

	current      features.Snapshot
	currentTouch features.TouchReport
}

func NewDevice() *Device { return &Device{} }

// Set はウィンドウで読み取った状態を記録する
func (d *Device) Set(keys features.Snapshot, touch features.TouchReport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys = keys
	d.touch = touch
}

// Refresh は最後に記録された状態を取り込む
func (d *Device) Refresh() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("シミュレーターは閉じられています")
	}
	d.current = d.keys
	d.currentTouch = d.touch
	return nil
}

func (d *Device) IsKeyPressed(k keymap.HWKey) bool { return d.current.IsKeyPressed(k) }

func (d *Device) Scan() features.TouchReport { return d.currentTouch }

// Close はポーリング側からの利用を終える。ウィンドウはそのまま
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Reopen は閉じた Device をもう一度使えるようにする
func (d *Device) Reopen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = false
	d.current = features.Snapshot{}
	d.currentTouch = features.TouchReport{}
}

// TouchFromCursor はウィンドウ上の座標をタッチパッドの座標に変換する
// タッチパッドのYは下から上に増える
func TouchFromCursor(x, y, width, height int, contact bool) features.TouchReport {
	if width <= 0 || height <= 0 {
		return features.TouchReport{}
	}
	y = clamp(y, 0, height-1)
	return features.TouchReport{
		X:       int16(scaleAxis(x, width, features.TouchPadMaxX)),
		Y:       int16(scaleAxis(height-1-y, height, features.TouchPadMaxY)),
		Contact: contact,
	}
}

// scaleAxis は 0..size-1 の画面座標を 0..limit に広げる
// 1ピクセルしかない軸は常に 0
func scaleAxis(v, size, limit int) int {
	if size <= 1 {
		return 0
	}
	return clamp(v, 0, size-1) * limit / (size - 1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
