package features

import (
	"io"

	"github.com/char5742/nspire-input/internal/keymap"
)

// Nspire タッチパッドの座標範囲
const (
	TouchPadMaxX = 2328
	TouchPadMaxY = 1691
)

// キーパッドの状態を問い合わせるインターフェース
type Keypad interface {
	IsKeyPressed(k keymap.HWKey) bool
}

// TouchReport はタッチパッドの1サンプル
type TouchReport struct {
	X       int16 `json:"x"`
	Y       int16 `json:"y"`
	Contact bool  `json:"contact"` // 指が触れている
}

// タッチパッドの状態を問い合わせるインターフェース
type TouchPad interface {
	Scan() TouchReport
}

// Scanner はポーリング周期ごとに状態を取り込むデバイス
// Scan が失敗した周期はイベントを出さない
type Scanner interface {
	Refresh() error
}

// InputDevice はキーパッドとタッチパッドをまとめたもの
type InputDevice interface {
	Keypad
	TouchPad
	io.Closer
}

// Snapshot はキーパッドマトリクスの行レジスタの値
type Snapshot [keymap.NumRows]uint16

// IsKeyPressed はスナップショット上でキーが押されているかを返す
func (s *Snapshot) IsKeyPressed(k keymap.HWKey) bool {
	if !k.Valid() {
		return false
	}
	return s[k.Row()]&k.Mask() != 0
}

// Set はキーの状態を書き換える
func (s *Snapshot) Set(k keymap.HWKey, pressed bool) {
	if !k.Valid() {
		return
	}
	if pressed {
		s[k.Row()] |= k.Mask()
	} else {
		s[k.Row()] &^= k.Mask()
	}
}
