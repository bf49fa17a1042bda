package features

import (
	"fmt"
	"os"
	"syscall"

	"github.com/char5742/nspire-input/internal/consts"
	"github.com/char5742/nspire-input/internal/keymap"
	"github.com/char5742/nspire-input/internal/utils"
)

// evdevKeypad はPCキーボードを電卓のキーパッドとして読む
type evdevKeypad struct {
	file    *os.File
	keyBits []byte
	grabbed bool
}

// 監視するデバイスのパスを指定してキーパッドを作成する
func CreateKeypad(path string) (*evdevKeypad, error) {
	// デバイスを読み取り、非ブロッキングモードで開く
	f, err := os.OpenFile(path, syscall.O_RDONLY|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("デバイスファイルを開くのに失敗しました: %w", err)
	}
	return &evdevKeypad{file: f, keyBits: make([]byte, consts.KeyMax/8+1)}, nil
}

// Refresh は現在押されているキーのビット配列を読み込む
func (k *evdevKeypad) Refresh() error {
	if err := utils.GetKeyState(k.file, k.keyBits); err != nil {
		return fmt.Errorf("キー状態の取得に失敗しました: %w", err)
	}
	return nil
}

func (k *evdevKeypad) IsKeyPressed(key keymap.HWKey) bool {
	code, ok := keymap.LinuxCode(key)
	if !ok {
		return false
	}
	return utils.TestBit(k.keyBits, int(code))
}

// Grab はキーボードを専有し、元のキー入力が他のアプリへ届かないようにする
// 専有中もキー状態は EVIOCGKEY で読める
func (k *evdevKeypad) Grab() error {
	if k.grabbed {
		return nil
	}
	if err := utils.IOCtl(k.file, consts.EVIOCGRAB, 1); err != nil {
		return fmt.Errorf("キーボードの専有に失敗しました: %w", err)
	}
	k.grabbed = true
	return nil
}

// Release はキーボードの専有を解除する
func (k *evdevKeypad) Release() error {
	if !k.grabbed {
		return nil
	}
	if err := utils.IOCtl(k.file, consts.EVIOCGRAB, 0); err != nil {
		return fmt.Errorf("キーボードの専有解除に失敗しました: %w", err)
	}
	k.grabbed = false
	return nil
}

func (k *evdevKeypad) Close() error {
	_ = k.Release()
	return k.file.Close()
}
