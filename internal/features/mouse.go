package features

import (
	"fmt"
	"os"
	"syscall"

	"github.com/char5742/nspire-input/internal/consts"
	"github.com/char5742/nspire-input/internal/keymap"
	"github.com/char5742/nspire-input/internal/utils"
)

// axisRange は絶対座標軸の範囲
type axisRange struct {
	min, max int32
}

// scale は値を 0..limit の範囲に変換する
func (r axisRange) scale(v int32, limit int32, flip bool) int16 {
	span := r.max - r.min
	if span <= 0 {
		return 0
	}
	if v < r.min {
		v = r.min
	}
	if v > r.max {
		v = r.max
	}
	off := v - r.min
	if flip {
		off = r.max - v
	}
	return int16(int64(off) * int64(limit) / int64(span))
}

// TouchArea は読み取った座標を写す範囲
type TouchArea struct {
	MaxX  int32
	MaxY  int32
	FlipY bool // 下から上に増える向きにする
}

// DefaultTouchArea は電卓のタッチパッドと同じ範囲を返す
func DefaultTouchArea() TouchArea {
	return TouchArea{MaxX: TouchPadMaxX, MaxY: TouchPadMaxY, FlipY: true}
}

// evdevTouchPad はPCのタッチパッドを電卓のタッチパッドとして読む
type evdevTouchPad struct {
	file    *os.File
	area    TouchArea
	xRange  axisRange
	yRange  axisRange
	keyBits []byte
	report  TouchReport
	clicked bool
	grabbed bool
}

// 指定されたパスでタッチパッドを作成する
func CreateTouchPad(path string, area TouchArea) (*evdevTouchPad, error) {
	if area.MaxX <= 0 || area.MaxY <= 0 {
		area = DefaultTouchArea()
	}
	f, err := os.OpenFile(path, syscall.O_RDWR|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("failed to open device file: %w", err)
	}

	x, err := utils.GetAbsInfo(f, consts.AbsX)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("X軸の情報を取得できませんでした: %w", err)
	}
	y, err := utils.GetAbsInfo(f, consts.AbsY)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("Y軸の情報を取得できませんでした: %w", err)
	}

	return &evdevTouchPad{
		file:    f,
		area:    area,
		xRange:  axisRange{min: x.Minimum, max: x.Maximum},
		yRange:  axisRange{min: y.Minimum, max: y.Maximum},
		keyBits: make([]byte, consts.KeyMax/8+1),
	}, nil
}

// Refresh は現在の座標と接触状態を読み込む
func (t *evdevTouchPad) Refresh() error {
	if err := utils.GetKeyState(t.file, t.keyBits); err != nil {
		return fmt.Errorf("タッチ状態の取得に失敗しました: %w", err)
	}
	x, err := utils.GetAbsInfo(t.file, consts.AbsX)
	if err != nil {
		return fmt.Errorf("X座標の取得に失敗しました: %w", err)
	}
	y, err := utils.GetAbsInfo(t.file, consts.AbsY)
	if err != nil {
		return fmt.Errorf("Y座標の取得に失敗しました: %w", err)
	}

	t.report = TouchReport{
		X:       t.xRange.scale(x.Value, t.area.MaxX, false),
		Y:       t.yRange.scale(y.Value, t.area.MaxY, t.area.FlipY),
		Contact: utils.TestBit(t.keyBits, consts.BtnTouch),
	}
	t.clicked = utils.TestBit(t.keyBits, consts.BtnLeft)
	return nil
}

func (t *evdevTouchPad) Scan() TouchReport { return t.report }

// Clicked はパッドが押し込まれているかを返す
func (t *evdevTouchPad) Clicked() bool { return t.clicked }

// Grab は他のプログラムにイベントが届かないようにデバイスを専有する
func (t *evdevTouchPad) Grab() error {
	if t.grabbed {
		return nil
	}
	if err := utils.IOCtl(t.file, consts.EVIOCGRAB, 1); err != nil {
		return fmt.Errorf("failed to grab device: %w", err)
	}
	t.grabbed = true
	return nil
}

// Release はデバイスの専有を解除する
func (t *evdevTouchPad) Release() error {
	if !t.grabbed {
		return nil
	}
	if err := utils.IOCtl(t.file, consts.EVIOCGRAB, 0); err != nil {
		return fmt.Errorf("failed to release device: %w", err)
	}
	t.grabbed = false
	return nil
}

func (t *evdevTouchPad) Close() error {
	_ = t.Release()
	return t.file.Close()
}

// EvdevDevice はキーボードとタッチパッドを組み合わせて電卓として扱う
type EvdevDevice struct {
	keypad *evdevKeypad
	touch  *evdevTouchPad
}

// OpenEvdevDevice はキーボードとタッチパッドを開く
// touchPath が空の場合はタッチパッドなしで動作する
// grab が true なら両方を専有し、仮想デバイスの出力と元の入力が二重にならないようにする
func OpenEvdevDevice(keyboardPath, touchPath string, area TouchArea, grab bool) (*EvdevDevice, error) {
	kp, err := CreateKeypad(keyboardPath)
	if err != nil {
		return nil, err
	}
	if grab {
		if err := kp.Grab(); err != nil {
			_ = kp.Close()
			return nil, err
		}
	}
	d := &EvdevDevice{keypad: kp}
	if touchPath == "" {
		return d, nil
	}

	tp, err := CreateTouchPad(touchPath, area)
	if err != nil {
		_ = kp.Close()
		return nil, err
	}
	if grab {
		if err := tp.Grab(); err != nil {
			_ = tp.Close()
			_ = kp.Close()
			return nil, err
		}
	}
	d.touch = tp
	return d, nil
}

func (d *EvdevDevice) Refresh() error {
	if err := d.keypad.Refresh(); err != nil {
		return err
	}
	if d.touch != nil {
		return d.touch.Refresh()
	}
	return nil
}

// IsKeyPressed はタッチパッドの押し込みもクリックキーとして扱う
func (d *EvdevDevice) IsKeyPressed(k keymap.HWKey) bool {
	if k == keymap.KeyClick && d.touch != nil && d.touch.Clicked() {
		return true
	}
	return d.keypad.IsKeyPressed(k)
}

func (d *EvdevDevice) Scan() TouchReport {
	if d.touch == nil {
		return TouchReport{}
	}
	return d.touch.Scan()
}

func (d *EvdevDevice) Close() error {
	var err error
	if d.touch != nil {
		err = d.touch.Close()
	}
	if kerr := d.keypad.Close(); err == nil {
		err = kerr
	}
	return err
}
