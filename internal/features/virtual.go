package features

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/char5742/nspire-input/internal/consts"
	"github.com/char5742/nspire-input/internal/event"
	"github.com/char5742/nspire-input/internal/types"
	"github.com/char5742/nspire-input/internal/utils"
)

// virtualKey は出力キーに対応する Linux キーと Shift の要否
type virtualKey struct {
	code  uint16
	shift bool
}

func plain(code uint16) virtualKey   { return virtualKey{code: code} }
func shifted(code uint16) virtualKey { return virtualKey{code: code, shift: true} }

// 出力キーコード → Linux キーコード (US 配列)
// 記号の一部は Shift 付きで同じキーを共有する
var virtualKeys = map[event.Key]virtualKey{
	event.KeyBackspace:  plain(consts.KeyBackspace),
	event.KeyTab:        plain(consts.KeyTab),
	event.KeyReturn:     plain(consts.KeyEnter),
	event.KeyEscape:     plain(consts.KeyEsc),
	event.KeySpace:      plain(consts.KeySpace),
	event.KeyQuoteDbl:   shifted(consts.KeyApostrophe),
	event.KeyQuote:      plain(consts.KeyApostrophe),
	event.KeyLeftParen:  plain(consts.KeyKPLeftParen),
	event.KeyRightParen: plain(consts.KeyKPRightParen),
	event.KeyAsterisk:   plain(consts.KeyKPAsterisk),
	event.KeyPlus:       plain(consts.KeyKPPlus),
	event.KeyComma:      plain(consts.KeyComma),
	event.KeyMinus:      plain(consts.KeyMinus),
	event.KeyPeriod:     plain(consts.KeyDot),
	event.KeySlash:      plain(consts.KeySlash),
	event.KeyColon:      shifted(consts.KeySemicolon),
	event.KeyLess:       shifted(consts.KeyComma),
	event.KeyEquals:     plain(consts.KeyEqual),
	event.KeyGreater:    shifted(consts.KeyDot),
	event.KeyQuestion:   shifted(consts.KeySlash),
	event.KeyCaret:      shifted(consts.Key6),
	event.KeyKPEnter:    plain(consts.KeyKPEnter),
	event.KeyUp:         plain(consts.KeyUp),
	event.KeyDown:       plain(consts.KeyDown),
	event.KeyRight:      plain(consts.KeyRight),
	event.KeyLeft:       plain(consts.KeyLeft),
	event.KeyHome:       plain(consts.KeyHome),
	event.KeyLShift:     plain(consts.KeyLeftShift),
	event.KeyLCtrl:      plain(consts.KeyLeftCtrl),
	event.KeyMenu:       plain(consts.KeyCompose),

	event.Key0: plain(consts.Key0), event.Key1: plain(consts.Key1), event.Key2: plain(consts.Key2),
	event.Key3: plain(consts.Key3), event.Key4: plain(consts.Key4), event.Key5: plain(consts.Key5),
	event.Key6: plain(consts.Key6), event.Key7: plain(consts.Key7), event.Key8: plain(consts.Key8),
	event.Key9: plain(consts.Key9),

	event.KeyA: plain(consts.KeyA), event.KeyB: plain(consts.KeyB), event.KeyC: plain(consts.KeyC),
	event.KeyD: plain(consts.KeyD), event.KeyE: plain(consts.KeyE), event.KeyF: plain(consts.KeyF),
	event.KeyG: plain(consts.KeyG), event.KeyH: plain(consts.KeyH), event.KeyI: plain(consts.KeyI),
	event.KeyJ: plain(consts.KeyJ), event.KeyK: plain(consts.KeyK), event.KeyL: plain(consts.KeyL),
	event.KeyM: plain(consts.KeyM), event.KeyN: plain(consts.KeyN), event.KeyO: plain(consts.KeyO),
	event.KeyP: plain(consts.KeyP), event.KeyQ: plain(consts.KeyQ), event.KeyR: plain(consts.KeyR),
	event.KeyS: plain(consts.KeyS), event.KeyT: plain(consts.KeyT), event.KeyU: plain(consts.KeyU),
	event.KeyV: plain(consts.KeyV), event.KeyW: plain(consts.KeyW), event.KeyX: plain(consts.KeyX),
	event.KeyY: plain(consts.KeyY), event.KeyZ: plain(consts.KeyZ),
}

var virtualButtons = map[event.Button]uint16{
	event.ButtonLeft:   consts.BtnLeft,
	event.ButtonMiddle: consts.BtnMiddle,
	event.ButtonRight:  consts.BtnRight,
}

// VirtualInput は受け取ったイベントを uinput の仮想デバイスとして Linux に流す
type VirtualInput struct {
	w      io.Writer
	closer io.Closer
	log    *zerolog.Logger
	mu     sync.Mutex
	// Linux キーごとの押下数。複数の出力キーが同じ Linux キーを共有する
	held map[uint16]int
}

// CreateVirtualInput は仮想キーボード兼マウスを作成する
func CreateVirtualInput(path string, name []byte, log *zerolog.Logger) (*VirtualInput, error) {
	fd, err := createVirtualDevice(path, name)
	if err != nil {
		return nil, err
	}
	v := NewVirtualInput(fd, log)
	v.closer = closerFunc(func() error {
		_ = releaseDevice(fd)
		return fd.Close()
	})
	return v, nil
}

// NewVirtualInput は任意の Writer に input_event を書き込む VirtualInput を作成する
func NewVirtualInput(w io.Writer, log *zerolog.Logger) *VirtualInput {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &VirtualInput{w: w, log: log, held: make(map[uint16]int)}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func (v *VirtualInput) Close() error {
	if v.closer == nil {
		return nil
	}
	return v.closer.Close()
}

// Dispatch はイベントを input_event の列に変換して書き込む
func (v *VirtualInput) Dispatch(ev event.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	events := v.translate(ev)
	if len(events) == 0 {
		return
	}
	if err := writeEvents(v.w, events); err != nil {
		v.log.Warn().Err(err).Stringer("type", ev.Type).Msg("仮想デバイスへの書き込みに失敗しました")
	}
}

var synReport = types.InputEvent{Type: consts.Syn, Code: consts.SynReport, Value: 0}

func (v *VirtualInput) translate(ev event.Event) []types.InputEvent {
	switch ev.Type {
	case event.TypeKeyDown, event.TypeKeyUp:
		key, ok := virtualKeys[ev.Key]
		if !ok {
			return nil
		}
		if ev.State == event.Pressed {
			return v.press(key)
		}
		return v.release(key)
	case event.TypeMouseButtonDown, event.TypeMouseButtonUp:
		code, ok := virtualButtons[ev.Button]
		if !ok {
			return nil
		}
		return []types.InputEvent{
			{Type: consts.Key, Code: code, Value: int32(ev.State)},
			synReport,
		}
	case event.TypeMouseMotion:
		if !ev.Relative {
			return nil
		}
		// 画面座標は下向きが正
		return []types.InputEvent{
			{Type: consts.Rel, Code: consts.RelX, Value: int32(ev.X)},
			{Type: consts.Rel, Code: consts.RelY, Value: int32(ev.Y)},
			synReport,
		}
	}
	return nil
}

func keyEvent(code uint16, value int32) types.InputEvent {
	return types.InputEvent{Type: consts.Key, Code: code, Value: value}
}

func (v *VirtualInput) press(key virtualKey) []types.InputEvent {
	var out []types.InputEvent
	if v.held[key.code] > 0 {
		// 共有キーが押されたままなら一度離して打ち直す
		out = append(out, keyEvent(key.code, 0), synReport)
	}
	v.held[key.code]++

	// Shift が押されていなければ一時的に押す
	synthShift := key.shift && v.held[consts.KeyLeftShift] == 0
	if synthShift {
		out = append(out, keyEvent(consts.KeyLeftShift, 1))
	}
	out = append(out, keyEvent(key.code, 1), synReport)
	if synthShift {
		out = append(out, keyEvent(consts.KeyLeftShift, 0), synReport)
	}
	return out
}

func (v *VirtualInput) release(key virtualKey) []types.InputEvent {
	n := v.held[key.code]
	if n == 0 {
		return nil
	}
	if n > 1 {
		v.held[key.code] = n - 1
		return nil
	}
	delete(v.held, key.code)
	return []types.InputEvent{keyEvent(key.code, 0), synReport}
}

func createVirtualDevice(path string, name []byte) (*os.File, error) {
	deviceFile, err := createDeviceFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not create virtual input device: %v", err)
	}

	// キー入力イベント(EV_KEY)を登録する
	if err = registerDevice(deviceFile, uintptr(consts.Key)); err != nil {
		return nil, fmt.Errorf("キー入力イベント(EV_KEY)の登録に失敗しました: %v", err)
	}
	codes := make(map[uint16]bool)
	for _, key := range virtualKeys {
		codes[key.code] = true
	}
	for _, code := range virtualButtons {
		codes[code] = true
	}
	for code := range codes {
		if err = utils.IOCtl(deviceFile, consts.SetKeyBit, uintptr(code)); err != nil {
			_ = deviceFile.Close()
			return nil, fmt.Errorf("キー入力種別の登録に失敗しました %v: %v", code, err)
		}
	}

	// 相対座標入力イベント(EV_REL)を登録する
	if err = registerDevice(deviceFile, uintptr(consts.Rel)); err != nil {
		return nil, fmt.Errorf("相対座標入力イベント(EV_REL)の登録に失敗しました: %v", err)
	}
	for _, rel := range []int{consts.RelX, consts.RelY} {
		if err = utils.IOCtl(deviceFile, consts.SetRelBit, uintptr(rel)); err != nil {
			_ = deviceFile.Close()
			return nil, fmt.Errorf("座標軸の登録に失敗しました %v: %v", rel, err)
		}
	}

	userDev := types.UserDev{
		Name: toUinputName(name),
		ID: types.InputID{
			Bustype: consts.BusUsb,
			Vendor:  consts.VirtualVendor,
			Product: consts.VirtualProduct,
			Version: consts.VirtualVersion,
		},
	}

	fd, err := createUsbDevice(deviceFile, userDev)
	if err != nil {
		return nil, fmt.Errorf("USBデバイスの作成に失敗しました: %v", err)
	}
	return fd, nil
}

// デバイスファイルを作成する
func createDeviceFile(path string) (*os.File, error) {
	deviceFile, err := os.OpenFile(path, syscall.O_WRONLY|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, errors.New("デバイスファイルを開くのに失敗しました")
	}
	return deviceFile, nil
}

// デバイスを解放する
func releaseDevice(deviceFile *os.File) error {
	return utils.IOCtl(deviceFile, consts.DevDestroy, uintptr(0))
}

// デバイスを登録する
func registerDevice(deviceFile *os.File, evType uintptr) error {
	err := utils.IOCtl(deviceFile, consts.SetEvBit, evType)
	if err != nil {
		defer deviceFile.Close()
		if rerr := releaseDevice(deviceFile); rerr != nil {
			return fmt.Errorf("デバイスを解放するのに失敗しました: %v", rerr)
		}
		return fmt.Errorf("無効なファイルハンドルがutils.IOCtlから返されました: %v", err)
	}
	return nil
}

// USBデバイスを作成する
func createUsbDevice(deviceFile *os.File, dev types.UserDev) (*os.File, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, dev); err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("ユーザーデバイスバッファの書き込みに失敗しました: %v", err)
	}
	if _, err := deviceFile.Write(buf.Bytes()); err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("デバイス構造体をデバイスファイルに書き込むのに失敗しました: %v", err)
	}
	if err := utils.IOCtl(deviceFile, consts.DevCreate, uintptr(0)); err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("デバイスの作成に失敗しました: %v", err)
	}
	return deviceFile, nil
}

// イベントを書き込む
func writeEvents(w io.Writer, events []types.InputEvent) error {
	buf := new(bytes.Buffer)
	for _, ev := range events {
		if err := binary.Write(buf, binary.LittleEndian, ev); err != nil {
			return fmt.Errorf("イベントをバッファに書き込むのに失敗しました: %v", err)
		}
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("イベントの書き込みに失敗しました: %v", err)
	}
	return nil
}

// 名前をuinput用の固定長配列に変換する
func toUinputName(name []byte) (uinputName [consts.MaxNameSize]byte) {
	copy(uinputName[:], name)
	return uinputName
}
