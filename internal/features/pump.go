package features

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/char5742/nspire-input/internal/event"
	"github.com/char5742/nspire-input/internal/keymap"
)

// DefaultDeltaDivisor はタッチ座標の差分を移動量に変換するときの除数
const DefaultDeltaDivisor = 15

// Pump はデバイスの状態を前回の状態と比較し、変化をイベントとして送る
// 1つのゴルーチンからのみ呼び出すこと
type Pump struct {
	keypad Keypad
	touch  TouchPad
	sink   event.Sink
	log    *zerolog.Logger

	keyState   [keymap.NumSlots]bool
	arrowState [4]bool
	oldPressed bool

	oldX       int16
	oldY       int16
	oldContact bool

	divisor int
	invertY bool
	filter  *MotionFilter
}

// PumpOption は Pump の設定
type PumpOption func(*Pump)

// WithDeltaDivisor はタッチ移動量の除数を設定する
func WithDeltaDivisor(d int) PumpOption {
	return func(p *Pump) {
		if d > 0 {
			p.divisor = d
		}
	}
}

// WithInvertY はY軸を反転するかどうかを設定する
func WithInvertY(invert bool) PumpOption {
	return func(p *Pump) { p.invertY = invert }
}

// WithMotionFilter は移動量の平滑化フィルターを設定する
func WithMotionFilter(f *MotionFilter) PumpOption {
	return func(p *Pump) { p.filter = f }
}

// WithLogger はロガーを設定する
func WithLogger(l *zerolog.Logger) PumpOption {
	return func(p *Pump) { p.log = l }
}

// NewPump は新しい Pump を作成する
// touch が nil の場合はマウスイベントを出さない
func NewPump(keypad Keypad, touch TouchPad, sink event.Sink, opts ...PumpOption) *Pump {
	nop := zerolog.Nop()
	p := &Pump{
		keypad:  keypad,
		touch:   touch,
		sink:    sink,
		log:     &nop,
		divisor: DefaultDeltaDivisor,
		invertY: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply は動作中の Pump に設定を反映する
// 覚えているキーの状態はそのまま残す
func (p *Pump) Apply(opts ...PumpOption) {
	for _, opt := range opts {
		opt(p)
	}
}

// PumpEvents は1周期分のポーリングを行う
func (p *Pump) PumpEvents() error {
	if err := p.refresh(); err != nil {
		return err
	}
	p.updateKeyboard()
	p.updateArrowKeys()
	if p.touch != nil {
		p.updateMouse()
	}
	return nil
}

func (p *Pump) refresh() error {
	ks, ok := p.keypad.(Scanner)
	if ok {
		if err := ks.Refresh(); err != nil {
			return fmt.Errorf("キーパッドの読み込みに失敗しました: %w", err)
		}
	}
	// キーパッドとタッチパッドが同じデバイスなら読み込みは1回でよい
	if ts, ok2 := p.touch.(Scanner); ok2 && !(ok && ts == ks) {
		if err := ts.Refresh(); err != nil {
			return fmt.Errorf("タッチパッドの読み込みに失敗しました: %w", err)
		}
	}
	return nil
}

func (p *Pump) updateKeyboard() {
	for i := 0; i < keymap.NumSlots; i++ {
		slot := keymap.Slot(i)
		code := keymap.Output(slot)
		if code == event.KeyUnknown {
			continue
		}
		pressed := p.keypad.IsKeyPressed(keymap.Hardware(slot))
		p.updateKey(code, uint8(i), &p.keyState[i], pressed)
	}

	// タッチパッドのクリックはマウス左ボタン
	pressed := p.keypad.IsKeyPressed(keymap.Hardware(keymap.SlotClick))
	if pressed != p.oldPressed {
		p.sink.Dispatch(event.ButtonEvent(event.StateOf(pressed), event.ButtonLeft, 0, 0))
	}
	p.oldPressed = pressed
}

func (p *Pump) updateArrowKeys() {
	for i := range keymap.Arrows {
		pressed := false
		for _, k := range keymap.ArrowKeys(i) {
			if p.keypad.IsKeyPressed(k) {
				pressed = true
				break
			}
		}
		p.updateKey(keymap.Arrows[i], uint8(i), &p.arrowState[i], pressed)
	}
}

// updateKey は状態が変わったときだけイベントを送る
func (p *Pump) updateKey(code event.Key, scancode uint8, state *bool, pressed bool) {
	if *state == pressed {
		return
	}
	*state = pressed
	p.log.Trace().Stringer("key", code).Bool("pressed", pressed).Msg("key")
	p.sink.Dispatch(event.KeyEvent(code, scancode, event.StateOf(pressed)))
}

func (p *Pump) updateMouse() {
	tp := p.touch.Scan()
	if tp.Contact {
		if p.oldContact {
			dx, dy := p.delta(tp)
			if p.filter != nil {
				dx, dy = p.filter.Filter(dx, dy)
			}
			if dx != 0 || dy != 0 {
				p.sink.Dispatch(event.MotionEvent(true, dx, dy))
			}
		}
		p.oldX = tp.X
		p.oldY = tp.Y
	} else if p.oldContact && p.filter != nil {
		p.filter.Reset()
	}
	p.oldContact = tp.Contact
}

// delta は前回のサンプルからの移動量を返す（0方向への切り捨て）
func (p *Pump) delta(tp TouchReport) (int16, int16) {
	dx := (int(tp.X) - int(p.oldX)) / p.divisor
	dy := (int(tp.Y) - int(p.oldY)) / p.divisor
	if p.invertY {
		dy = -dy
	}
	return int16(dx), int16(dy)
}

// ReleaseAll は押されたままのキーとボタンの解放イベントを送り、状態を初期化する
func (p *Pump) ReleaseAll() {
	for i := 0; i < keymap.NumSlots; i++ {
		if p.keyState[i] {
			p.updateKey(keymap.Output(keymap.Slot(i)), uint8(i), &p.keyState[i], false)
		}
	}
	for i := range p.arrowState {
		if p.arrowState[i] {
			p.updateKey(keymap.Arrows[i], uint8(i), &p.arrowState[i], false)
		}
	}
	if p.oldPressed {
		p.sink.Dispatch(event.ButtonEvent(event.Released, event.ButtonLeft, 0, 0))
	}
	p.Reset()
}

// Reset は記憶している状態をすべて忘れる
func (p *Pump) Reset() {
	p.keyState = [keymap.NumSlots]bool{}
	p.arrowState = [4]bool{}
	p.oldPressed = false
	p.oldX, p.oldY = 0, 0
	p.oldContact = false
	if p.filter != nil {
		p.filter.Reset()
	}
}

// KeyState はスロットの現在の記憶状態を返す
func (p *Pump) KeyState(s keymap.Slot) bool { return p.keyState[s] }
