package event

// イベントタイプ
type Type uint8

const (
	TypeKeyDown Type = iota + 1
	TypeKeyUp
	TypeMouseButtonDown
	TypeMouseButtonUp
	TypeMouseMotion
)

func (t Type) String() string {
	switch t {
	case TypeKeyDown:
		return "keydown"
	case TypeKeyUp:
		return "keyup"
	case TypeMouseButtonDown:
		return "mousebuttondown"
	case TypeMouseButtonUp:
		return "mousebuttonup"
	case TypeMouseMotion:
		return "mousemotion"
	}
	return "unknown"
}

// State はキーやボタンの押下状態
type State uint8

const (
	Released State = iota
	Pressed
)

// StateOf は bool を State に変換する
func StateOf(pressed bool) State {
	if pressed {
		return Pressed
	}
	return Released
}

func (s State) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// Button はマウスボタン番号
type Button uint8

const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
	ButtonRight
)

// Event は入力イベントを表す構造体
type Event struct {
	Type     Type   `json:"type"`
	Key      Key    `json:"key,omitempty"`
	Scancode uint8  `json:"scancode,omitempty"` // 論理キースロット番号
	State    State  `json:"state"`
	Button   Button `json:"button,omitempty"`
	X        int16  `json:"x,omitempty"`
	Y        int16  `json:"y,omitempty"`
	Relative bool   `json:"relative,omitempty"`
}

// KeyEvent はキーの押下・解放イベントを作成する
func KeyEvent(code Key, scancode uint8, state State) Event {
	t := TypeKeyUp
	if state == Pressed {
		t = TypeKeyDown
	}
	return Event{Type: t, Key: code, Scancode: scancode, State: state}
}

// ButtonEvent はマウスボタンイベントを作成する
func ButtonEvent(state State, button Button, x, y int16) Event {
	t := TypeMouseButtonUp
	if state == Pressed {
		t = TypeMouseButtonDown
	}
	return Event{Type: t, State: state, Button: button, X: x, Y: y}
}

// MotionEvent はマウス移動イベントを作成する
func MotionEvent(relative bool, x, y int16) Event {
	return Event{Type: TypeMouseMotion, Relative: relative, X: x, Y: y}
}
