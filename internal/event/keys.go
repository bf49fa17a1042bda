package event

import "strconv"

// Key は出力キーコード（SDL 1.2 の SDLKey と同じ値）
type Key int32

const (
	KeyUnknown    Key = 0
	KeyBackspace  Key = 8
	KeyTab        Key = 9
	KeyReturn     Key = 13
	KeyEscape     Key = 27
	KeySpace      Key = 32
	KeyQuoteDbl   Key = 34
	KeyQuote      Key = 39
	KeyLeftParen  Key = 40
	KeyRightParen Key = 41
	KeyAsterisk   Key = 42
	KeyPlus       Key = 43
	KeyComma      Key = 44
	KeyMinus      Key = 45
	KeyPeriod     Key = 46
	KeySlash      Key = 47
	Key0          Key = 48
	Key1          Key = 49
	Key2          Key = 50
	Key3          Key = 51
	Key4          Key = 52
	Key5          Key = 53
	Key6          Key = 54
	Key7          Key = 55
	Key8          Key = 56
	Key9          Key = 57
	KeyColon      Key = 58
	KeyLess       Key = 60
	KeyEquals     Key = 61
	KeyGreater    Key = 62
	KeyQuestion   Key = 63
	KeyCaret      Key = 94
	KeyA          Key = 97
	KeyB          Key = 98
	KeyC          Key = 99
	KeyD          Key = 100
	KeyE          Key = 101
	KeyF          Key = 102
	KeyG          Key = 103
	KeyH          Key = 104
	KeyI          Key = 105
	KeyJ          Key = 106
	KeyK          Key = 107
	KeyL          Key = 108
	KeyM          Key = 109
	KeyN          Key = 110
	KeyO          Key = 111
	KeyP          Key = 112
	KeyQ          Key = 113
	KeyR          Key = 114
	KeyS          Key = 115
	KeyT          Key = 116
	KeyU          Key = 117
	KeyV          Key = 118
	KeyW          Key = 119
	KeyX          Key = 120
	KeyY          Key = 121
	KeyZ          Key = 122
	KeyKPEnter    Key = 271
	KeyUp         Key = 273
	KeyDown       Key = 274
	KeyRight      Key = 275
	KeyLeft       Key = 276
	KeyHome       Key = 278
	KeyLShift     Key = 304
	KeyLCtrl      Key = 306
	KeyMenu       Key = 319
)

var keyNames = map[Key]string{
	KeyUnknown:    "unknown",
	KeyBackspace:  "backspace",
	KeyTab:        "tab",
	KeyReturn:     "return",
	KeyEscape:     "escape",
	KeySpace:      "space",
	KeyQuoteDbl:   "quotedbl",
	KeyQuote:      "quote",
	KeyLeftParen:  "leftparen",
	KeyRightParen: "rightparen",
	KeyAsterisk:   "asterisk",
	KeyPlus:       "plus",
	KeyComma:      "comma",
	KeyMinus:      "minus",
	KeyPeriod:     "period",
	KeySlash:      "slash",
	KeyColon:      "colon",
	KeyLess:       "less",
	KeyEquals:     "equals",
	KeyGreater:    "greater",
	KeyQuestion:   "question",
	KeyCaret:      "caret",
	KeyKPEnter:    "kp_enter",
	KeyUp:         "up",
	KeyDown:       "down",
	KeyRight:      "right",
	KeyLeft:       "left",
	KeyHome:       "home",
	KeyLShift:     "lshift",
	KeyLCtrl:      "lctrl",
	KeyMenu:       "menu",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	// 数字と英字はそのまま文字として表示する
	if (k >= Key0 && k <= Key9) || (k >= KeyA && k <= KeyZ) {
		return string(rune(k))
	}
	return "key(" + strconv.Itoa(int(k)) + ")"
}
