package keymap

import "github.com/char5742/nspire-input/internal/consts"

// PCキーボードで電卓キーを再現するための配置（evdev バックエンド用）
// 電卓固有のキーはファンクションキーなどに割り当てる
var linuxLayout = map[HWKey]uint16{
	KeyA: consts.KeyA, KeyB: consts.KeyB, KeyC: consts.KeyC, KeyD: consts.KeyD,
	KeyE: consts.KeyE, KeyF: consts.KeyF, KeyG: consts.KeyG, KeyH: consts.KeyH,
	KeyI: consts.KeyI, KeyJ: consts.KeyJ, KeyK: consts.KeyK, KeyL: consts.KeyL,
	KeyM: consts.KeyM, KeyN: consts.KeyN, KeyO: consts.KeyO, KeyP: consts.KeyP,
	KeyQ: consts.KeyQ, KeyR: consts.KeyR, KeyS: consts.KeyS, KeyT: consts.KeyT,
	KeyU: consts.KeyU, KeyV: consts.KeyV, KeyW: consts.KeyW, KeyX: consts.KeyX,
	KeyY: consts.KeyY, KeyZ: consts.KeyZ,

	Key0: consts.Key0, Key1: consts.Key1, Key2: consts.Key2, Key3: consts.Key3,
	Key4: consts.Key4, Key5: consts.Key5, Key6: consts.Key6, Key7: consts.Key7,
	Key8: consts.Key8, Key9: consts.Key9,

	KeyRet:        consts.KeyEnter,
	KeyEnter:      consts.KeyKPEnter,
	KeySpace:      consts.KeySpace,
	KeyNegative:   consts.KeyKPMinus,
	KeyMinus:      consts.KeyMinus,
	KeyPlus:       consts.KeyKPPlus,
	KeyMultiply:   consts.KeyKPAsterisk,
	KeyDivide:     consts.KeyKPSlash,
	KeyPeriod:     consts.KeyDot,
	KeyComma:      consts.KeyComma,
	KeyColon:      consts.KeySemicolon,
	KeyQuote:      consts.KeyApostrophe,
	KeyApostrophe: consts.KeyGrave,
	KeyQues:       consts.KeySlash,
	KeyQuesExcl:   consts.KeyPause,
	KeyLP:         consts.KeyKPLeftParen,
	KeyRP:         consts.KeyKPRightParen,
	KeyEqu:        consts.KeyEqual,
	KeyLThan:      consts.Key102nd,
	KeyGThan:      consts.KeyRightBrace,
	KeyTheta:      consts.KeyBackslash,
	KeyExp:        consts.KeyLeftBrace,
	KeyDel:        consts.KeyBackspace,
	KeyEsc:        consts.KeyEsc,
	KeyTab:        consts.KeyTab,
	KeyShift:      consts.KeyLeftShift,
	KeyCtrl:       consts.KeyLeftCtrl,
	KeyHome:       consts.KeyHome,
	KeyMenu:       consts.KeyCompose,
	KeyClick:      consts.KeyRightCtrl,
	KeyFlag:       consts.KeyScrollLock,
	KeyBar:        consts.KeyEnd,
	KeyTan:        consts.KeyInsert,
	KeyCos:        consts.KeyPageUp,
	KeySin:        consts.KeyPageDown,

	KeyTrig:       consts.KeyF1,
	KeySqu:        consts.KeyF2,
	KeyTenX:       consts.KeyF3,
	KeyEE:         consts.KeyF4,
	KeyII:         consts.KeyF5,
	KeyEExp:       consts.KeyF6,
	KeyPi:         consts.KeyF7,
	KeyCat:        consts.KeyF8,
	KeyFrac:       consts.KeyF9,
	KeyScratchpad: consts.KeyF10,
	KeyDoc:        consts.KeyF11,
	KeyVar:        consts.KeyF12,

	KeyUp:        consts.KeyUp,
	KeyRight:     consts.KeyRight,
	KeyDown:      consts.KeyDown,
	KeyLeft:      consts.KeyLeft,
	KeyUpRight:   consts.KeyKP9,
	KeyRightDown: consts.KeyKP3,
	KeyDownLeft:  consts.KeyKP1,
	KeyLeftUp:    consts.KeyKP7,
}

// LinuxCode は電卓キーに割り当てた Linux キーコードを返す
func LinuxCode(k HWKey) (uint16, bool) {
	code, ok := linuxLayout[k]
	return code, ok
}
