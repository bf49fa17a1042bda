package keymap

import "fmt"

// HWKey はキーパッドマトリクス上の物理キー位置
// 上位8ビットが行、下位8ビットが列
type HWKey uint16

// キーパッドマトリクスの大きさ
const (
	NumRows = 9
	NumCols = 11
)

func hw(row, col int) HWKey { return HWKey(row<<8 | col) }

// Row は行番号を返す
func (k HWKey) Row() int { return int(k >> 8) }

// Col は列番号を返す
func (k HWKey) Col() int { return int(k & 0xff) }

// Mask は行レジスタ内のビットマスクを返す
func (k HWKey) Mask() uint16 { return 1 << uint(k.Col()) }

// Valid はマトリクスの範囲内かどうか
func (k HWKey) Valid() bool { return k.Row() < NumRows && k.Col() < NumCols }

func (k HWKey) String() string {
	if name, ok := hwNames[k]; ok {
		return name
	}
	return fmt.Sprintf("hw(%d,%d)", k.Row(), k.Col())
}

// 物理キー
var (
	KeyRet      = hw(0, 0)
	KeyEnter    = hw(0, 1)
	KeySpace    = hw(0, 2)
	KeyNegative = hw(0, 3)
	KeyZ        = hw(0, 4)
	KeyPeriod   = hw(0, 5)
	KeyY        = hw(0, 6)
	Key0        = hw(0, 7)
	KeyX        = hw(0, 8)
	KeyTheta    = hw(0, 9)

	KeyComma = hw(1, 0)
	KeyPlus  = hw(1, 1)
	KeyW     = hw(1, 2)
	Key3     = hw(1, 3)
	KeyV     = hw(1, 4)
	Key2     = hw(1, 5)
	KeyU     = hw(1, 6)
	Key1     = hw(1, 7)
	KeyT     = hw(1, 8)
	KeyEExp  = hw(1, 9)
	KeyPi    = hw(1, 10)

	KeyQues  = hw(2, 0)
	KeyMinus = hw(2, 1)
	KeyS     = hw(2, 2)
	Key6     = hw(2, 3)
	KeyR     = hw(2, 4)
	Key5     = hw(2, 5)
	KeyQ     = hw(2, 6)
	Key4     = hw(2, 7)
	KeyP     = hw(2, 8)
	KeyTenX  = hw(2, 9)
	KeyEE    = hw(2, 10)

	KeyColon    = hw(3, 0)
	KeyMultiply = hw(3, 1)
	KeyO        = hw(3, 2)
	Key9        = hw(3, 3)
	KeyN        = hw(3, 4)
	Key8        = hw(3, 5)
	KeyM        = hw(3, 6)
	Key7        = hw(3, 7)
	KeyL        = hw(3, 8)
	KeySqu      = hw(3, 9)
	KeyII       = hw(3, 10)

	KeyQuote  = hw(4, 0)
	KeyDivide = hw(4, 1)
	KeyK      = hw(4, 2)
	KeyTan    = hw(4, 3)
	KeyJ      = hw(4, 4)
	KeyCos    = hw(4, 5)
	KeyI      = hw(4, 6)
	KeySin    = hw(4, 7)
	KeyH      = hw(4, 8)
	KeyExp    = hw(4, 9)
	KeyGThan  = hw(4, 10)

	KeyApostrophe = hw(5, 0)
	KeyCat        = hw(5, 1)
	KeyFrac       = hw(5, 2)
	KeyG          = hw(5, 3)
	KeyRP         = hw(5, 4)
	KeyF          = hw(5, 5)
	KeyLP         = hw(5, 6)
	KeyE          = hw(5, 7)
	KeyVar        = hw(5, 8)
	KeyD          = hw(5, 9)
	KeyDel        = hw(5, 10)

	KeyLThan = hw(6, 0)
	KeyFlag  = hw(6, 1)
	KeyClick = hw(6, 2)
	KeyC     = hw(6, 3)
	KeyHome  = hw(6, 4)
	KeyB     = hw(6, 5)
	KeyMenu  = hw(6, 6)
	KeyA     = hw(6, 7)
	KeyEsc   = hw(6, 8)
	KeyBar   = hw(6, 9)
	KeyTab   = hw(6, 10)

	KeyEqu        = hw(7, 0)
	KeyShift      = hw(7, 1)
	KeyCtrl       = hw(7, 2)
	KeyDoc        = hw(7, 3)
	KeyTrig       = hw(7, 4)
	KeyScratchpad = hw(7, 5)
	KeyQuesExcl   = hw(7, 6)

	KeyUp        = hw(8, 0)
	KeyUpRight   = hw(8, 1)
	KeyRight     = hw(8, 2)
	KeyRightDown = hw(8, 3)
	KeyDown      = hw(8, 4)
	KeyDownLeft  = hw(8, 5)
	KeyLeft      = hw(8, 6)
	KeyLeftUp    = hw(8, 7)
)

var hwNames = map[HWKey]string{
	KeyRet: "ret", KeyEnter: "enter", KeySpace: "space", KeyNegative: "negative",
	KeyZ: "z", KeyPeriod: "period", KeyY: "y", Key0: "0", KeyX: "x", KeyTheta: "theta",
	KeyComma: "comma", KeyPlus: "plus", KeyW: "w", Key3: "3", KeyV: "v", Key2: "2",
	KeyU: "u", Key1: "1", KeyT: "t", KeyEExp: "eexp", KeyPi: "pi",
	KeyQues: "ques", KeyMinus: "minus", KeyS: "s", Key6: "6", KeyR: "r", Key5: "5",
	KeyQ: "q", Key4: "4", KeyP: "p", KeyTenX: "tenx", KeyEE: "ee",
	KeyColon: "colon", KeyMultiply: "multiply", KeyO: "o", Key9: "9", KeyN: "n",
	Key8: "8", KeyM: "m", Key7: "7", KeyL: "l", KeySqu: "squ", KeyII: "ii",
	KeyQuote: "quote", KeyDivide: "divide", KeyK: "k", KeyTan: "tan", KeyJ: "j",
	KeyCos: "cos", KeyI: "i", KeySin: "sin", KeyH: "h", KeyExp: "exp", KeyGThan: "gthan",
	KeyApostrophe: "apostrophe", KeyCat: "cat", KeyFrac: "frac", KeyG: "g", KeyRP: "rp",
	KeyF: "f", KeyLP: "lp", KeyE: "e", KeyVar: "var", KeyD: "d", KeyDel: "del",
	KeyLThan: "lthan", KeyFlag: "flag", KeyClick: "click", KeyC: "c", KeyHome: "home",
	KeyB: "b", KeyMenu: "menu", KeyA: "a", KeyEsc: "esc", KeyBar: "bar", KeyTab: "tab",
	KeyEqu: "equ", KeyShift: "shift", KeyCtrl: "ctrl", KeyDoc: "doc", KeyTrig: "trig",
	KeyScratchpad: "scratchpad", KeyQuesExcl: "quesexcl",
	KeyUp: "up", KeyUpRight: "upright", KeyRight: "right", KeyRightDown: "rightdown",
	KeyDown: "down", KeyDownLeft: "downleft", KeyLeft: "left", KeyLeftUp: "leftup",
}

// AllKeys はすべての物理キーを返す（行・列順）
func AllKeys() []HWKey {
	keys := make([]HWKey, 0, len(hwNames))
	for row := 0; row < NumRows; row++ {
		for col := 0; col < NumCols; col++ {
			if k := hw(row, col); hwNames[k] != "" {
				keys = append(keys, k)
			}
		}
	}
	return keys
}
