// Package keymap は電卓キーパッドの物理キーと出力キーコードの対応表を持つ。
// 対応表は固定で、実行時に変更しない。
package keymap

import "github.com/char5742/nspire-input/internal/event"

// Slot は論理キースロット
type Slot uint8

const (
	SlotRet Slot = iota
	SlotEnter
	SlotSpace
	SlotNegative
	SlotZ
	SlotPeriod
	SlotY
	Slot0
	SlotX
	SlotTheta
	SlotComma
	SlotPlus
	SlotW
	Slot3
	SlotV
	Slot2
	SlotU
	Slot1
	SlotT
	SlotEExp
	SlotPi
	SlotQues
	SlotQuesExcl
	SlotMinus
	SlotS
	Slot6
	SlotR
	Slot5
	SlotQ
	Slot4
	SlotP
	SlotTenX
	SlotEE
	SlotColon
	SlotMultiply
	SlotO
	Slot9
	SlotN
	Slot8
	SlotM
	Slot7
	SlotL
	SlotSqu
	SlotII
	SlotQuote
	SlotDivide
	SlotK
	SlotTan
	SlotJ
	SlotCos
	SlotI
	SlotSin
	SlotH
	SlotExp
	SlotGThan
	SlotApostrophe
	SlotCat
	SlotFrac
	SlotG
	SlotRP
	SlotF
	SlotLP
	SlotE
	SlotVar
	SlotD
	SlotDel
	SlotLThan
	SlotFlag
	SlotClick
	SlotC
	SlotHome
	SlotB
	SlotMenu
	SlotA
	SlotEsc
	SlotBar
	SlotTab
	SlotEqu
	SlotShift
	SlotCtrl
	SlotDoc
	SlotTrig
	SlotScratchpad

	NumSlots int = iota
)

// スロット → 物理キー
var hardware = [NumSlots]HWKey{
	SlotRet:        KeyRet,
	SlotEnter:      KeyEnter,
	SlotSpace:      KeySpace,
	SlotNegative:   KeyNegative,
	SlotZ:          KeyZ,
	SlotPeriod:     KeyPeriod,
	SlotY:          KeyY,
	Slot0:          Key0,
	SlotX:          KeyX,
	SlotTheta:      KeyTheta,
	SlotComma:      KeyComma,
	SlotPlus:       KeyPlus,
	SlotW:          KeyW,
	Slot3:          Key3,
	SlotV:          KeyV,
	Slot2:          Key2,
	SlotU:          KeyU,
	Slot1:          Key1,
	SlotT:          KeyT,
	SlotEExp:       KeyEExp,
	SlotPi:         KeyPi,
	SlotQues:       KeyQues,
	SlotQuesExcl:   KeyQuesExcl,
	SlotMinus:      KeyMinus,
	SlotS:          KeyS,
	Slot6:          Key6,
	SlotR:          KeyR,
	Slot5:          Key5,
	SlotQ:          KeyQ,
	Slot4:          Key4,
	SlotP:          KeyP,
	SlotTenX:       KeyTenX,
	SlotEE:         KeyEE,
	SlotColon:      KeyColon,
	SlotMultiply:   KeyMultiply,
	SlotO:          KeyO,
	Slot9:          Key9,
	SlotN:          KeyN,
	Slot8:          Key8,
	SlotM:          KeyM,
	Slot7:          Key7,
	SlotL:          KeyL,
	SlotSqu:        KeySqu,
	SlotII:         KeyII,
	SlotQuote:      KeyQuote,
	SlotDivide:     KeyDivide,
	SlotK:          KeyK,
	SlotTan:        KeyTan,
	SlotJ:          KeyJ,
	SlotCos:        KeyCos,
	SlotI:          KeyI,
	SlotSin:        KeySin,
	SlotH:          KeyH,
	SlotExp:        KeyExp,
	SlotGThan:      KeyGThan,
	SlotApostrophe: KeyApostrophe,
	SlotCat:        KeyCat,
	SlotFrac:       KeyFrac,
	SlotG:          KeyG,
	SlotRP:         KeyRP,
	SlotF:          KeyF,
	SlotLP:         KeyLP,
	SlotE:          KeyE,
	SlotVar:        KeyVar,
	SlotD:          KeyD,
	SlotDel:        KeyDel,
	SlotLThan:      KeyLThan,
	SlotFlag:       KeyFlag,
	SlotClick:      KeyClick,
	SlotC:          KeyC,
	SlotHome:       KeyHome,
	SlotB:          KeyB,
	SlotMenu:       KeyMenu,
	SlotA:          KeyA,
	SlotEsc:        KeyEsc,
	SlotBar:        KeyBar,
	SlotTab:        KeyTab,
	SlotEqu:        KeyEqu,
	SlotShift:      KeyShift,
	SlotCtrl:       KeyCtrl,
	SlotDoc:        KeyDoc,
	SlotTrig:       KeyTrig,
	SlotScratchpad: KeyScratchpad,
}

// スロット → 出力キーコード
// ここにないスロットは KeyUnknown となり、ポーリングしない
var output = [NumSlots]event.Key{
	SlotA: event.KeyA,
	SlotB: event.KeyB,
	SlotC: event.KeyC,
	SlotD: event.KeyD,
	SlotE: event.KeyE,
	SlotF: event.KeyF,
	SlotG: event.KeyG,
	SlotH: event.KeyH,
	SlotI: event.KeyI,
	SlotJ: event.KeyJ,
	SlotK: event.KeyK,
	SlotL: event.KeyL,
	SlotM: event.KeyM,
	SlotN: event.KeyN,
	SlotO: event.KeyO,
	SlotP: event.KeyP,
	SlotQ: event.KeyQ,
	SlotR: event.KeyR,
	SlotS: event.KeyS,
	SlotT: event.KeyT,
	SlotU: event.KeyU,
	SlotV: event.KeyV,
	SlotW: event.KeyW,
	SlotX: event.KeyX,
	SlotY: event.KeyY,
	SlotZ: event.KeyZ,
	Slot0: event.Key0,
	Slot1: event.Key1,
	Slot2: event.Key2,
	Slot3: event.Key3,
	Slot4: event.Key4,
	Slot5: event.Key5,
	Slot6: event.Key6,
	Slot7: event.Key7,
	Slot8: event.Key8,
	Slot9: event.Key9,

	SlotRet:        event.KeyReturn,
	SlotEnter:      event.KeyKPEnter,
	SlotSpace:      event.KeySpace,
	SlotNegative:   event.KeyMinus,
	SlotPeriod:     event.KeyPeriod,
	SlotComma:      event.KeyComma,
	SlotPlus:       event.KeyPlus,
	SlotMinus:      event.KeyMinus,
	SlotColon:      event.KeyColon,
	SlotMultiply:   event.KeyAsterisk,
	SlotQuote:      event.KeyQuoteDbl,
	SlotDivide:     event.KeySlash,
	SlotApostrophe: event.KeyQuote,
	SlotRP:         event.KeyRightParen,
	SlotLP:         event.KeyLeftParen,
	SlotDel:        event.KeyBackspace,
	SlotEsc:        event.KeyEscape,
	SlotTab:        event.KeyTab,
	SlotEqu:        event.KeyEquals,
	SlotShift:      event.KeyLShift,
	SlotCtrl:       event.KeyLCtrl,
	SlotLThan:      event.KeyLess,
	SlotGThan:      event.KeyGreater,
	SlotHome:       event.KeyHome,
	SlotMenu:       event.KeyMenu,
	SlotExp:        event.KeyCaret,
	SlotQues:       event.KeyQuestion,
	// SlotClick はマウス左ボタンとして扱う
}

// 矢印キーの出力コード（上・右・下・左の順）
var Arrows = [4]event.Key{event.KeyUp, event.KeyRight, event.KeyDown, event.KeyLeft}

// 矢印ごとの物理キー。斜めキーは隣接する2方向の両方に効く
var arrowKeys = [4][3]HWKey{
	{KeyLeftUp, KeyUp, KeyUpRight},
	{KeyUpRight, KeyRight, KeyRightDown},
	{KeyRightDown, KeyDown, KeyDownLeft},
	{KeyDownLeft, KeyLeft, KeyLeftUp},
}

// Hardware はスロットに対応する物理キーを返す
func Hardware(s Slot) HWKey { return hardware[s] }

// Output はスロットに対応する出力キーコードを返す
func Output(s Slot) event.Key { return output[s] }

// ArrowKeys は矢印 i を押したとみなす物理キーを返す
func ArrowKeys(i int) [3]HWKey { return arrowKeys[i] }

// Lookup は出力キーコードを生成するスロットを返す
func Lookup(code event.Key) []Slot {
	var slots []Slot
	for i := 0; i < NumSlots; i++ {
		if output[i] == code {
			slots = append(slots, Slot(i))
		}
	}
	return slots
}

// Entry は対応表の1行
type Entry struct {
	Slot     Slot      `json:"slot"`
	Name     string    `json:"name"`
	Hardware HWKey     `json:"hardware"`
	Output   event.Key `json:"output"`
}

// Entries は対応表全体を返す
func Entries() []Entry {
	entries := make([]Entry, NumSlots)
	for i := range entries {
		entries[i] = Entry{
			Slot:     Slot(i),
			Name:     hardware[i].String(),
			Hardware: hardware[i],
			Output:   output[i],
		}
	}
	return entries
}

func (s Slot) String() string {
	if int(s) >= NumSlots {
		return "invalid"
	}
	return hardware[s].String()
}
