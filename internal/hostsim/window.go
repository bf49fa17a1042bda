//go:build !tinygo && cgo

package hostsim

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/char5742/nspire-input/internal/features"
	"github.com/char5742/nspire-input/internal/keymap"
)

// 電卓のキー → PCのキー
// CLICK はマウスの右ボタン、タッチはマウスの左ボタンを押しながら動かす
var hostKeys = map[keymap.HWKey]ebiten.Key{
	keymap.KeyRet: ebiten.KeyEnter, keymap.KeyEnter: ebiten.KeyNumpadEnter,
	keymap.KeySpace: ebiten.KeySpace, keymap.KeyNegative: ebiten.KeyBackquote,
	keymap.KeyPeriod: ebiten.KeyPeriod, keymap.KeyComma: ebiten.KeyComma,
	keymap.KeyPlus: ebiten.KeyNumpadAdd, keymap.KeyMinus: ebiten.KeyMinus,
	keymap.KeyMultiply: ebiten.KeyNumpadMultiply, keymap.KeyDivide: ebiten.KeyNumpadDivide,
	keymap.KeyQues: ebiten.KeySlash, keymap.KeyColon: ebiten.KeySemicolon,
	keymap.KeyQuote: ebiten.KeyQuote, keymap.KeyApostrophe: ebiten.KeyBackslash,
	keymap.KeyLP: ebiten.KeyBracketLeft, keymap.KeyRP: ebiten.KeyBracketRight,
	keymap.KeyEqu: ebiten.KeyEqual, keymap.KeyDel: ebiten.KeyBackspace,
	keymap.KeyEsc: ebiten.KeyEscape, keymap.KeyTab: ebiten.KeyTab,
	keymap.KeyHome: ebiten.KeyHome, keymap.KeyMenu: ebiten.KeyContextMenu,
	keymap.KeyShift: ebiten.KeyShiftLeft, keymap.KeyCtrl: ebiten.KeyControlLeft,

	keymap.KeySin: ebiten.KeyF1, keymap.KeyCos: ebiten.KeyF2, keymap.KeyTan: ebiten.KeyF3,
	keymap.KeyExp: ebiten.KeyF4, keymap.KeySqu: ebiten.KeyF5, keymap.KeyII: ebiten.KeyF6,
	keymap.KeyTenX: ebiten.KeyF7, keymap.KeyEE: ebiten.KeyF8, keymap.KeyTheta: ebiten.KeyF9,
	keymap.KeyEExp: ebiten.KeyF10, keymap.KeyPi: ebiten.KeyF11, keymap.KeyCat: ebiten.KeyF12,

	keymap.KeyVar: ebiten.KeyNumpad0, keymap.KeyFlag: ebiten.KeyNumpad2,
	keymap.KeyLThan: ebiten.KeyNumpad4, keymap.KeyBar: ebiten.KeyNumpad5,
	keymap.KeyGThan: ebiten.KeyNumpad6, keymap.KeyScratchpad: ebiten.KeyNumpad8,
	keymap.KeyQuesExcl: ebiten.KeyNumpadDecimal, keymap.KeyDoc: ebiten.KeyInsert,
	keymap.KeyFrac: ebiten.KeyEnd, keymap.KeyTrig: ebiten.KeyDelete,

	keymap.KeyUp: ebiten.KeyArrowUp, keymap.KeyRight: ebiten.KeyArrowRight,
	keymap.KeyDown: ebiten.KeyArrowDown, keymap.KeyLeft: ebiten.KeyArrowLeft,
	keymap.KeyLeftUp: ebiten.KeyNumpad7, keymap.KeyUpRight: ebiten.KeyNumpad9,
	keymap.KeyRightDown: ebiten.KeyNumpad3, keymap.KeyDownLeft: ebiten.KeyNumpad1,

	keymap.Key0: ebiten.KeyDigit0, keymap.Key1: ebiten.KeyDigit1, keymap.Key2: ebiten.KeyDigit2,
	keymap.Key3: ebiten.KeyDigit3, keymap.Key4: ebiten.KeyDigit4, keymap.Key5: ebiten.KeyDigit5,
	keymap.Key6: ebiten.KeyDigit6, keymap.Key7: ebiten.KeyDigit7, keymap.Key8: ebiten.KeyDigit8,
	keymap.Key9: ebiten.KeyDigit9,

	keymap.KeyA: ebiten.KeyA, keymap.KeyB: ebiten.KeyB, keymap.KeyC: ebiten.KeyC,
	keymap.KeyD: ebiten.KeyD, keymap.KeyE: ebiten.KeyE, keymap.KeyF: ebiten.KeyF,
	keymap.KeyG: ebiten.KeyG, keymap.KeyH: ebiten.KeyH, keymap.KeyI: ebiten.KeyI,
	keymap.KeyJ: ebiten.KeyJ, keymap.KeyK: ebiten.KeyK, keymap.KeyL: ebiten.KeyL,
	keymap.KeyM: ebiten.KeyM, keymap.KeyN: ebiten.KeyN, keymap.KeyO: ebiten.KeyO,
	keymap.KeyP: ebiten.KeyP, keymap.KeyQ: ebiten.KeyQ, keymap.KeyR: ebiten.KeyR,
	keymap.KeyS: ebiten.KeyS, keymap.KeyT: ebiten.KeyT, keymap.KeyU: ebiten.KeyU,
	keymap.KeyV: ebiten.KeyV, keymap.KeyW: ebiten.KeyW, keymap.KeyX: ebiten.KeyX,
	keymap.KeyY: ebiten.KeyY, keymap.KeyZ: ebiten.KeyZ,
}

var background = color.RGBA{0x20, 0x24, 0x28, 0xff}

// Run はウィンドウを開き、閉じられるまで入力を dev に記録する
// メインゴルーチンから呼ぶこと
func Run(dev *Device, title string) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(ScreenWidth*2, ScreenHeight*2)
	ebiten.SetTPS(100)
	return ebiten.RunGame(&simGame{dev: dev})
}

type simGame struct {
	dev     *Device
	touch   features.TouchReport
	pressed []string
}

func (g *simGame) Update() error {
	var keys features.Snapshot
	g.pressed = g.pressed[:0]
	for hw, key := range hostKeys {
		if ebiten.IsKeyPressed(key) {
			keys.Set(hw, true)
			g.pressed = append(g.pressed, hw.String())
		}
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		keys.Set(keymap.KeyClick, true)
		g.pressed = append(g.pressed, keymap.KeyClick.String())
	}
	sort.Strings(g.pressed)

	x, y := ebiten.CursorPosition()
	g.touch = TouchFromCursor(x, y, ScreenWidth, ScreenHeight, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	g.dev.Set(keys, g.touch)
	return nil
}

func (g *simGame) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	msg := fmt.Sprintf("touch: x=%d y=%d contact=%v\nkeys: %s",
		g.touch.X, g.touch.Y, g.touch.Contact, strings.Join(g.pressed, " "))
	ebitenutil.DebugPrint(screen, msg)
}

func (g *simGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}
