package features

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/char5742/nspire-input/internal/event"
	"github.com/char5742/nspire-input/internal/keymap"
)

type fakeKeypad struct {
	down      map[keymap.HWKey]bool
	err       error
	refreshes int
}

func newFakeKeypad() *fakeKeypad {
	return &fakeKeypad{down: make(map[keymap.HWKey]bool)}
}

func (f *fakeKeypad) IsKeyPressed(k keymap.HWKey) bool { return f.down[k] }

func (f *fakeKeypad) press(keys ...keymap.HWKey) {
	for _, k := range keys {
		f.down[k] = true
	}
}

func (f *fakeKeypad) release(keys ...keymap.HWKey) {
	for _, k := range keys {
		delete(f.down, k)
	}
}

type fakeTouch struct {
	report TouchReport
}

func (f *fakeTouch) Scan() TouchReport { return f.report }

func (f *fakeTouch) touch(x, y int16) { f.report = TouchReport{X: x, Y: y, Contact: true} }

func (f *fakeTouch) lift() { f.report.Contact = false }

// 更新前に Refresh を数えるデバイス
type scanningKeypad struct {
	*fakeKeypad
}

func (s scanningKeypad) Refresh() error {
	s.refreshes++
	return s.err
}

type recorder struct {
	events []event.Event
}

func (r *recorder) Dispatch(ev event.Event) { r.events = append(r.events, ev) }

func (r *recorder) take() []event.Event {
	evs := r.events
	r.events = nil
	return evs
}

func newTestPump(opts ...PumpOption) (*Pump, *fakeKeypad, *fakeTouch, *recorder) {
	kp := newFakeKeypad()
	tp := &fakeTouch{}
	rec := &recorder{}
	return NewPump(kp, tp, rec, opts...), kp, tp, rec
}

func TestPumpKeyEdges(t *testing.T) {
	p, kp, _, rec := newTestPump()

	require.NoError(t, p.PumpEvents())
	assert.Empty(t, rec.take(), "何も押されていなければイベントは出ない")

	kp.press(keymap.KeyA)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{event.KeyEvent(event.KeyA, uint8(keymap.SlotA), event.Pressed)}, rec.take())
	assert.True(t, p.KeyState(keymap.SlotA))

	// 押しっぱなしでは何も出ない
	require.NoError(t, p.PumpEvents())
	require.NoError(t, p.PumpEvents())
	assert.Empty(t, rec.take())

	kp.release(keymap.KeyA)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{event.KeyEvent(event.KeyA, uint8(keymap.SlotA), event.Released)}, rec.take())
	assert.False(t, p.KeyState(keymap.SlotA))
}

func TestPumpIgnoresUnmappedKeys(t *testing.T) {
	p, kp, _, rec := newTestPump()

	kp.press(keymap.KeyTheta, keymap.KeyPi, keymap.KeyDoc, keymap.KeyScratchpad)
	require.NoError(t, p.PumpEvents())
	assert.Empty(t, rec.take())
}

func TestPumpTwoSlotsSameCode(t *testing.T) {
	p, kp, _, rec := newTestPump()

	kp.press(keymap.KeyNegative, keymap.KeyMinus)
	require.NoError(t, p.PumpEvents())
	evs := rec.take()
	require.Len(t, evs, 2)
	assert.Equal(t, event.KeyMinus, evs[0].Key)
	assert.Equal(t, uint8(keymap.SlotNegative), evs[0].Scancode)
	assert.Equal(t, event.KeyMinus, evs[1].Key)
	assert.Equal(t, uint8(keymap.SlotMinus), evs[1].Scancode)
}

func TestPumpClickIsLeftButton(t *testing.T) {
	p, kp, _, rec := newTestPump()

	kp.press(keymap.KeyClick)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{event.ButtonEvent(event.Pressed, event.ButtonLeft, 0, 0)}, rec.take())

	require.NoError(t, p.PumpEvents())
	assert.Empty(t, rec.take())

	kp.release(keymap.KeyClick)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{event.ButtonEvent(event.Released, event.ButtonLeft, 0, 0)}, rec.take())
}

func TestPumpArrowDiagonals(t *testing.T) {
	p, kp, _, rec := newTestPump()

	kp.press(keymap.KeyUpRight)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{
		event.KeyEvent(event.KeyUp, 0, event.Pressed),
		event.KeyEvent(event.KeyRight, 1, event.Pressed),
	}, rec.take())

	// 斜めから真上に移ると右だけ離れる
	kp.release(keymap.KeyUpRight)
	kp.press(keymap.KeyUp)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{event.KeyEvent(event.KeyRight, 1, event.Released)}, rec.take())

	kp.release(keymap.KeyUp)
	kp.press(keymap.KeyDownLeft)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{
		event.KeyEvent(event.KeyUp, 0, event.Released),
		event.KeyEvent(event.KeyDown, 2, event.Pressed),
		event.KeyEvent(event.KeyLeft, 3, event.Pressed),
	}, rec.take())
}

func TestPumpTouchMotion(t *testing.T) {
	p, _, tp, rec := newTestPump()

	// 最初の接触では移動しない
	tp.touch(1000, 1000)
	require.NoError(t, p.PumpEvents())
	assert.Empty(t, rec.take())

	tp.touch(1030, 1045)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{event.MotionEvent(true, 2, -3)}, rec.take())

	// 除数未満の移動は捨てられ、基準点は更新される
	tp.touch(1040, 1045)
	require.NoError(t, p.PumpEvents())
	tp.touch(1050, 1045)
	require.NoError(t, p.PumpEvents())
	assert.Empty(t, rec.take())

	// 負の方向は0に向かって切り捨て
	tp.touch(1021, 1074)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{event.MotionEvent(true, -1, -1)}, rec.take())
}

func TestPumpTouchLiftResetsOrigin(t *testing.T) {
	p, _, tp, rec := newTestPump()

	tp.touch(100, 100)
	require.NoError(t, p.PumpEvents())
	tp.lift()
	require.NoError(t, p.PumpEvents())

	// 離れた位置に触れ直しても移動は出ない
	tp.touch(2000, 1500)
	require.NoError(t, p.PumpEvents())
	assert.Empty(t, rec.take())

	tp.touch(2015, 1500)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{event.MotionEvent(true, 1, 0)}, rec.take())
}

func TestPumpOptions(t *testing.T) {
	p, _, tp, rec := newTestPump(WithDeltaDivisor(5), WithInvertY(false))

	tp.touch(0, 0)
	require.NoError(t, p.PumpEvents())
	tp.touch(10, 20)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{event.MotionEvent(true, 2, 4)}, rec.take())

	// 0以下の除数は無視される
	p2, _, _, _ := newTestPump(WithDeltaDivisor(0))
	assert.Equal(t, DefaultDeltaDivisor, p2.divisor)
}

func TestPumpEventOrder(t *testing.T) {
	p, kp, tp, rec := newTestPump()
	tp.touch(0, 0)
	require.NoError(t, p.PumpEvents())

	kp.press(keymap.KeyB, keymap.KeyClick, keymap.KeyLeft)
	tp.touch(15, 0)
	require.NoError(t, p.PumpEvents())

	evs := rec.take()
	require.Len(t, evs, 4)
	assert.Equal(t, event.TypeKeyDown, evs[0].Type)
	assert.Equal(t, event.TypeMouseButtonDown, evs[1].Type)
	assert.Equal(t, event.KeyLeft, evs[2].Key)
	assert.Equal(t, event.TypeMouseMotion, evs[3].Type)
}

func TestPumpScanErrorSkipsCycle(t *testing.T) {
	kp := scanningKeypad{newFakeKeypad()}
	rec := &recorder{}
	p := NewPump(kp, nil, rec)

	kp.press(keymap.KeyA)
	kp.err = errors.New("boom")
	assert.Error(t, p.PumpEvents())
	assert.Empty(t, rec.take())
	assert.False(t, p.KeyState(keymap.SlotA))

	kp.err = nil
	require.NoError(t, p.PumpEvents())
	assert.Len(t, rec.take(), 1)
	assert.Equal(t, 2, kp.refreshes)
}

type scanningDevice struct {
	*fakeKeypad
	fakeTouch
}

func (d *scanningDevice) Refresh() error {
	d.refreshes++
	return nil
}

func TestPumpRefreshesSharedDeviceOnce(t *testing.T) {
	dev := &scanningDevice{fakeKeypad: newFakeKeypad()}
	p := NewPump(dev, dev, &recorder{})

	require.NoError(t, p.PumpEvents())
	assert.Equal(t, 1, dev.refreshes)
}

func TestPumpReleaseAll(t *testing.T) {
	p, kp, _, rec := newTestPump()

	kp.press(keymap.KeyShift, keymap.KeyClick, keymap.KeyLeftUp)
	require.NoError(t, p.PumpEvents())
	rec.take()

	p.ReleaseAll()
	evs := rec.take()
	require.Len(t, evs, 4)
	for _, ev := range evs {
		assert.Equal(t, event.Released, ev.State)
	}

	// 状態は初期化されるので、押されたままなら次の周期で再び押下が出る
	require.NoError(t, p.PumpEvents())
	assert.Len(t, rec.take(), 4)
}

func TestPumpMotionFilterResetOnLift(t *testing.T) {
	f := NewMotionFilter(0.5, 0)
	p, _, tp, rec := newTestPump(WithMotionFilter(f))

	tp.touch(0, 0)
	require.NoError(t, p.PumpEvents())
	tp.touch(150, 0)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{event.MotionEvent(true, 10, 0)}, rec.take())
	assert.True(t, f.initialized)

	tp.lift()
	require.NoError(t, p.PumpEvents())
	assert.False(t, f.initialized)
}

func TestPumpApplyKeepsKeyState(t *testing.T) {
	p, kp, tp, rec := newTestPump()

	kp.press(keymap.KeyA)
	tp.touch(0, 0)
	require.NoError(t, p.PumpEvents())
	rec.take()

	p.Apply(WithDeltaDivisor(5), WithInvertY(false))
	tp.touch(10, 10)
	require.NoError(t, p.PumpEvents())
	assert.Equal(t, []event.Event{event.MotionEvent(true, 2, 2)}, rec.take(), "押されたままのキーは再送しない")
	assert.True(t, p.KeyState(keymap.SlotA))
}
