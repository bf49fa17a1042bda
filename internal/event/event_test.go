package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	assert.Equal(t, Event{Type: TypeKeyDown, Key: KeyA, Scancode: 73, State: Pressed}, KeyEvent(KeyA, 73, Pressed))
	assert.Equal(t, Event{Type: TypeKeyUp, Key: KeyA, Scancode: 73, State: Released}, KeyEvent(KeyA, 73, Released))
	assert.Equal(t, TypeMouseButtonDown, ButtonEvent(Pressed, ButtonLeft, 0, 0).Type)
	assert.Equal(t, TypeMouseButtonUp, ButtonEvent(Released, ButtonLeft, 0, 0).Type)

	m := MotionEvent(true, 3, -2)
	assert.Equal(t, TypeMouseMotion, m.Type)
	assert.True(t, m.Relative)
	assert.Equal(t, int16(3), m.X)
	assert.Equal(t, int16(-2), m.Y)
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(2)
	q.Dispatch(KeyEvent(KeyA, 0, Pressed))
	q.Dispatch(KeyEvent(KeyB, 0, Pressed))
	q.Dispatch(KeyEvent(KeyC, 0, Pressed))

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, uint64(1), q.Dropped())

	ev, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, KeyA, ev.Key)
	ev, ok = q.Poll()
	require.True(t, ok)
	assert.Equal(t, KeyB, ev.Key)
	_, ok = q.Poll()
	assert.False(t, ok)
}

func TestFanout(t *testing.T) {
	var a, b []Event
	f := Fanout{
		SinkFunc(func(ev Event) { a = append(a, ev) }),
		nil,
		SinkFunc(func(ev Event) { b = append(b, ev) }),
	}
	f.Dispatch(MotionEvent(true, 1, 1))
	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "a", KeyA.String())
	assert.Equal(t, "7", Key7.String())
	assert.Equal(t, "kp_enter", KeyKPEnter.String())
	assert.Equal(t, "key(500)", Key(500).String())
	assert.Equal(t, "pressed", Pressed.String())
	assert.Equal(t, "mousemotion", TypeMouseMotion.String())
}

func TestArrowKeyEvents(t *testing.T) {
	// 矢印キーのコードとイベントタイプは別物
	down := KeyEvent(KeyDown, 5, Pressed)
	assert.Equal(t, TypeKeyDown, down.Type)
	assert.Equal(t, Key(274), down.Key)

	up := KeyEvent(KeyUp, 5, Released)
	assert.Equal(t, TypeKeyUp, up.Type)
	assert.Equal(t, Key(273), up.Key)
	assert.Equal(t, "keyup", up.Type.String())
	assert.Equal(t, "up", up.Key.String())
}
