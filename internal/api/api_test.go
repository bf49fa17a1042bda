package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/char5742/nspire-input/internal/config"
	"github.com/char5742/nspire-input/internal/event"
	"github.com/char5742/nspire-input/internal/features"
	"github.com/char5742/nspire-input/internal/keymap"
)

type fakeDevice struct {
	mu     sync.Mutex
	down   map[keymap.HWKey]bool
	touch  features.TouchReport
	closed bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{down: make(map[keymap.HWKey]bool)}
}

func (d *fakeDevice) IsKeyPressed(k keymap.HWKey) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.down[k]
}

func (d *fakeDevice) Scan() features.TouchReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.touch
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDevice) press(k keymap.HWKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.down[k] = true
}

func (d *fakeDevice) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type syncRecorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *syncRecorder) Dispatch(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *syncRecorder) snapshot() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

func (r *syncRecorder) has(ev event.Event) bool {
	for _, e := range r.snapshot() {
		if e == ev {
			return true
		}
	}
	return false
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Pump.Interval = config.Duration{Duration: time.Millisecond}
	cfg.Output.Virtual = false
	return cfg
}

func newTestServer(t *testing.T, dev *fakeDevice, out *syncRecorder) (*Server, http.Handler) {
	t.Helper()
	s := NewServer(testConfig(), filepath.Join(t.TempDir(), "config.toml"), 0,
		WithOpener(func(*config.Config, *zerolog.Logger) (features.InputDevice, error) { return dev, nil }),
		WithOutputOpener(func(*config.Config, *zerolog.Logger) (event.Sink, io.Closer, error) { return out, nil, nil }),
	)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s, s.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealthAndCORS(t *testing.T) {
	_, h := newTestServer(t, newFakeDevice(), &syncRecorder{})

	rec, body := doJSON(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec, _ = doJSON(t, h, http.MethodOptions, "/api/config", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestConfigEndpoints(t *testing.T) {
	s, h := newTestServer(t, newFakeDevice(), &syncRecorder{})

	rec, body := doJSON(t, h, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1ms", body["pump"].(map[string]any)["interval"])

	rec, _ = doJSON(t, h, http.MethodPut, "/api/config", map[string]any{
		"motion": map[string]any{"delta_divisor": 5},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := s.GetConfig()
	assert.Equal(t, 5, cfg.Motion.DeltaDivisor)
	assert.Equal(t, config.BackendEvdev, cfg.Backend.Kind, "書かれていない項目はそのまま")

	rec, body = doJSON(t, h, http.MethodPut, "/api/config", map[string]any{
		"backend": map[string]any{"kind": "bluetooth"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "bluetooth")
	assert.Equal(t, config.BackendEvdev, s.GetConfig().Backend.Kind)

	path := filepath.Join(t.TempDir(), "saved.toml")
	rec, body = doJSON(t, h, http.MethodPost, "/api/config/save", map[string]string{"path": path})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, path, body["path"])
	saved, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, saved.Motion.DeltaDivisor)

	rec, body = doJSON(t, h, http.MethodPost, "/api/config/save", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, s.configPath, body["path"])
}

func TestSetPreferredDevices(t *testing.T) {
	s, h := newTestServer(t, newFakeDevice(), &syncRecorder{})

	rec, _ := doJSON(t, h, http.MethodPut, "/api/devices/preferred", map[string]string{
		"keyboard_device": "usb-kbd",
		"touchpad_device": "usb-pad",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "usb-kbd", s.GetConfig().Devices.PreferredKeyboard)
	assert.Equal(t, "usb-pad", s.GetConfig().Devices.PreferredTouchPad)

	rec, _ = doJSON(t, h, http.MethodPut, "/api/devices/preferred", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKeymapEndpoint(t *testing.T) {
	_, h := newTestServer(t, newFakeDevice(), &syncRecorder{})

	rec, body := doJSON(t, h, http.MethodGet, "/api/keymap", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slots := body["slots"].([]any)
	assert.Len(t, slots, keymap.NumSlots)
	arrows := body["arrows"].([]any)
	require.Len(t, arrows, 4)
	assert.Equal(t, float64(event.KeyUp), arrows[0].(map[string]any)["output"])
	assert.Len(t, arrows[0].(map[string]any)["keys"], 3)
}

func TestServiceLifecycle(t *testing.T) {
	dev := newFakeDevice()
	out := &syncRecorder{}
	_, h := newTestServer(t, dev, out)

	_, body := doJSON(t, h, http.MethodGet, "/api/service/status", nil)
	assert.Equal(t, "stopped", body["status"])

	rec, body := doJSON(t, h, http.MethodPost, "/api/service/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "started", body["status"])

	_, body = doJSON(t, h, http.MethodPost, "/api/service/start", nil)
	assert.Equal(t, "already_running", body["status"])

	dev.press(keymap.KeyA)
	down := event.KeyEvent(event.KeyA, uint8(keymap.SlotA), event.Pressed)
	require.Eventually(t, func() bool { return out.has(down) }, 2*time.Second, time.Millisecond)

	_, body = doJSON(t, h, http.MethodGet, "/api/service/status", nil)
	assert.Equal(t, "running", body["status"])
	assert.Greater(t, body["detail"].(map[string]any)["cycles"], float64(0))

	_, body = doJSON(t, h, http.MethodPost, "/api/service/stop", nil)
	assert.Equal(t, "stopped", body["status"])
	assert.True(t, dev.isClosed())

	// 停止時に押されたままのキーを離す
	up := event.KeyEvent(event.KeyA, uint8(keymap.SlotA), event.Released)
	assert.True(t, out.has(up))

	_, body = doJSON(t, h, http.MethodPost, "/api/service/stop", nil)
	assert.Equal(t, "not_running", body["status"])
}

func TestServiceStartError(t *testing.T) {
	s := NewServer(testConfig(), "", 0,
		WithOpener(func(*config.Config, *zerolog.Logger) (features.InputDevice, error) {
			return nil, errors.New("no keypad")
		}),
	)
	h := s.Handler()

	rec, body := doJSON(t, h, http.MethodPost, "/api/service/start", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body["error"], "no keypad")
	assert.False(t, s.Service().IsRunning())
	assert.Contains(t, s.Service().Status().LastError, "no keypad")
}

func TestServiceStatusWhileOpening(t *testing.T) {
	dev := newFakeDevice()
	entered := make(chan struct{})
	unblock := make(chan struct{})
	svc := NewPumpService(testConfig(),
		WithOpener(func(*config.Config, *zerolog.Logger) (features.InputDevice, error) {
			close(entered)
			<-unblock
			return dev, nil
		}),
		WithOutputOpener(func(*config.Config, *zerolog.Logger) (event.Sink, io.Closer, error) {
			return &syncRecorder{}, nil, nil
		}),
	)

	started := make(chan error, 1)
	go func() { started <- svc.Start() }()
	<-entered

	// デバイスを開いている間も状態は読める
	status := make(chan ServiceStatus, 1)
	go func() { status <- svc.Status() }()
	select {
	case st := <-status:
		assert.False(t, st.Running)
	case <-time.After(time.Second):
		t.Fatal("Status が Start の完了を待っている")
	}
	assert.False(t, svc.IsRunning())

	close(unblock)
	require.NoError(t, <-started)
	defer svc.Stop()
	assert.True(t, svc.IsRunning())
	assert.ErrorIs(t, svc.Start(), ErrAlreadyRunning)
}

func TestServiceConfigUpdate(t *testing.T) {
	dev := newFakeDevice()
	out := &syncRecorder{}
	svc := NewPumpService(testConfig(),
		WithOpener(func(*config.Config, *zerolog.Logger) (features.InputDevice, error) { return dev, nil }),
		WithOutputOpener(func(*config.Config, *zerolog.Logger) (event.Sink, io.Closer, error) { return out, nil, nil }),
	)

	cfg := testConfig()
	cfg.Motion.DeltaDivisor = 1
	cfg.Motion.InvertY = false
	svc.UpdateConfig(cfg)

	require.NoError(t, svc.Start())
	defer svc.Stop()

	dev.mu.Lock()
	dev.touch = features.TouchReport{X: 100, Y: 100, Contact: true}
	dev.mu.Unlock()
	require.Eventually(t, func() bool { return svc.Status().Cycles > 2 }, 2*time.Second, time.Millisecond)

	dev.mu.Lock()
	dev.touch = features.TouchReport{X: 103, Y: 104, Contact: true}
	dev.mu.Unlock()
	motion := event.MotionEvent(true, 3, 4)
	require.Eventually(t, func() bool { return out.has(motion) }, 2*time.Second, time.Millisecond)
}

func TestOpenBackendSim(t *testing.T) {
	cfg := testConfig()
	cfg.Backend.Kind = config.BackendSim
	nop := zerolog.Nop()
	_, err := OpenBackend(cfg, &nop)
	assert.ErrorIs(t, err, ErrSimBackend)

	cfg.Backend.Kind = "usb"
	_, err = OpenBackend(cfg, &nop)
	assert.Error(t, err)
}

func TestEventStream(t *testing.T) {
	s, h := newTestServer(t, newFakeDevice(), &syncRecorder{})
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/events", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool { return s.hub.Clients() == 1 }, 2*time.Second, time.Millisecond)
	_, body := doJSON(t, h, http.MethodGet, "/api/service/status", nil)
	assert.Equal(t, float64(1), body["subscribers"])

	want := event.KeyEvent(event.KeyReturn, 3, event.Pressed)
	s.hub.Dispatch(want)

	var got event.Event
	require.NoError(t, wsjson.Read(ctx, conn, &got))
	assert.Equal(t, want, got)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool { return s.hub.Clients() == 0 }, 2*time.Second, time.Millisecond)
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t, newFakeDevice(), &syncRecorder{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nspire_service_running")
}
