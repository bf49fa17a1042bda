package api

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/char5742/nspire-input/internal/config"
	"github.com/char5742/nspire-input/internal/event"
	"github.com/char5742/nspire-input/internal/features"
	"github.com/char5742/nspire-input/internal/logging"
	"github.com/char5742/nspire-input/internal/metrics"
)

var (
	ErrAlreadyRunning = errors.New("サービスは既に実行中です")
	ErrNotRunning     = errors.New("サービスは実行されていません")
	ErrSimBackend     = errors.New("sim バックエンドは nspsim からのみ使えます")
)

// Opener は設定に従って入力デバイスを開く
type Opener func(cfg *config.Config, log *zerolog.Logger) (features.InputDevice, error)

// OutputOpener は設定に従って出力先を開く
type OutputOpener func(cfg *config.Config, log *zerolog.Logger) (event.Sink, io.Closer, error)

// ServiceStatus はサービスの状態
type ServiceStatus struct {
	Running   bool   `json:"running"`
	Backend   string `json:"backend"`
	Cycles    uint64 `json:"cycles"`
	Events    uint64 `json:"events"`
	Dropped   uint64 `json:"dropped"`
	LastError string `json:"last_error,omitempty"`
}

// PumpService はデバイスを周期的に読み、イベントを配送するサービス
type PumpService struct {
	cfg          *config.Config
	open         Opener
	openOutput   OutputOpener
	sinks        []event.Sink
	log          *zerolog.Logger
	stopChan     chan struct{}
	done         chan struct{}
	running      bool
	startMutex   sync.Mutex
	statusMutex  sync.RWMutex
	updateConfig chan *config.Config

	status ServiceStatus
}

// ServiceOption は PumpService の設定
type ServiceOption func(*PumpService)

// WithOpener は入力デバイスの開き方を差し替える
func WithOpener(open Opener) ServiceOption {
	return func(s *PumpService) { s.open = open }
}

// WithOutputOpener は出力先の開き方を差し替える
func WithOutputOpener(open OutputOpener) ServiceOption {
	return func(s *PumpService) { s.openOutput = open }
}

// WithSinks はイベントの配送先を追加する
func WithSinks(sinks ...event.Sink) ServiceOption {
	return func(s *PumpService) { s.sinks = append(s.sinks, sinks...) }
}

// NewPumpService は新しいサービスを作成する
func NewPumpService(cfg *config.Config, opts ...ServiceOption) *PumpService {
	s := &PumpService{
		cfg:          cfg,
		open:         OpenBackend,
		openOutput:   OpenOutput,
		log:          logging.Logger("service"),
		updateConfig: make(chan *config.Config, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start はサービスを開始する
// デバイスを開いている間も Status や IsRunning は待たされない
func (s *PumpService) Start() error {
	s.startMutex.Lock()
	defer s.startMutex.Unlock()

	s.statusMutex.Lock()
	if s.running {
		s.statusMutex.Unlock()
		return ErrAlreadyRunning
	}
	// 起動前に届いた設定を反映する
	select {
	case cfg := <-s.updateConfig:
		s.cfg = cfg
	default:
	}
	cfg := s.cfg
	s.statusMutex.Unlock()

	device, err := s.open(cfg, s.log)
	if err != nil {
		s.setStatus(func(st *ServiceStatus) { st.LastError = err.Error() })
		return fmt.Errorf("入力デバイスを開けませんでした: %w", err)
	}

	output, closer, err := s.openOutput(cfg, s.log)
	if err != nil {
		_ = device.Close()
		s.setStatus(func(st *ServiceStatus) { st.LastError = err.Error() })
		return fmt.Errorf("出力先を開けませんでした: %w", err)
	}

	queue := event.NewQueue(cfg.Output.QueueSize)
	pumpLog := logging.Logger("pump")
	pump := features.NewPump(device, device, metrics.Sink(queue),
		append(pumpOptions(cfg), features.WithLogger(pumpLog))...)

	targets := append(event.Fanout{output}, s.sinks...)

	s.statusMutex.Lock()
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	s.status = ServiceStatus{Running: true, Backend: cfg.Backend.Kind}
	stop, done := s.stopChan, s.done
	s.statusMutex.Unlock()
	metrics.ServiceRunning.Set(1)

	go s.runPumpLoop(cfg, device, pump, queue, targets, closer, stop, done)

	s.log.Info().Str("backend", cfg.Backend.Kind).Dur("interval", cfg.Pump.Interval.Duration).Msg("サービスを開始しました")
	return nil
}

// Stop はサービスを停止し、ループの終了を待つ
func (s *PumpService) Stop() error {
	s.statusMutex.Lock()
	if !s.running {
		s.statusMutex.Unlock()
		return ErrNotRunning
	}
	close(s.stopChan)
	s.running = false
	done := s.done
	s.statusMutex.Unlock()

	// デバイスのクローズは runPumpLoop 内で行われる
	<-done
	return nil
}

// UpdateConfig は設定を更新する
func (s *PumpService) UpdateConfig(cfg *config.Config) {
	select {
	case s.updateConfig <- cfg:
		// 設定更新チャネルに送信成功
	default:
		// チャネルがブロックされている場合は古い設定を破棄して新しい設定を送信
		select {
		case <-s.updateConfig:
		default:
		}
		s.updateConfig <- cfg
	}
}

// IsRunning はサービスが実行中かどうかを返す
func (s *PumpService) IsRunning() bool {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.running
}

// Status はサービスの状態を返す
func (s *PumpService) Status() ServiceStatus {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	st := s.status
	st.Running = s.running
	return st
}

func (s *PumpService) setStatus(fn func(st *ServiceStatus)) {
	s.statusMutex.Lock()
	fn(&s.status)
	s.statusMutex.Unlock()
}

// runPumpLoop はポーリングのメインループ
func (s *PumpService) runPumpLoop(cfg *config.Config, device features.InputDevice, pump *features.Pump,
	queue *event.Queue, targets event.Fanout, output io.Closer, stop <-chan struct{}, done chan struct{}) {
	defer func() {
		// 押されたままのキーを離してから閉じる
		pump.ReleaseAll()
		s.deliver(queue, targets)
		if err := device.Close(); err != nil {
			s.log.Warn().Err(err).Msg("入力デバイスのクローズに失敗しました")
		}
		if output != nil {
			if err := output.Close(); err != nil {
				s.log.Warn().Err(err).Msg("出力先のクローズに失敗しました")
			}
		}
		metrics.ServiceRunning.Set(0)
		s.log.Info().Msg("サービスを停止しました")
		close(done)
	}()

	ticker := time.NewTicker(cfg.Pump.Interval.Duration)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-stop:
			return

		case newCfg := <-s.updateConfig:
			pump.Apply(pumpOptions(newCfg)...)
			if newCfg.Pump.Interval.Duration > 0 && newCfg.Pump.Interval != cfg.Pump.Interval {
				ticker.Reset(newCfg.Pump.Interval.Duration)
			}
			if newCfg.Backend.Kind != cfg.Backend.Kind {
				s.log.Warn().Msg("バックエンドの変更はサービスの再起動後に反映されます")
			}
			cfg = newCfg
			s.statusMutex.Lock()
			s.cfg = newCfg
			s.statusMutex.Unlock()
			s.log.Info().Msg("設定を更新しました")

		case <-ticker.C:
			err := pump.PumpEvents()
			metrics.PumpCycles.Inc()
			if err != nil {
				metrics.ScanErrors.Inc()
				// 失敗が続く間は最初の1回だけ記録する
				if !failing {
					s.log.Warn().Err(err).Msg("デバイスの読み取りに失敗しました")
				}
				failing = true
			} else if failing {
				s.log.Info().Msg("デバイスの読み取りが回復しました")
				failing = false
			}
			n := s.deliver(queue, targets)
			dropped := queue.Dropped()
			metrics.QueueDropped.Set(float64(dropped))
			s.setStatus(func(st *ServiceStatus) {
				st.Cycles++
				st.Events += uint64(n)
				st.Dropped = dropped
				if err != nil {
					st.LastError = err.Error()
				}
			})
		}
	}
}

// deliver はキューに溜まったイベントを配送先に流す
func (s *PumpService) deliver(queue *event.Queue, targets event.Fanout) int {
	n := 0
	for {
		ev, ok := queue.Poll()
		if !ok {
			return n
		}
		targets.Dispatch(ev)
		n++
	}
}

func pumpOptions(cfg *config.Config) []features.PumpOption {
	opts := []features.PumpOption{
		features.WithDeltaDivisor(cfg.Motion.DeltaDivisor),
		features.WithInvertY(cfg.Motion.InvertY),
	}
	if cfg.Motion.FilterEnabled {
		opts = append(opts, features.WithMotionFilter(
			features.NewMotionFilter(cfg.Motion.FilterSmoothingFactor, cfg.Motion.FilterWarmUpCount)))
	} else {
		opts = append(opts, features.WithMotionFilter(nil))
	}
	return opts
}

// OpenBackend は設定されたバックエンドの入力デバイスを開く
func OpenBackend(cfg *config.Config, log *zerolog.Logger) (features.InputDevice, error) {
	switch cfg.Backend.Kind {
	case config.BackendEvdev:
		return openEvdev(cfg, log)
	case config.BackendSerial:
		log.Info().Str("port", cfg.Serial.Port).Int("baud", cfg.Serial.Baud).Msg("シリアルポートを開きます")
		d, err := features.OpenSerialDevice(cfg.Serial.Port, cfg.Serial.Baud, logging.Logger("serial"))
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.BackendSim:
		return nil, ErrSimBackend
	}
	return nil, fmt.Errorf("不明なバックエンドです: %q", cfg.Backend.Kind)
}

func openEvdev(cfg *config.Config, log *zerolog.Logger) (features.InputDevice, error) {
	keyboardPath := cfg.Devices.KeyboardPath
	touchPath := cfg.Devices.TouchPadPath

	if keyboardPath == "" || touchPath == "" {
		// 設定ファイルで指定された優先デバイスまたは最初のデバイスを使用
		devices, err := features.GetDevices()
		if err != nil {
			return nil, fmt.Errorf("デバイス一覧の取得に失敗しました: %w", err)
		}
		if keyboardPath == "" {
			kb, ok := features.SelectDevice(devices, features.DeviceTypeKeyboard, cfg.Devices.PreferredKeyboard)
			if !ok {
				return nil, errors.New("キーボードデバイスが見つかりませんでした")
			}
			log.Info().Str("name", kb.Name).Msg("使用するキーボード")
			keyboardPath = kb.Path
		}
		if touchPath == "" {
			if tp, ok := features.SelectDevice(devices, features.DeviceTypeTouchPad, cfg.Devices.PreferredTouchPad); ok {
				log.Info().Str("name", tp.Name).Msg("使用するタッチパッド")
				touchPath = tp.Path
			} else {
				log.Warn().Msg("タッチパッドが見つからないためキーのみで動作します")
			}
		}
	}

	area := features.TouchArea{MaxX: cfg.TouchPad.MaxX, MaxY: cfg.TouchPad.MaxY, FlipY: cfg.TouchPad.FlipY}
	d, err := features.OpenEvdevDevice(keyboardPath, touchPath, area, cfg.Devices.Grab)
	if err != nil {
		return nil, fmt.Errorf("デバイスのオープンに失敗しました[keyboard=%s touchpad=%s]: %w", keyboardPath, touchPath, err)
	}
	return d, nil
}

// OpenOutput は設定に従って仮想入力デバイスを作成する
// 無効な場合はどこにも書き込まない
func OpenOutput(cfg *config.Config, log *zerolog.Logger) (event.Sink, io.Closer, error) {
	if !cfg.Output.Virtual {
		return event.SinkFunc(func(event.Event) {}), nil, nil
	}
	v, err := features.CreateVirtualInput(cfg.Output.UinputPath, []byte(cfg.Output.DeviceName), logging.Logger("virtual"))
	if err != nil {
		return nil, nil, fmt.Errorf("仮想入力デバイスの作成に失敗しました: %w", err)
	}
	log.Info().Str("name", cfg.Output.DeviceName).Msg("仮想入力デバイスを作成しました")
	return v, v, nil
}
