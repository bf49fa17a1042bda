package features

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/char5742/nspire-input/internal/logging"
)

type Device struct {
	Name string     `json:"name"`
	Path string     `json:"path"`
	Type DeviceType `json:"type"`
}

// デバイスタイプを表す列挙型
type DeviceType int

const (
	DeviceTypeKeyboard DeviceType = iota
	DeviceTypeTouchPad
)

func (t DeviceType) String() string {
	if t == DeviceTypeTouchPad {
		return "touchpad"
	}
	return "keyboard"
}

func (t DeviceType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// DeviceEventType はデバイスイベントの種類を表す
type DeviceEventType int

const (
	DeviceAdded DeviceEventType = iota
	DeviceRemoved
	DeviceChanged
)

// DeviceEvent はデバイスの変更イベントを表す
type DeviceEvent struct {
	Type   DeviceEventType
	Device Device
}

// DeviceCallback はデバイスイベント発生時に呼び出されるコールバック関数の型
type DeviceCallback func(event DeviceEvent)

// 入力デバイスのシンボリックリンクがあるディレクトリ
var DefaultInputDirs = []string{"/dev/input/by-id", "/dev/input/by-path"}

// ScanDevices は現在接続されているキーボードとタッチパッドを返します
func ScanDevices() ([]Device, error) {
	return ScanDirs(DefaultInputDirs...)
}

// ScanDirs は指定したディレクトリのシンボリックリンクからデバイスを検出します
// 同じ実体を指すリンクは1つにまとめます
func ScanDirs(dirs ...string) ([]Device, error) {
	var (
		devices []Device
		seen    = make(map[string]bool)
		found   bool
	)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		found = true
		for _, entry := range entries {
			// eventが含まれない場合はスキップ
			if !strings.Contains(entry.Name(), "event") {
				continue
			}
			devType, ok := classify(entry.Name())
			if !ok {
				continue
			}
			fullPath := filepath.Join(dir, entry.Name())
			realPath, err := os.Readlink(fullPath)
			if err != nil {
				continue
			}

			// 絶対パスを構築
			absPath := realPath
			if !filepath.IsAbs(realPath) {
				absPath = filepath.Join(filepath.Dir(dir), filepath.Base(realPath))
			}
			if seen[absPath] {
				continue
			}
			seen[absPath] = true
			devices = append(devices, Device{Name: entry.Name(), Path: absPath, Type: devType})
		}
	}
	if !found {
		return nil, errors.New("入力デバイスのディレクトリが見つかりません")
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices, nil
}

func classify(name string) (DeviceType, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "event-kbd"):
		return DeviceTypeKeyboard, true
	case strings.Contains(lower, "touchpad"), strings.HasSuffix(lower, "event-mouse"):
		return DeviceTypeTouchPad, true
	}
	return 0, false
}

// SelectDevice は優先名に一致するデバイス、なければ最初のデバイスを返す
func SelectDevice(devices []Device, t DeviceType, preferred string) (Device, bool) {
	var first *Device
	for i := range devices {
		if devices[i].Type != t {
			continue
		}
		if preferred != "" && devices[i].Name == preferred {
			return devices[i], true
		}
		if first == nil {
			first = &devices[i]
		}
	}
	if first == nil {
		return Device{}, false
	}
	return *first, true
}

// DeviceMonitor はデバイスの接続状態を監視する構造体
type DeviceMonitor struct {
	dirs      []string
	watcher   *fsnotify.Watcher
	log       *zerolog.Logger
	callbacks []DeviceCallback
	devices   map[string]Device // パスをキーにしたデバイスマップ
	mutex     sync.RWMutex
	stopChan  chan struct{}
	wg        sync.WaitGroup
	isRunning bool

	debounce     time.Duration
	pollInterval time.Duration
}

// グローバルなDeviceMonitorインスタンス
var (
	globalDeviceMonitor *DeviceMonitor
	deviceMonitorMutex  sync.Mutex
)

// GetDevices は現在接続されているデバイスを取得する
// モニターが動いていればそのキャッシュを使う
func GetDevices() ([]Device, error) {
	deviceMonitorMutex.Lock()
	monitor := globalDeviceMonitor
	deviceMonitorMutex.Unlock()

	if monitor != nil {
		if devices := monitor.GetConnectedDevices(); len(devices) > 0 {
			return devices, nil
		}
	}
	return ScanDevices()
}

// NewDeviceMonitor は新しいDeviceMonitorを作成する
func NewDeviceMonitor(dirs ...string) (*DeviceMonitor, error) {
	if len(dirs) == 0 {
		dirs = DefaultInputDirs
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &DeviceMonitor{
		dirs:         dirs,
		watcher:      watcher,
		log:          logging.Logger("devices"),
		devices:      make(map[string]Device),
		stopChan:     make(chan struct{}),
		debounce:     500 * time.Millisecond,
		pollInterval: 2 * time.Second,
	}, nil
}

// Start はデバイスの監視を開始する
func (dm *DeviceMonitor) Start() error {
	dm.mutex.Lock()
	if dm.isRunning {
		dm.mutex.Unlock()
		return nil
	}
	dm.isRunning = true
	dm.mutex.Unlock()

	dm.log.Info().Strs("dirs", dm.dirs).Msg("デバイスモニターを開始します")

	// 監視対象のディレクトリとその親を追加（by-id はデバイスがないと消える）
	watched := make(map[string]bool)
	for _, dir := range dm.dirs {
		for _, d := range []string{dir, filepath.Dir(dir)} {
			if watched[d] {
				continue
			}
			if _, err := os.Stat(d); err != nil {
				continue
			}
			if err := dm.watcher.Add(d); err != nil {
				dm.log.Warn().Err(err).Str("dir", d).Msg("ディレクトリの監視に失敗しました")
				continue
			}
			watched[d] = true
		}
	}

	dm.RescanDevices()

	dm.wg.Add(2)
	go dm.watchEvents()
	go dm.runPolling()
	return nil
}

// Stop はデバイスの監視を停止する
func (dm *DeviceMonitor) Stop() {
	dm.mutex.Lock()
	if !dm.isRunning {
		dm.mutex.Unlock()
		return
	}
	dm.isRunning = false
	dm.mutex.Unlock()

	dm.log.Info().Msg("デバイスモニターを停止します")
	close(dm.stopChan)
	_ = dm.watcher.Close()
	dm.wg.Wait()
}

// RegisterCallback はデバイスイベントのコールバック関数を登録する
func (dm *DeviceMonitor) RegisterCallback(callback DeviceCallback) {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()
	dm.callbacks = append(dm.callbacks, callback)
}

// RescanDevices はデバイス一覧を強制的に再スキャンする
func (dm *DeviceMonitor) RescanDevices() {
	devices, err := ScanDirs(dm.dirs...)
	if err != nil {
		// ディレクトリごと消えた場合はすべて取り外されたとみなす
		dm.log.Debug().Err(err).Msg("デバイススキャンに失敗しました")
		devices = nil
	}
	dm.updateDeviceList(devices)
}

// runPolling はデバイスの存在を定期的に確認する
func (dm *DeviceMonitor) runPolling() {
	defer dm.wg.Done()
	ticker := time.NewTicker(dm.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-dm.stopChan:
			return
		case <-ticker.C:
			dm.RescanDevices()
		}
	}
}

// updateDeviceList は現在のデバイス一覧を更新し、変更があれば通知する
func (dm *DeviceMonitor) updateDeviceList(newDevices []Device) {
	var events []DeviceEvent

	dm.mutex.Lock()
	current := make(map[string]Device, len(newDevices))
	for _, device := range newDevices {
		current[device.Path] = device
		old, exists := dm.devices[device.Path]
		switch {
		case !exists:
			events = append(events, DeviceEvent{Type: DeviceAdded, Device: device})
		case old.Name != device.Name || old.Type != device.Type:
			events = append(events, DeviceEvent{Type: DeviceChanged, Device: device})
		}
	}
	for path, device := range dm.devices {
		if _, ok := current[path]; !ok {
			events = append(events, DeviceEvent{Type: DeviceRemoved, Device: device})
		}
	}
	dm.devices = current
	callbacks := append([]DeviceCallback(nil), dm.callbacks...)
	dm.mutex.Unlock()

	for _, ev := range events {
		dm.log.Info().
			Int("event", int(ev.Type)).
			Str("name", ev.Device.Name).
			Str("path", ev.Device.Path).
			Stringer("type", ev.Device.Type).
			Msg("デバイスの変更を検出しました")
		for _, cb := range callbacks {
			cb(ev)
		}
	}
}

// watchEvents はfsnotifyのイベントを監視する
func (dm *DeviceMonitor) watchEvents() {
	defer dm.wg.Done()

	// 一時的なファイルシステムイベントを収集してバッチ処理する
	eventTimer := time.NewTimer(dm.debounce)
	eventTimer.Stop()
	pendingRescan := false

	for {
		select {
		case <-dm.stopChan:
			eventTimer.Stop()
			return

		case <-eventTimer.C:
			if pendingRescan {
				pendingRescan = false
				dm.RescanDevices()
			}

		case event, ok := <-dm.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			dm.log.Debug().Str("op", event.Op.String()).Str("name", event.Name).Msg("ファイルシステムイベント")

			// by-id が新しく作られた場合は監視に加える
			if event.Op&fsnotify.Create != 0 && dm.isWatchedDir(event.Name) {
				if err := dm.watcher.Add(event.Name); err != nil {
					dm.log.Warn().Err(err).Str("dir", event.Name).Msg("ディレクトリの監視に失敗しました")
				}
			}
			if !pendingRescan {
				pendingRescan = true
				eventTimer.Reset(dm.debounce)
			}

		case err, ok := <-dm.watcher.Errors:
			if !ok {
				return
			}
			dm.log.Warn().Err(err).Msg("ファイルシステム監視エラー")
		}
	}
}

func (dm *DeviceMonitor) isWatchedDir(name string) bool {
	for _, dir := range dm.dirs {
		if filepath.Clean(name) == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

// GetConnectedDevices は現在接続されているデバイスのスナップショットを返す
func (dm *DeviceMonitor) GetConnectedDevices() []Device {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	devices := make([]Device, 0, len(dm.devices))
	for _, device := range dm.devices {
		devices = append(devices, device)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices
}

// GetDeviceMonitor はグローバルDeviceMonitorインスタンスを返す（必要に応じて作成）
func GetDeviceMonitor() (*DeviceMonitor, error) {
	deviceMonitorMutex.Lock()
	defer deviceMonitorMutex.Unlock()

	if globalDeviceMonitor != nil {
		return globalDeviceMonitor, nil
	}
	monitor, err := NewDeviceMonitor()
	if err != nil {
		return nil, fmt.Errorf("デバイスモニターの初期化に失敗しました: %w", err)
	}
	if err := monitor.Start(); err != nil {
		return nil, fmt.Errorf("デバイスモニターの起動に失敗しました: %w", err)
	}
	globalDeviceMonitor = monitor
	return monitor, nil
}
