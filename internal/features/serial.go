package features

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"go.bug.st/serial"

	"github.com/char5742/nspire-input/internal/keymap"
)

// DefaultBaudRate はシリアルリンクのデフォルト速度
const DefaultBaudRate = 115200

// SerialDevice はシリアルで接続した電卓から状態を受け取る
type SerialDevice struct {
	rc  io.ReadCloser
	log *zerolog.Logger

	mu      sync.Mutex
	latest  Frame
	frames  uint64
	readErr error

	current Frame
	done    chan struct{}
}

// OpenSerialDevice はシリアルポートを開いて受信を開始する
func OpenSerialDevice(portName string, baud int, log *zerolog.Logger) (*SerialDevice, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("シリアルポートを開けませんでした[%s]: %w", portName, err)
	}
	return NewSerialDevice(port, log), nil
}

// SerialPorts は利用可能なシリアルポートの一覧を返す
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}

// NewSerialDevice は任意のストリームからフレームを受け取る SerialDevice を作成する
func NewSerialDevice(rc io.ReadCloser, log *zerolog.Logger) *SerialDevice {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	d := &SerialDevice{rc: rc, log: log, done: make(chan struct{})}
	go d.readLoop()
	return d
}

func (d *SerialDevice) readLoop() {
	defer close(d.done)

	fr := NewFrameReader(d.rc)
	for {
		f, err := fr.Next()
		switch {
		case err == nil:
			d.mu.Lock()
			d.latest = f
			d.frames++
			d.mu.Unlock()
		case errors.Is(err, ErrFrameChecksum):
			d.log.Warn().Err(err).Msg("壊れたフレームを捨てました")
		default:
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
				d.log.Error().Err(err).Msg("シリアルの受信に失敗しました")
			}
			d.mu.Lock()
			d.readErr = err
			d.mu.Unlock()
			return
		}
	}
}

// Refresh は最後に受信したフレームを取り込む
func (d *SerialDevice) Refresh() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readErr != nil {
		return fmt.Errorf("シリアルリンクが切断されました: %w", d.readErr)
	}
	d.current = d.latest
	return nil
}

func (d *SerialDevice) IsKeyPressed(k keymap.HWKey) bool {
	return d.current.Keys.IsKeyPressed(k)
}

func (d *SerialDevice) Scan() TouchReport { return d.current.Touch }

// Frames は受信したフレーム数を返す
func (d *SerialDevice) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

func (d *SerialDevice) Close() error {
	err := d.rc.Close()
	<-d.done
	return err
}
