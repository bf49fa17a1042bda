package features

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/char5742/nspire-input/internal/keymap"
)

// 電卓からシリアル経由で送られてくるフレーム
//
//	'N' 'S' | 行レジスタ x9 (uint16 LE) | x (uint16 LE) | y (uint16 LE) | flags | checksum
//
// flags の bit0 は接触、checksum は直前までの全バイトの XOR
const (
	frameMagic0 = 'N'
	frameMagic1 = 'S'

	FrameSize = 2 + keymap.NumRows*2 + 2 + 2 + 1 + 1

	flagContact = 0x01
)

var (
	ErrShortFrame    = errors.New("フレームが短すぎます")
	ErrFrameMagic    = errors.New("フレームの先頭が不正です")
	ErrFrameChecksum = errors.New("フレームのチェックサムが一致しません")
)

// Frame はキーパッドとタッチパッドの1サンプル
type Frame struct {
	Keys  Snapshot
	Touch TouchReport
}

func checksum(b []byte) byte {
	var sum byte
	for _, c := range b {
		sum ^= c
	}
	return sum
}

// DecodeFrame はバイト列からフレームを復元する
func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	if len(b) < FrameSize {
		return f, ErrShortFrame
	}
	b = b[:FrameSize]
	if b[0] != frameMagic0 || b[1] != frameMagic1 {
		return f, ErrFrameMagic
	}
	if checksum(b[:FrameSize-1]) != b[FrameSize-1] {
		return f, ErrFrameChecksum
	}

	off := 2
	for i := range f.Keys {
		f.Keys[i] = binary.LittleEndian.Uint16(b[off:])
		off += 2
	}
	f.Touch.X = int16(binary.LittleEndian.Uint16(b[off:]))
	f.Touch.Y = int16(binary.LittleEndian.Uint16(b[off+2:]))
	f.Touch.Contact = b[off+4]&flagContact != 0
	return f, nil
}

// AppendFrame はフレームをエンコードして dst に追加する
func AppendFrame(dst []byte, f Frame) []byte {
	start := len(dst)
	dst = append(dst, frameMagic0, frameMagic1)
	for _, row := range f.Keys {
		dst = binary.LittleEndian.AppendUint16(dst, row)
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(f.Touch.X))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(f.Touch.Y))
	var flags byte
	if f.Touch.Contact {
		flags |= flagContact
	}
	dst = append(dst, flags)
	return append(dst, checksum(dst[start:]))
}

// FrameReader はストリームからフレームを読み出す
// 先頭が合わない場合はマジックが見つかるまで読み飛ばす
type FrameReader struct {
	r   *bufio.Reader
	buf [FrameSize]byte
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReaderSize(r, FrameSize*4)}
}

// Next は次のフレームを返す
// チェックサムが合わない場合は ErrFrameChecksum を返すので、呼び出し側は読み続けてよい
func (fr *FrameReader) Next() (Frame, error) {
	if err := fr.sync(); err != nil {
		return Frame{}, err
	}
	fr.buf[0], fr.buf[1] = frameMagic0, frameMagic1
	if _, err := io.ReadFull(fr.r, fr.buf[2:]); err != nil {
		return Frame{}, err
	}
	return DecodeFrame(fr.buf[:])
}

func (fr *FrameReader) sync() error {
	prev := byte(0)
	for {
		c, err := fr.r.ReadByte()
		if err != nil {
			return err
		}
		if prev == frameMagic0 && c == frameMagic1 {
			return nil
		}
		prev = c
	}
}
