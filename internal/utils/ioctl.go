package utils

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl 番号のエンコード（Linux の _IOC マクロ）
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocRead = 2
)

func ioc(dir, typ, nr, size uint32) uintptr {
	return uintptr(dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift)
}

// AbsInfo は input_absinfo 構造体
type AbsInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// EVIOCGKEY(len) = _IOR('E', 0x18, len)
func EVIOCGKEY(size int) uintptr {
	return ioc(iocRead, 'E', 0x18, uint32(size))
}

// EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo)
func EVIOCGABS(abs int) uintptr {
	return ioc(iocRead, 'E', uint32(0x40+abs), uint32(unsafe.Sizeof(AbsInfo{})))
}

// IOCtl はデバイスファイルに ioctl を発行する
func IOCtl(file *os.File, cmd, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, file.Fd(), cmd, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

// GetKeyState はキーの押下状態をビット配列で読み込む
func GetKeyState(file *os.File, bits []byte) error {
	if len(bits) == 0 {
		return nil
	}
	return IOCtl(file, EVIOCGKEY(len(bits)), uintptr(unsafe.Pointer(&bits[0])))
}

// GetAbsInfo は絶対座標軸の現在値と範囲を読み込む
func GetAbsInfo(file *os.File, abs int) (AbsInfo, error) {
	var info AbsInfo
	if err := IOCtl(file, EVIOCGABS(abs), uintptr(unsafe.Pointer(&info))); err != nil {
		return AbsInfo{}, err
	}
	return info, nil
}

// TestBit はビット配列の n 番目のビットを調べる
func TestBit(bits []byte, n int) bool {
	if n < 0 || n/8 >= len(bits) {
		return false
	}
	return bits[n/8]&(1<<(uint(n)%8)) != 0
}
