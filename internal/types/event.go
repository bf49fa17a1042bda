package types

import "syscall"

// InputEvent は Linux の input_event 構造体
type InputEvent struct {
	Time  syscall.Timeval // イベント発生時刻（uinput では無視される）
	Type  uint16          // イベントタイプ
	Code  uint16          // イベントコード
	Value int32           // イベント値
}
