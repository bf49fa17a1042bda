package event

import "sync/atomic"

// Sink はイベントの送り先
type Sink interface {
	Dispatch(ev Event)
}

// SinkFunc は関数を Sink として扱うためのアダプタ
type SinkFunc func(ev Event)

func (f SinkFunc) Dispatch(ev Event) { f(ev) }

// Fanout は複数の Sink に同じイベントを配送する
type Fanout []Sink

func (f Fanout) Dispatch(ev Event) {
	for _, s := range f {
		if s != nil {
			s.Dispatch(ev)
		}
	}
}

// DefaultQueueSize はイベントキューのデフォルト容量
const DefaultQueueSize = 128

// Queue は容量固定のイベントキュー
// 満杯の場合は新しいイベントを捨てる
type Queue struct {
	ch      chan Event
	dropped atomic.Uint64
}

// NewQueue は新しいイベントキューを作成する
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Event, size)}
}

func (q *Queue) Dispatch(ev Event) {
	select {
	case q.ch <- ev:
	default:
		q.dropped.Add(1)
	}
}

// Events は受信用チャネルを返す
func (q *Queue) Events() <-chan Event { return q.ch }

// Poll はブロックせずにイベントを1つ取り出す
func (q *Queue) Poll() (Event, bool) {
	select {
	case ev := <-q.ch:
		return ev, true
	default:
		return Event{}, false
	}
}

// Len はキューに溜まっているイベント数を返す
func (q *Queue) Len() int { return len(q.ch) }

// Dropped は満杯のため捨てられたイベント数を返す
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }
