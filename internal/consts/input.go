package consts

// イベントタイプの定数（input-event-codes.hより）
const (
	Syn = 0x00 // 同期イベント
	Key = 0x01 // キーイベント
	Rel = 0x02 // 相対座標イベント
	Abs = 0x03 // 絶対座標イベント

	RelX = 0x0 // X軸の相対移動
	RelY = 0x1 // Y軸の相対移動

	AbsX = 0x00 // X軸の絶対座標
	AbsY = 0x01 // Y軸の絶対座標

	SynReport = 0 // イベント報告の同期

	BtnLeft   = 0x110 // マウス左ボタン
	BtnRight  = 0x111 // マウス右ボタン
	BtnMiddle = 0x112 // マウス中ボタン
	BtnTouch  = 0x14a // タッチイベント
)
