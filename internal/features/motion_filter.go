package features

// MotionFilter はタッチパッドから得た移動量（dx, dy）を滑らかにします
type MotionFilter struct {
	smoothingFactor float64 // 0.0-1.0の範囲。1.0に近いほど滑らかになりますが、遅延が大きくなります
	lastDX          float64
	lastDY          float64
	warmUpCount     int
	currentCount    int
	initialized     bool
}

// 新しいモーションフィルターを作成します
func NewMotionFilter(smoothingFactor float64, warmUpCount int) *MotionFilter {
	if smoothingFactor < 0 {
		smoothingFactor = 0
	}
	if smoothingFactor > 1 {
		smoothingFactor = 1
	}
	return &MotionFilter{
		smoothingFactor: smoothingFactor,
		warmUpCount:     warmUpCount,
	}
}

// dx, dy値にsmoothingを適用します
func (mf *MotionFilter) Filter(dxRaw, dyRaw int16) (int16, int16) {
	// 初回またはウォームアップ中はそのまま返す
	if !mf.initialized || mf.currentCount < mf.warmUpCount {
		mf.currentCount++
		mf.lastDX = float64(dxRaw)
		mf.lastDY = float64(dyRaw)
		mf.initialized = true
		return dxRaw, dyRaw
	}

	f := mf.smoothingFactor
	newDX := float64(dxRaw)*(1.0-f) + mf.lastDX*f
	newDY := float64(dyRaw)*(1.0-f) + mf.lastDY*f

	mf.lastDX = newDX
	mf.lastDY = newDY

	return round16(newDX), round16(newDY)
}

// フィルターの状態をリセットします
func (mf *MotionFilter) Reset() {
	mf.lastDX = 0
	mf.lastDY = 0
	mf.currentCount = 0
	mf.initialized = false
}

// 四捨五入（負の値は0から遠い方へ）
func round16(v float64) int16 {
	if v < 0 {
		return int16(v - 0.5)
	}
	return int16(v + 0.5)
}
