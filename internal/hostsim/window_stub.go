//go:build tinygo || !cgo

package hostsim

// Run は cgo なしのビルドでは使えない
func Run(dev *Device, title string) error {
	return ErrNoWindow
}
