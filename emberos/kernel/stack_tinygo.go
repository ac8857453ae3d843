//go:build tinygo

package kernel

// Stack capture is unavailable under TinyGo without the full runtime/debug
// machinery; the panic value alone has to do.
func captureStack() []byte {
	return nil
}
