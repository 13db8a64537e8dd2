//go:build debug

package packet

func invalidTransition(msg string) {
	panic(msg)
}
