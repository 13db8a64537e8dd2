//go:build !debug

package packet

func invalidTransition(string) {}
