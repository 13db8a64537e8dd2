package crypto

import (
	"bytes"
	"errors"
)

var (
	ErrInvalidPadding = errors.New("invalid padding")
)

// AddPadding appends PKCS#7 padding up to a multiple of blockSize
func AddPadding(message []byte, blockSize int) []byte {
	paddingLen := blockSize - len(message)%blockSize

	padded := make([]byte, len(message)+paddingLen)
	copy(padded, message)
	copy(padded[len(message):], bytes.Repeat([]byte{byte(paddingLen)}, paddingLen))

	return padded
}

// RemovePadding strips and verifies PKCS#7 padding
func RemovePadding(padded []byte, blockSize int) ([]byte, error) {
	if len(padded) == 0 || len(padded)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}

	paddingLen := int(padded[len(padded)-1])
	if paddingLen == 0 || paddingLen > blockSize || paddingLen > len(padded) {
		return nil, ErrInvalidPadding
	}

	for _, b := range padded[len(padded)-paddingLen:] {
		if int(b) != paddingLen {
			return nil, ErrInvalidPadding
		}
	}

	return padded[:len(padded)-paddingLen], nil
}
