package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

var (
	ErrInvalidKey        = errors.New("invalid key")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("ciphertext is not a whole number of blocks")
)

// FixedIV is the initialization vector shared with the server for session
// payloads. The server contract fixes it; it is not secret.
var FixedIV = []byte("0102030405060708")

const (
	// PBKDF2 iterations for at-rest keys
	PBKDF2Iterations = 100000

	// Salt for at-rest key derivation
	DerivationSalt = "ZenTalk-Session-Store-v1"

	// At-rest keys are AES-256
	StoreKeySize = 32
)

// Cipher is AES/CBC/PKCS7 with the fixed IV
type Cipher struct {
	block cipher.Block
}

// NewCipher creates a cipher for a 16, 24 or 32 byte key
func NewCipher(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &Cipher{block: block}, nil
}

// ValidKeyLength reports whether n is a usable AES key length
func ValidKeyLength(n int) bool {
	return n == 16 || n == 24 || n == 32
}

// Encrypt pads and encrypts plaintext
func (c *Cipher) Encrypt(plaintext []byte) []byte {
	padded := AddPadding(plaintext, aes.BlockSize)

	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, FixedIV).CryptBlocks(out, padded)

	return out
}

// Decrypt decrypts ciphertext and strips padding
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrInvalidCiphertext
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, FixedIV).CryptBlocks(out, ciphertext)

	plaintext, err := RemovePadding(out, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

// DeriveStoreKey derives an at-rest encryption key from a password
func DeriveStoreKey(password string) []byte {
	return pbkdf2.Key(
		[]byte(password),
		[]byte(DerivationSalt),
		PBKDF2Iterations,
		StoreKeySize,
		sha256.New,
	)
}

// SealGCM encrypts plaintext using AES-256-GCM, prefixing the nonce
func SealGCM(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// OpenGCM decrypts ciphertext produced by SealGCM
func OpenGCM(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
