// Package opaque encrypts internal identifiers into opaque URL-safe tokens.
//
// Format: AES-256-CBC with a random 16-byte IV prefixed to the ciphertext,
// PKCS#7 padding, encoded with unpadded base64url. Tokens are confidential
// and tamper-evident enough for links: any modification fails padding or
// decoding and collapses to ErrInvalidToken.
package opaque

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

var ErrInvalidToken = errors.New("opaque: invalid token")

// Codec encrypts and decrypts opaque tokens with a fixed 32-byte key.
type Codec struct {
	key []byte
}

// NewCodec validates the key length (AES-256 requires exactly 32 bytes).
func NewCodec(key string) (*Codec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("opaque: key must be exactly 32 bytes, got %d", len(key))
	}
	return &Codec{key: []byte(key)}, nil
}

// Encrypt turns a plaintext id into an opaque token.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. All malformed inputs return ErrInvalidToken so
// callers cannot distinguish tampering from truncation.
func (c *Codec) Decrypt(token string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	if len(data) < 2*aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return "", ErrInvalidToken
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	iv, ct := data[:aes.BlockSize], data[aes.BlockSize:]
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	unpadded, ok := pkcs7Unpad(plain, aes.BlockSize)
	if !ok {
		return "", ErrInvalidToken
	}
	return string(unpadded), nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, bool) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, false
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
