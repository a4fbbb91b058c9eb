// Package envelope implements the encrypted payload wrapper used by every
// gateway response: hex ciphertext, AES-CBC with a fixed key and IV, PKCS#7
// padding, UTF-8 JSON plaintext.
package envelope

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// Field is the JSON field carrying ciphertext in gateway responses.
	Field = "eData"

	// obfuscatedKey is the base64 key text stored in reverse character order.
	obfuscatedKey = "gTOwkDMjlDZ0EjY58GcsVWM4oGOllnd4VzN3UmZsBHc"
	defaultIV     = "fpmjlrbhpljoennm"
)

var (
	// ErrDecrypt indicates ciphertext that could not be turned back into a JSON document.
	ErrDecrypt = errors.New("envelope decrypt failed")
	// ErrInvalidKey indicates key or IV material with an unusable size.
	ErrInvalidKey = errors.New("invalid envelope key material")
)

// Cipher opens and seals envelopes for one key/IV pair.
type Cipher struct {
	block cipher.Block
	iv    []byte
}

var defaultCipher = mustDefault()

func mustDefault() *Cipher {
	key, err := DecodeKey(obfuscatedKey)
	if err != nil {
		panic(fmt.Sprintf("envelope: embedded key: %v", err))
	}
	c, err := New(key, []byte(defaultIV))
	if err != nil {
		panic(fmt.Sprintf("envelope: embedded key: %v", err))
	}
	return c
}

// Default returns the cipher built from the embedded protocol key and IV.
// The key is decoded once at package initialization.
func Default() *Cipher {
	return defaultCipher
}

// DecodeKey reverses s and base64-decodes the result. Trailing padding is optional.
func DecodeKey(s string) ([]byte, error) {
	r := []rune(strings.TrimSpace(s))
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	key, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(string(r), "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

// New builds a Cipher. key must be 16, 24 or 32 bytes and iv one AES block.
func New(key, iv []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: iv length %d", ErrInvalidKey, len(iv))
	}
	return &Cipher{block: block, iv: append([]byte(nil), iv...)}, nil
}

// Open decrypts hex ciphertext and returns the JSON plaintext.
// Any structural mismatch yields ErrDecrypt; Open never panics on bad input.
func (c *Cipher) Open(cipherHex string) (json.RawMessage, error) {
	cipherHex = strings.TrimSpace(cipherHex)
	if cipherHex == "" {
		return nil, fmt.Errorf("%w: empty ciphertext", ErrDecrypt)
	}
	data, err := hex.DecodeString(cipherHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext not block aligned", ErrDecrypt)
	}
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(data, data)

	plain, err := unpad(data)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(plain) {
		return nil, fmt.Errorf("%w: plaintext is not utf-8", ErrDecrypt)
	}
	if !json.Valid(plain) {
		return nil, fmt.Errorf("%w: plaintext is not json", ErrDecrypt)
	}
	return json.RawMessage(plain), nil
}

// Seal encrypts plaintext and returns lowercase hex ciphertext.
func (c *Cipher) Seal(plain []byte) string {
	data := pad(plain)
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(data, data)
	return hex.EncodeToString(data)
}

// SealJSON marshals v and seals the result.
func (c *Cipher) SealJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return c.Seal(raw), nil
}

func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", ErrDecrypt)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", ErrDecrypt)
		}
	}
	return data[:len(data)-n], nil
}
