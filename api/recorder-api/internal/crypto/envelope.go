// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/rapidaai/meetcap/pkg/commons"
)

var (
	ErrEncryptionKeyMalformed     = errors.New("encryption key malformed")
	ErrDecryptionKeyMissing       = errors.New("decryption key missing")
	ErrUnsupportedEnvelopeVersion = errors.New("unsupported envelope version")
	ErrAuthenticationTagMismatch  = errors.New("authentication tag mismatch")
)

// Envelope layout: MAGIC(4) || VERSION(1) || NONCE(12) || CIPHERTEXT(N) || TAG(16)
const (
	EnvelopeVersion byte = 1
	NonceSize            = 12
	TagSize              = 16
	headerSize           = 4 + 1 + NonceSize
	MinEnvelopeSize      = headerSize + TagSize
)

var Magic = []byte("MCAE")

// KeySource returns the configured key string; "" disables encryption.
type KeySource func() string

// Codec wraps recording bytes in the versioned AES-256-GCM envelope. The key
// is resolved on first use and cached for the life of the codec; a malformed
// key is reported from that first use onwards.
type Codec struct {
	logger commons.Logger
	source KeySource

	mu       sync.Mutex
	resolved bool
	aead     cipher.AEAD
	err      error
}

func NewCodec(logger commons.Logger, source KeySource) *Codec {
	return &Codec{logger: logger, source: source}
}

// NewStaticCodec is a convenience for a fixed key string.
func NewStaticCodec(logger commons.Logger, key string) *Codec {
	return NewCodec(logger, func() string { return key })
}

func (c *Codec) resolve() (cipher.AEAD, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolved {
		return c.aead, c.err
	}
	c.resolved = true

	key, err := ParseKey(c.source())
	if err != nil {
		c.err = err
		c.logger.Errorf("audio encryption key rejected: %v", err)
		return nil, c.err
	}
	if key == nil {
		c.logger.Infof("audio encryption disabled, recordings are stored in plain form")
		return nil, nil
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		c.err = fmt.Errorf("%w: %v", ErrEncryptionKeyMalformed, err)
		return nil, c.err
	}
	c.aead, c.err = cipher.NewGCM(block)
	return c.aead, c.err
}

// Reset drops the cached key so the next call resolves it again. Test use only.
func (c *Codec) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved = false
	c.aead = nil
	c.err = nil
}

// Enabled reports whether a key is configured.
func (c *Codec) Enabled() (bool, error) {
	aead, err := c.resolve()
	return aead != nil, err
}

// Encode returns plaintext unchanged when no key is configured.
func (c *Codec) Encode(plaintext []byte) ([]byte, error) {
	aead, err := c.resolve()
	if err != nil {
		return nil, err
	}
	if aead == nil {
		return plaintext, nil
	}

	out := make([]byte, headerSize, headerSize+len(plaintext)+TagSize)
	copy(out, Magic)
	out[4] = EnvelopeVersion
	nonce := out[5:headerSize]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	// Seal appends CIPHERTEXT || TAG.
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// IsEnvelope reports whether data carries the envelope magic prefix.
func IsEnvelope(data []byte) bool {
	return len(data) >= len(Magic) && bytes.Equal(data[:len(Magic)], Magic)
}

// Decode returns data unchanged when it lacks the magic prefix; such bytes
// are legacy plain recordings. It never returns unauthenticated plaintext.
func (c *Codec) Decode(data []byte) ([]byte, error) {
	if !IsEnvelope(data) {
		return data, nil
	}
	if len(data) == len(Magic) {
		return nil, fmt.Errorf("%w: missing version byte", ErrUnsupportedEnvelopeVersion)
	}
	if data[4] != EnvelopeVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedEnvelopeVersion, data[4])
	}

	aead, err := c.resolve()
	if err != nil {
		return nil, err
	}
	if aead == nil {
		return nil, ErrDecryptionKeyMissing
	}
	if len(data) < MinEnvelopeSize {
		return nil, fmt.Errorf("%w: envelope truncated to %d bytes", ErrAuthenticationTagMismatch, len(data))
	}

	nonce := data[5:headerSize]
	sealed := data[headerSize:]
	plaintext, err := aead.Open(make([]byte, 0, len(sealed)-TagSize), nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthenticationTagMismatch
	}
	return plaintext, nil
}
