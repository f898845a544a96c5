// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_crypto

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const KeySize = 32

// ParseKey accepts 64 hex characters or standard base64 of exactly 32 bytes.
// An empty string means encryption is not configured and returns nil, nil.
func ParseKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if len(raw) == 2*KeySize {
		if key, err := hex.DecodeString(raw); err == nil {
			return key, nil
		}
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: not hex and not base64", ErrEncryptionKeyMalformed)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: base64 key decodes to %d bytes, want %d", ErrEncryptionKeyMalformed, len(key), KeySize)
	}
	return key, nil
}
