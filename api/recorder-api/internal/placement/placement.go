// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_placement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/storages"
)

var (
	ErrStorageWriteFailed = errors.New("storage write failed")
	ErrRecordingNotFound  = errors.New("recording file not found")
)

const encryptedInfix = ".encrypted"

// Codec is the envelope codec the placement layer writes and reads through.
type Codec interface {
	Enabled() (bool, error)
	Encode(plaintext []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// Placement names, writes and finds recording files. A recording written
// while encryption was on is stored as <id>.encrypted.<ext>, otherwise as
// <id>.<ext>; lookups try both so files survive a configuration change.
type Placement struct {
	codec   Codec
	storage storages.Storage
	logger  commons.Logger
}

func NewPlacement(codec Codec, storage storages.Storage, logger commons.Logger) *Placement {
	return &Placement{codec: codec, storage: storage, logger: logger}
}

func PlainName(id, ext string) string {
	return id + "." + ext
}

func EncryptedName(id, ext string) string {
	return id + encryptedInfix + "." + ext
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

// candidates lists object names in probe order: the current mode first.
func (p *Placement) candidates(id, ext string) ([]string, error) {
	enabled, err := p.codec.Enabled()
	if err != nil {
		return nil, err
	}
	if enabled {
		return []string{EncryptedName(id, ext), PlainName(id, ext)}, nil
	}
	return []string{PlainName(id, ext), EncryptedName(id, ext)}, nil
}

// Ready fails when the codec cannot be resolved, e.g. a malformed key.
func (p *Placement) Ready() error {
	if _, err := p.codec.Enabled(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)
	}
	return nil
}

// FileName is the name a write would use under the current configuration.
func (p *Placement) FileName(id, ext string) (string, error) {
	names, err := p.candidates(id, ext)
	if err != nil {
		return "", err
	}
	return names[0], nil
}

// Write encodes data through the codec and stores it under the
// mode-appropriate name, returning that name.
func (p *Placement) Write(ctx context.Context, id, ext string, data []byte) (string, error) {
	start := time.Now()
	if !validID(id) {
		return "", fmt.Errorf("%w: invalid recording id %q", ErrStorageWriteFailed, id)
	}
	name, err := p.FileName(id, ext)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)
	}
	encoded, err := p.codec.Encode(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)
	}
	if err := p.storage.Put(ctx, name, encoded); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)
	}
	p.logger.Benchmark("Placement.Write", time.Since(start))
	return name, nil
}

// Resolve returns the stored name for id, probing the current mode first.
func (p *Placement) Resolve(ctx context.Context, id, ext string) (string, error) {
	if !validID(id) {
		return "", fmt.Errorf("%s: %w", id, ErrRecordingNotFound)
	}
	names, err := p.candidates(id, ext)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		ok, err := p.storage.Exists(ctx, name)
		if err != nil {
			return "", err
		}
		if ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("%s: %w", id, ErrRecordingNotFound)
}

// Read resolves, fetches and decodes a recording.
func (p *Placement) Read(ctx context.Context, id, ext string) ([]byte, error) {
	name, err := p.Resolve(ctx, id, ext)
	if err != nil {
		return nil, err
	}
	data, err := p.storage.Get(ctx, name)
	if errors.Is(err, storages.ErrObjectNotFound) {
		return nil, fmt.Errorf("%s: %w", id, ErrRecordingNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p.codec.Decode(data)
}
