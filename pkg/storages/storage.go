// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package storages

import (
	"context"
	"errors"
	"fmt"

	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/configs"
)

var ErrObjectNotFound = errors.New("object not found")

// Storage persists opaque byte objects under flat keys.
type Storage interface {
	Name() string
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// NewStorage picks a backend from the asset store configuration.
func NewStorage(ctx context.Context, cfg *configs.AssetStoreConfig, logger commons.Logger) (Storage, error) {
	switch cfg.StorageType {
	case configs.LOCAL, "":
		return NewLocalStorage(cfg.StoragePathPrefix, logger)
	case configs.S3:
		return NewS3Storage(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.StorageType)
	}
}
