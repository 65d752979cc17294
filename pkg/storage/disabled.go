package storage

import (
	"context"
	"io"

	"github.com/JaimeStill/bleak/pkg/lifecycle"
)

type disabled struct{}

// Disabled returns a System whose operations all fail with ErrDisabled.
func Disabled() System {
	return disabled{}
}

func (disabled) Start(lc *lifecycle.Coordinator) error { return nil }

func (disabled) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	return ErrDisabled
}

func (disabled) Download(ctx context.Context, key string) (*BlobResult, error) {
	return nil, ErrDisabled
}

func (disabled) Find(ctx context.Context, key string) (*BlobMeta, error) {
	return nil, ErrDisabled
}

func (disabled) List(ctx context.Context, prefix, marker string, maxResults int32) (*BlobList, error) {
	return nil, ErrDisabled
}

func (disabled) Delete(ctx context.Context, key string) error { return ErrDisabled }

func (disabled) Exists(ctx context.Context, key string) (bool, error) { return false, ErrDisabled }
