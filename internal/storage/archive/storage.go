package archive

import (
	"context"
	"fmt"
)

// Storage is the blob store candle files and report exports are written to.
type Storage interface {
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	// List returns every path under prefix, relative to the storage root.
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// Backend types
const (
	TypeLocal = "localfs"
	TypeS3    = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Type string
	Path string
	S3   S3Config
}

// New builds the backend named by cfg.Type. An empty type means local.
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", TypeLocal:
		return NewLocalFS(cfg.Path)
	case TypeS3:
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
