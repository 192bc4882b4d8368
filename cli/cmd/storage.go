package cmd

import (
	"context"
	"fmt"

	lodelibrary "github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/modelforge/cli/config"
	"github.com/pithecene-io/modelforge/lode"
	"github.com/pithecene-io/modelforge/types"
)

// Storage backends.
const (
	backendFS     = "fs"
	backendS3     = "s3"
	backendMemory = "memory"
)

// storeOptions locates a fixture dataset. Flags override the config file.
type storeOptions struct {
	Dataset   string
	Backend   string
	Path      string
	Region    string
	Endpoint  string
	PathStyle bool
}

// enabled reports whether fixtures should be persisted.
func (o storeOptions) enabled() bool {
	return o.Backend != ""
}

func (o storeOptions) validate() error {
	switch o.Backend {
	case "", backendMemory:
		return nil
	case backendFS, backendS3:
		if o.Path == "" {
			return types.ConfigurationError("--store-path is required for the %s backend", o.Backend)
		}
		return nil
	default:
		return types.ConfigurationError("unsupported store-backend: %s (must be fs, s3, or memory)", o.Backend)
	}
}

func (o storeOptions) s3Config() lode.S3Config {
	bucket, prefix := lode.ParseS3Path(o.Path)
	return lode.S3Config{
		Bucket:       bucket,
		Prefix:       prefix,
		Region:       o.Region,
		Endpoint:     o.Endpoint,
		UsePathStyle: o.PathStyle,
	}
}

// storeOptionsFrom merges storage flags over cfg.
func storeOptionsFrom(c *cli.Context, cfg *config.Config) storeOptions {
	var o storeOptions
	if cfg != nil {
		s := cfg.Storage
		o = storeOptions{
			Dataset:   s.Dataset,
			Backend:   s.Backend,
			Path:      s.Path,
			Region:    s.Region,
			Endpoint:  s.Endpoint,
			PathStyle: s.S3PathStyle,
		}
	}
	if c.IsSet("store-dataset") {
		o.Dataset = c.String("store-dataset")
	}
	if c.IsSet("store-backend") {
		o.Backend = c.String("store-backend")
	}
	if c.IsSet("store-path") {
		o.Path = c.String("store-path")
	}
	if c.IsSet("store-region") {
		o.Region = c.String("store-region")
	}
	if c.IsSet("store-endpoint") {
		o.Endpoint = c.String("store-endpoint")
	}
	if c.IsSet("s3-path-style") {
		o.PathStyle = c.Bool("s3-path-style")
	}
	if o.Dataset == "" {
		o.Dataset = lode.DefaultDataset
	}
	return o
}

// openClient creates the dataset writer selected by o.
func openClient(ctx context.Context, o storeOptions, cfg lode.Config) (*lode.Client, error) {
	switch o.Backend {
	case backendFS:
		return lode.NewFSClient(cfg, o.Path)
	case backendS3:
		return lode.NewS3Client(ctx, cfg, o.s3Config())
	case backendMemory:
		return lode.NewMemoryClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported store-backend: %s", o.Backend)
	}
}

// openReadDataset creates a Lode Dataset for reading. The memory backend
// does not outlive a process and cannot be read back.
func openReadDataset(ctx context.Context, o storeOptions) (lodelibrary.Dataset, error) {
	switch o.Backend {
	case backendFS:
		return lode.NewReadDatasetFS(o.Dataset, o.Path)
	case backendS3:
		return lode.NewReadDatasetS3(ctx, o.Dataset, o.s3Config())
	default:
		return nil, types.ConfigurationError("unsupported store-backend for reads: %q (must be fs or s3)", o.Backend)
	}
}
