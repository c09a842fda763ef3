package identity

import "github.com/goliatone/go-repository-cache/cache"

// DirectoryOption configures directory construction.
type DirectoryOption func(*DirectoryOptions)

// DirectoryOptions captures optional behavior for user lookups.
type DirectoryOptions struct {
	CacheEnabled bool
	CacheConfig  *cache.Config
	ActiveStatus string
}

// WithCache toggles the repository cache decorator for user lookups.
func WithCache(enabled bool) DirectoryOption {
	return func(opts *DirectoryOptions) {
		if opts == nil {
			return
		}
		opts.CacheEnabled = enabled
	}
}

// WithCacheConfig supplies the cache configuration used when caching is enabled.
func WithCacheConfig(cfg cache.Config) DirectoryOption {
	return func(opts *DirectoryOptions) {
		if opts == nil {
			return
		}
		opts.CacheConfig = &cfg
	}
}

// WithActiveStatus overrides the status value treated as active.
func WithActiveStatus(status string) DirectoryOption {
	return func(opts *DirectoryOptions) {
		if opts == nil || status == "" {
			return
		}
		opts.ActiveStatus = status
	}
}

func applyDirectoryOptions(options []DirectoryOption) DirectoryOptions {
	opts := DirectoryOptions{ActiveStatus: StatusActive}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}
	return opts
}
