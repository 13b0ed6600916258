package repository

import "github.com/okian/scout/pkg/logger"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxVersions sets how many versions of one source stay cached. The
// default of 1 drops the previous table as soon as a new version loads. Zero
// turns automatic eviction off; callers then drop old versions with Retain.
func WithMaxVersions(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.maxVersions = n
		}
	}
}
