package migrations

import (
	"io/fs"
	"sync"
)

// Source resolves a migration directory for a dialect ("postgres", "sqlite").
type Source struct {
	Name    string
	Dialect func(dialect string) (fs.FS, error)
}

var (
	mu      sync.RWMutex
	sources []Source
)

// Register records a migration source. Callers can then feed all registered
// sources into persistence.Migrate (or any other runner) via Sources().
// Registering the same name twice is a no-op.
func Register(source Source) {
	if source.Dialect == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	for _, existing := range sources {
		if existing.Name == source.Name {
			return
		}
	}
	sources = append(sources, source)
}

// Sources returns a copy of all registered migration sources.
func Sources() []Source {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Source, len(sources))
	copy(out, sources)
	return out
}

// Filesystems resolves every registered source for the dialect, skipping
// sources that do not ship files for it.
func Filesystems(dialect string) []fs.FS {
	out := make([]fs.FS, 0, len(sources))
	for _, source := range Sources() {
		fsys, err := source.Dialect(dialect)
		if err != nil || fsys == nil {
			continue
		}
		out = append(out, fsys)
	}
	return out
}
