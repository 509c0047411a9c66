package migrations

import (
	"sort"
	"sync"
)

var (
	registryMu sync.Mutex
	registry   []AdditiveMigration
)

// Register adds a migration to the global registry. Called from init in each
// migration file.
func Register(m AdditiveMigration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, m)
}

// GetRegisteredMigrations returns all registered migrations ordered by
// version.
func GetRegisteredMigrations() []AdditiveMigration {
	registryMu.Lock()
	defer registryMu.Unlock()

	sorted := make([]AdditiveMigration, len(registry))
	copy(sorted, registry)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version() < sorted[j].Version()
	})
	return sorted
}

// CurrentCodeVersion returns the highest registered migration version. A
// database at this version needs no migrations.
func CurrentCodeVersion() int {
	version := 1
	for _, m := range GetRegisteredMigrations() {
		if m.Version() > version {
			version = m.Version()
		}
	}
	return version
}
