package models

import (
	"fmt"
	"strings"
)

// StorageStrategy selects the backend catalog data lives in.
type StorageStrategy string

const (
	// StorageInMemory keeps everything in process; for development and tests.
	StorageInMemory StorageStrategy = "memory"
	StorageSQLite   StorageStrategy = "sqlite"
	StoragePostgres StorageStrategy = "postgres"
	StorageRedis    StorageStrategy = "redis"
)

// ParseStorageStrategy maps a configuration value to a StorageStrategy.
func ParseStorageStrategy(s string) (StorageStrategy, error) {
	switch strategy := StorageStrategy(strings.ToLower(strings.TrimSpace(s))); strategy {
	case StorageInMemory, StorageSQLite, StoragePostgres, StorageRedis:
		return strategy, nil
	case "inmemory", "in-memory":
		return StorageInMemory, nil
	default:
		return "", fmt.Errorf("unknown storage strategy: %q", s)
	}
}

func (s StorageStrategy) String() string {
	return string(s)
}
