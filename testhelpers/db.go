// Package testhelpers builds isolated stores and configs for package tests.
package testhelpers

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/artcopy/config"
)

var dbSeq atomic.Int64

// Config returns a configuration suitable for tests: in-memory SQLite named
// after the test, no rate limiting, no Redis and no access log file.
func Config(t testing.TB) *config.AppConfig {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return &config.AppConfig{
		App: config.AppSection{
			Port:             "0",
			SessionSecret:    "test-session-secret",
			AllowedOrigins:   []string{"*"},
			StatsCacheTTLSec: 30,
			StaticDir:        t.TempDir(),
			GinMode:          "test",
		},
		Database: config.DatabaseSection{
			SQLitePath: fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1)),
		},
		Log: config.LogSection{Level: "error"},
	}
}

// NewDB opens and migrates a fresh in-memory SQLite store for cfg.
func NewDB(t testing.TB, cfg *config.AppConfig) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// MemoryDB is Config plus NewDB for tests that only need a store.
func MemoryDB(t testing.TB) *gorm.DB {
	t.Helper()
	return NewDB(t, Config(t))
}
