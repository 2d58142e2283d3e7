package repository

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/merchantgate/internal/pkg/database"
	"github.com/ManuelReschke/merchantgate/internal/pkg/env"
)

// newTestDB connects to the disposable database named by TEST_DB_NAME and
// migrates the schema, or skips the test when none is configured or reachable.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	driver := strings.ToLower(env.GetEnv("TEST_DB_DRIVER", database.DriverMySQL))
	defPort := "3306"
	if driver == database.DriverPostgres {
		defPort = "5432"
	}
	cfg := database.Config{
		Driver:   driver,
		Host:     env.GetEnv("TEST_DB_HOST", "127.0.0.1"),
		Port:     env.GetEnv("TEST_DB_PORT", defPort),
		User:     env.GetEnv("TEST_DB_USER", "root"),
		Password: env.GetEnv("TEST_DB_PASSWORD", ""),
		Name:     env.GetEnv("TEST_DB_NAME", ""),
	}
	if cfg.Name == "" {
		t.Skip("Skipping database test: TEST_DB_NAME is not set")
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(cfg.Host, cfg.Port), time.Second)
	if err != nil {
		t.Skipf("Skipping database test: %s:%s unreachable (%v)", cfg.Host, cfg.Port, err)
	}
	_ = conn.Close()

	db, err := database.Open(cfg)
	if err != nil {
		t.Skipf("Skipping database test: %v", err)
	}
	require.NoError(t, db.AutoMigrate(database.Models()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
