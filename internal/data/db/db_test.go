package db

import (
	"testing"

	"github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
)

func TestSQLiteOpenAndMigrate(t *testing.T) {
	svc, err := NewPostgresService(Config{Driver: DriverSQLite, SQLitePath: "file::memory:"}, logger.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer svc.Close()
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, m := range domain.Models() {
		if !svc.DB().Migrator().HasTable(m) {
			t.Fatalf("missing table for %T", m)
		}
	}
}

func TestUnknownDriver(t *testing.T) {
	if _, err := NewPostgresService(Config{Driver: "oracle"}, logger.Nop()); err == nil {
		t.Fatalf("want error for unknown driver")
	}
}
