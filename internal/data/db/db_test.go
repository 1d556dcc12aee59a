package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/yungbote/learnhub-backend/internal/data/docstore"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
)

func TestNewServiceSQLiteMigrates(t *testing.T) {
	svc, err := NewService(logger.Nop(), Config{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer svc.Close()

	if err := svc.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	if !svc.DB().Migrator().HasTable(&docstore.DocumentRow{}) {
		t.Fatalf("documents table missing after migrate")
	}
	if !svc.DB().Migrator().HasIndex(&docstore.DocumentRow{}, "idx_documents_collection_doc_id") {
		t.Fatalf("unique (collection, doc_id) index missing")
	}
}

func TestNewServiceRejectsUnknownDriver(t *testing.T) {
	if _, err := NewService(logger.Nop(), Config{Driver: "oracle"}); err == nil {
		t.Fatalf("unknown driver accepted")
	}
}
