package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/learnhub-backend/internal/data/db"
	"github.com/yungbote/learnhub-backend/internal/data/docstore"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a private in-memory SQLite database with the documents table migrated.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrateAll(gdb); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return gdb
}

// Store returns a fresh store backed by DB(tb) with a started in-process change feed.
func Store(tb testing.TB) docstore.Store {
	tb.Helper()
	s, _ := StoreWithFeed(tb)
	return s
}

func StoreWithFeed(tb testing.TB) (docstore.Store, *docstore.Feed) {
	tb.Helper()
	log := Logger(tb)
	feed := docstore.NewFeed(log, nil)
	ctx, cancel := context.WithCancel(context.Background())
	tb.Cleanup(cancel)
	if err := feed.Start(ctx); err != nil {
		tb.Fatalf("start feed: %v", err)
	}
	return docstore.NewGormStore(DB(tb), log, feed), feed
}
