package pkg

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type testItem struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func newTxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&testItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func countItems(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&testItem{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestWithTx_Commit(t *testing.T) {
	db := newTxTestDB(t)
	err := WithTx(context.Background(), db, func(tx *gorm.DB) error {
		return tx.Create(&testItem{Name: "alice"}).Error
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}
	if n := countItems(t, db); n != 1 {
		t.Errorf("rows = %d; want 1", n)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := newTxTestDB(t)
	fnErr := errors.New("something went wrong")
	err := WithTx(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&testItem{Name: "bob"}).Error; err != nil {
			return err
		}
		return fnErr
	})
	if !errors.Is(err, fnErr) {
		t.Fatalf("WithTx() error = %v; want %v", err, fnErr)
	}
	if n := countItems(t, db); n != 0 {
		t.Errorf("rows = %d; want 0 after rollback", n)
	}
}

func TestWithTx_RollbackAndRepanic(t *testing.T) {
	db := newTxTestDB(t)
	defer func() {
		if r := recover(); r != "kaboom" {
			t.Fatalf("recovered %v; want kaboom", r)
		}
		if n := countItems(t, db); n != 0 {
			t.Errorf("rows = %d; want 0 after panic", n)
		}
	}()

	_ = WithTx(context.Background(), db, func(tx *gorm.DB) error {
		tx.Create(&testItem{Name: "charlie"})
		panic("kaboom")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := newTxTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.Close()

	called := false
	err = WithTx(context.Background(), db, func(*gorm.DB) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Errorf("WithTx() on a closed pool = %v, fn called %v", err, called)
	}
}
