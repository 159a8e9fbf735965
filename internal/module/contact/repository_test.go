package contact

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/mosaic-hrd/website/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.ContactMessage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedMessage(t *testing.T, repo domain.ContactRepository, ref, email, locale string, created time.Time) {
	t.Helper()
	msg := &domain.ContactMessage{
		BaseModel: domain.BaseModel{CreatedAt: created},
		Reference: ref, Name: "Visitor", Email: email, Message: "Hello there, friends", Locale: locale,
	}
	if err := repo.Create(context.Background(), msg); err != nil {
		t.Fatalf("Create(%s): %v", ref, err)
	}
}

func TestRepository_CreateAndGetByReference(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	msg := &domain.ContactMessage{Reference: "ref-1", Name: "Sara", Email: "sara@example.org", Message: "Hello there, friends", Locale: "en"}
	if err := repo.Create(ctx, msg); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if msg.ID == 0 || msg.CreatedAt.IsZero() {
		t.Fatalf("Create did not populate ID/CreatedAt: %+v", msg)
	}

	got, err := repo.GetByReference(ctx, "ref-1")
	if err != nil {
		t.Fatalf("GetByReference: %v", err)
	}
	if got.Name != "Sara" || got.Email != "sara@example.org" {
		t.Errorf("got %+v", got)
	}

	if _, err := repo.GetByReference(ctx, "missing"); !domain.IsNotFound(err) {
		t.Errorf("missing reference error = %v; want not found", err)
	}
}

func TestRepository_DuplicateReference(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	now := time.Now()
	seedMessage(t, repo, "dup", "a@example.org", "ar", now)

	err := repo.Create(context.Background(), &domain.ContactMessage{Reference: "dup", Name: "B", Email: "b@example.org", Message: "m", Locale: "ar"})
	if !domain.IsInternal(err) {
		t.Errorf("duplicate reference error = %v; want internal", err)
	}
}

func TestRepository_ListNewestFirstWithFilters(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedMessage(t, repo, "r1", "a@example.org", "ar", base)
	seedMessage(t, repo, "r2", "b@example.org", "en", base.Add(time.Hour))
	seedMessage(t, repo, "r3", "a@example.org", "en", base.Add(2*time.Hour))

	tests := []struct {
		name      string
		req       domain.PageRequest
		wantRefs  []string
		wantTotal int
		wantPages int
	}{
		{"all", domain.PageRequest{Page: 1, PerPage: 10}, []string{"r3", "r2", "r1"}, 3, 1},
		{"paged", domain.PageRequest{Page: 2, PerPage: 2}, []string{"r1"}, 3, 2},
		{"by email", domain.PageRequest{Page: 1, PerPage: 10, Filter: map[string]string{FilterEmail: "a@example.org"}}, []string{"r3", "r1"}, 2, 1},
		{"by locale", domain.PageRequest{Page: 1, PerPage: 10, Filter: map[string]string{FilterLocale: "en"}}, []string{"r3", "r2"}, 2, 1},
		{"unknown filter ignored", domain.PageRequest{Page: 1, PerPage: 10, Filter: map[string]string{"name": "nobody"}}, []string{"r3", "r2", "r1"}, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var refs []string
			for _, m := range got.Items {
				refs = append(refs, m.Reference)
			}
			if len(refs) != len(tt.wantRefs) {
				t.Fatalf("refs = %v; want %v", refs, tt.wantRefs)
			}
			for i := range refs {
				if refs[i] != tt.wantRefs[i] {
					t.Fatalf("refs = %v; want %v", refs, tt.wantRefs)
				}
			}
			if got.Total != tt.wantTotal || got.TotalPages != tt.wantPages {
				t.Errorf("total=%d pages=%d; want %d %d", got.Total, got.TotalPages, tt.wantTotal, tt.wantPages)
			}
		})
	}
}

func TestRepository_DeleteBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	seedMessage(t, repo, "old-1", "a@example.org", "ar", cutoff.Add(-48*time.Hour))
	seedMessage(t, repo, "old-2", "a@example.org", "ar", cutoff.Add(-time.Minute))
	seedMessage(t, repo, "new", "a@example.org", "ar", cutoff.Add(time.Minute))

	n, err := repo.DeleteBefore(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d; want 2", n)
	}
	var left int64
	db.Model(&domain.ContactMessage{}).Count(&left)
	if left != 1 {
		t.Errorf("remaining = %d; want 1", left)
	}
}
