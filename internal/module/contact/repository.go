package contact

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/pkg"
)

// Query keys List understands.
const (
	FilterEmail  = "email"
	FilterLocale = "locale"
)

var allowedFilters = []string{FilterEmail, FilterLocale}

type contactRepository struct {
	db *gorm.DB
}

// NewRepository returns a ContactRepository backed by db.
func NewRepository(db *gorm.DB) domain.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (r *contactRepository) GetByReference(ctx context.Context, ref string) (*domain.ContactMessage, error) {
	var msg domain.ContactMessage
	if err := r.db.WithContext(ctx).Where("reference = ?", ref).First(&msg).Error; err != nil {
		return nil, mapError(err)
	}
	return &msg, nil
}

// List returns messages newest first. Only the email and locale filters are
// applied, as exact matches.
func (r *contactRepository) List(ctx context.Context, req domain.PageRequest) (domain.PageResult[domain.ContactMessage], error) {
	base := r.db.WithContext(ctx).Model(&domain.ContactMessage{})
	for _, key := range allowedFilters {
		if v := req.Filter[key]; v != "" {
			base = base.Where(key+" = ?", v)
		}
	}

	page, err := pkg.PaginateQuery[domain.ContactMessage](ctx, base, req, "created_at DESC, id DESC")
	if err != nil {
		return domain.PageResult[domain.ContactMessage]{}, mapError(err)
	}
	return page, nil
}

// DeleteBefore removes every message created before cutoff in one transaction.
func (r *contactRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		res := tx.Where("created_at < ?", cutoff).Delete(&domain.ContactMessage{})
		n = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func mapError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewAppError(domain.CodeNotFound, "contact message not found", nil)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}
