package contact

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/metrics"
)

// Field limits, matching the form binding tags.
const (
	minNameLen    = 2
	maxNameLen    = 120
	maxSubjectLen = 200
	minMessageLen = 10
	maxMessageLen = 5000
)

type contactService struct {
	repo domain.ContactRepository
	now  func() time.Time
}

// NewService returns a ContactService that stores messages in repo.
func NewService(repo domain.ContactRepository) domain.ContactService {
	return &contactService{repo: repo, now: time.Now}
}

// Submit validates in, assigns a reference and stores the message. The
// service re-checks what form binding already checked because the CLI and
// tests call it directly.
func (s *contactService) Submit(ctx context.Context, in domain.ContactInput) (*domain.ContactMessage, error) {
	msg := &domain.ContactMessage{
		Reference: uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Subject:   strings.TrimSpace(in.Subject),
		Message:   strings.TrimSpace(in.Message),
		Locale:    normalizeLocale(in.Locale),
	}
	if err := validate(msg); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}

	metrics.ContactMessagesTotal.Inc()
	slog.InfoContext(ctx, "contact message stored",
		slog.String("reference", msg.Reference),
		slog.String("locale", msg.Locale),
	)
	return msg, nil
}

func (s *contactService) Get(ctx context.Context, ref string) (*domain.ContactMessage, error) {
	if err := uuid.Validate(ref); err != nil {
		return nil, domain.NewAppError(domain.CodeNotFound, "contact message not found", nil)
	}
	return s.repo.GetByReference(ctx, ref)
}

func (s *contactService) List(ctx context.Context, req domain.PageRequest) (domain.PageResult[domain.ContactMessage], error) {
	return s.repo.List(ctx, req)
}

// Purge deletes messages older than olderThan.
func (s *contactService) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, domain.NewAppError(domain.CodeValidation, "retention must be positive", nil)
	}
	n, err := s.repo.DeleteBefore(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "contact messages purged", slog.Int64("deleted", n), slog.Duration("older_than", olderThan))
	return n, nil
}

func validate(m *domain.ContactMessage) error {
	switch n := utf8.RuneCountInString(m.Name); {
	case n == 0:
		return domain.NewAppError(domain.CodeValidation, "name is required", nil)
	case n < minNameLen:
		return domain.NewAppError(domain.CodeValidation, "name must be at least 2 characters", nil)
	case n > maxNameLen:
		return domain.NewAppError(domain.CodeValidation, "name must be at most 120 characters", nil)
	}

	if m.Email == "" {
		return domain.NewAppError(domain.CodeValidation, "email is required", nil)
	}
	if addr, err := mail.ParseAddress(m.Email); err != nil || addr.Address != m.Email {
		return domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
	}

	if utf8.RuneCountInString(m.Subject) > maxSubjectLen {
		return domain.NewAppError(domain.CodeValidation, "subject must be at most 200 characters", nil)
	}
	switch n := utf8.RuneCountInString(m.Message); {
	case n < minMessageLen:
		return domain.NewAppError(domain.CodeValidation, "message must be at least 10 characters", nil)
	case n > maxMessageLen:
		return domain.NewAppError(domain.CodeValidation, "message must be at most 5000 characters", nil)
	}
	return nil
}

func normalizeLocale(l string) string {
	if strings.EqualFold(strings.TrimSpace(l), domain.LocaleEN) {
		return domain.LocaleEN
	}
	return domain.LocaleAR
}
