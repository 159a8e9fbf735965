package domain

import (
	"context"
	"time"
)

// ContactMessage is a visitor message from the contact form. Reference is the
// UUID shown back to the visitor.
type ContactMessage struct {
	BaseModel
	Reference string `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	Name      string `gorm:"size:120;not null" json:"name"`
	Email     string `gorm:"size:255;index;not null" json:"email"`
	Subject   string `gorm:"size:200" json:"subject,omitempty"`
	Message   string `gorm:"type:text;not null" json:"message"`
	Locale    string `gorm:"size:2;not null" json:"locale"`
}

// ContactRepository stores contact messages.
type ContactRepository interface {
	Create(ctx context.Context, msg *ContactMessage) error
	GetByReference(ctx context.Context, ref string) (*ContactMessage, error)
	List(ctx context.Context, req PageRequest) (PageResult[ContactMessage], error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ContactService validates and records contact messages.
type ContactService interface {
	Submit(ctx context.Context, in ContactInput) (*ContactMessage, error)
	Get(ctx context.Context, ref string) (*ContactMessage, error)
	List(ctx context.Context, req PageRequest) (PageResult[ContactMessage], error)
	Purge(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ContactInput is the untrusted form payload.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
	Locale  string
}
