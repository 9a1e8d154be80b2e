// Package repository declares the storage contracts the services depend on.
// The sqlite subpackage is the only implementation; service tests use in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/faq-chatbot/internal/model"
)

// ListOptions paginates List calls. A zero Limit means "everything".
type ListOptions struct {
	Limit  int
	Offset int
}

// QuestionRepository is the Record Store for question/answer pairs.
// Every list-returning method yields records in insertion order.
type QuestionRepository interface {
	Create(ctx context.Context, q *model.Question) error
	GetByID(ctx context.Context, id int64) (*model.Question, error)
	List(ctx context.Context, opts ListOptions) ([]model.Question, error)
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id int64) error
	FindByTextCaseInsensitive(ctx context.Context, text string) ([]model.Question, error)
	FindByOwner(ctx context.Context, adminID int64) ([]model.Question, error)
}

type AdminRepository interface {
	CreateAdmin(ctx context.Context, a *model.Admin) error
	GetAdminByID(ctx context.Context, id int64) (*model.Admin, error)
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
	ListAdmins(ctx context.Context) ([]model.Admin, error)
	UpdateAdmin(ctx context.Context, a *model.Admin) error
	DeleteAdmin(ctx context.Context, id int64) error
}
