package ports

import (
	"context"
	"io"

	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
)

// LinkRepository defines storage operations for links
type LinkRepository interface {
	Create(ctx context.Context, link *domain.Link) error
	GetByID(ctx context.Context, id int64) (*domain.Link, error)
	List(ctx context.Context) ([]domain.Link, error) // Newest first
	Update(ctx context.Context, link *domain.Link) error
	Delete(ctx context.Context, id int64) error
	Dump(ctx context.Context) ([]domain.Link, error)              // For migration, id order
	Import(ctx context.Context, links []domain.Link) (int, error) // Keeps CreatedAt, reassigns ids
	Ping(ctx context.Context) error
	Close() error
}

// LinkService defines the business logic operations
type LinkService interface {
	CreateLink(ctx context.Context, fields domain.LinkFields) (*domain.Link, error)
	GetLink(ctx context.Context, id int64) (*domain.Link, error)
	ListLinks(ctx context.Context) ([]domain.Link, error)
	UpdateLink(ctx context.Context, id int64, fields domain.LinkFields) (*domain.Link, error)
	DeleteLink(ctx context.Context, id int64) error
	Health(ctx context.Context) error
}

// LinkAPI is the client-side view of the link endpoints
type LinkAPI interface {
	ListLinks(ctx context.Context) ([]domain.Link, error)
	CreateLink(ctx context.Context, fields domain.LinkFields) (*domain.Link, error)
	UpdateLink(ctx context.Context, id int64, fields domain.LinkFields) (*domain.Link, error)
	DeleteLink(ctx context.Context, id int64) error
}

// AudioDevice is a capture source. Open acquires the device; closing the
// returned stream releases it and must unblock a pending Read.
type AudioDevice interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
