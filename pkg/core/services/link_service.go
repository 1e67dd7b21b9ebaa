package services

import (
	"context"
	"fmt"
	"time"

	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/validation"
	"github.com/wadjakorntonsri/linkshelf/pkg/ports"
)

type LinkService struct {
	repo      ports.LinkRepository
	validator *validation.Validator
	now       func() time.Time
}

// Option configures a LinkService
type Option func(*LinkService)

// WithClock overrides the time source used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *LinkService) { s.now = now }
}

func NewLinkService(repo ports.LinkRepository, opts ...Option) *LinkService {
	s := &LinkService{
		repo:      repo,
		validator: validation.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LinkService) CreateLink(ctx context.Context, fields domain.LinkFields) (*domain.Link, error) {
	fields = fields.Normalize()
	if err := s.validator.ValidateLink(fields); err != nil {
		return nil, err
	}

	link := &domain.Link{
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	link.Apply(fields)

	if err := s.repo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}

func (s *LinkService) GetLink(ctx context.Context, id int64) (*domain.Link, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *LinkService) ListLinks(ctx context.Context) ([]domain.Link, error) {
	links, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	if links == nil {
		links = []domain.Link{}
	}
	return links, nil
}

// UpdateLink replaces every editable field of the link. The stored row's id
// and createdAt are kept.
func (s *LinkService) UpdateLink(ctx context.Context, id int64, fields domain.LinkFields) (*domain.Link, error) {
	fields = fields.Normalize()
	if err := s.validator.ValidateLink(fields); err != nil {
		return nil, err
	}

	link, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	link.Apply(fields)
	if err := s.repo.Update(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *LinkService) DeleteLink(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *LinkService) Health(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

var _ ports.LinkService = (*LinkService)(nil)
