package service

import (
	"context"
	"errors"

	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/repository"
)

var (
	ErrNewsNotFound      = errors.New("news not found")
	ErrHeroImageNotFound = errors.New("hero image not found")
	ErrImageRequired     = errors.New("image is required")
)

// NewsService handles public announcements.
type NewsService struct {
	repo NewsStore
	docs Storer
}

func NewNewsService(repo NewsStore, docs Storer) *NewsService {
	return &NewsService{repo: repo, docs: docs}
}

// List returns a page of news. Public callers only see published items.
func (s *NewsService) List(ctx context.Context, publishedOnly bool, page, perPage int) ([]model.News, int, error) {
	return s.repo.List(ctx, publishedOnly, page, perPage)
}

// Get returns one item. Unpublished items are hidden from public callers.
func (s *NewsService) Get(ctx context.Context, id int, publishedOnly bool) (*model.News, error) {
	n, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && publishedOnly && !n.IsPublished) {
		return nil, ErrNewsNotFound
	}
	return n, err
}

func (s *NewsService) Create(ctx context.Context, req model.NewsRequest) (*model.News, error) {
	n := &model.News{Title: req.Title, Content: req.Content, ImageURL: req.ImageURL, IsPublished: req.IsPublished}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Update replaces an item. A replaced image is discarded.
func (s *NewsService) Update(ctx context.Context, id int, req model.NewsRequest) (*model.News, error) {
	n, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	old := n.ImageURL
	n.Title, n.Content, n.ImageURL, n.IsPublished = req.Title, req.Content, req.ImageURL, req.IsPublished
	if err := s.repo.Update(ctx, n); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}
	if old != nil && (n.ImageURL == nil || *old != *n.ImageURL) {
		s.docs.Discard(ctx, *old)
	}
	return n, nil
}

func (s *NewsService) Delete(ctx context.Context, id int) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNewsNotFound
		}
		return err
	}
	if n.ImageURL != nil {
		s.docs.Discard(ctx, *n.ImageURL)
	}
	return nil
}

// HeroImageService handles the landing page carousel.
type HeroImageService struct {
	repo HeroImageStore
	docs Storer
}

func NewHeroImageService(repo HeroImageStore, docs Storer) *HeroImageService {
	return &HeroImageService{repo: repo, docs: docs}
}

func (s *HeroImageService) List(ctx context.Context, activeOnly bool) ([]model.HeroImage, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *HeroImageService) Create(ctx context.Context, req model.HeroImageRequest) (*model.HeroImage, error) {
	if req.ImageURL == "" {
		return nil, ErrImageRequired
	}
	h := &model.HeroImage{
		ImageURL:  req.ImageURL,
		Caption:   req.Caption,
		LinkURL:   req.LinkURL,
		SortOrder: req.SortOrder,
		IsActive:  req.IsActive,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Update changes a slide. An empty ImageURL keeps the current image.
func (s *HeroImageService) Update(ctx context.Context, id int, req model.HeroImageRequest) (*model.HeroImage, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHeroImageNotFound
		}
		return nil, err
	}
	old := h.ImageURL
	if req.ImageURL != "" {
		h.ImageURL = req.ImageURL
	}
	h.Caption, h.LinkURL, h.SortOrder, h.IsActive = req.Caption, req.LinkURL, req.SortOrder, req.IsActive

	if err := s.repo.Update(ctx, h); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHeroImageNotFound
		}
		return nil, err
	}
	if old != h.ImageURL {
		s.docs.Discard(ctx, old)
	}
	return h, nil
}

func (s *HeroImageService) Delete(ctx context.Context, id int) error {
	h, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrHeroImageNotFound
		}
		return err
	}
	s.docs.Discard(ctx, h.ImageURL)
	return nil
}
