package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"property_portal/internal/model"
	"property_portal/internal/repository"
	"property_portal/internal/storage"
)

var ErrPropertyNotFound = errors.New("property not found")

// PropertyService defines operations for property listings
type PropertyService interface {
	ListProperties(ctx context.Context) ([]model.Property, error)
	GetProperty(ctx context.Context, id int) (*model.Property, error)
	CreateProperty(ctx context.Context, input model.PropertyInput, image *multipart.FileHeader) (*model.Property, error)
	UpdateProperty(ctx context.Context, id int, input model.PropertyInput, image *multipart.FileHeader) (*model.Property, error)
	DeleteProperty(ctx context.Context, id int) error
	SeedDefaults(ctx context.Context) (int, error)

	// Catalog methods
	ExportCSV(ctx context.Context) (*bytes.Buffer, error)
	ImportXLSX(ctx context.Context, r io.Reader) (*ImportResult, error)
}

type propertyService struct {
	repo   repository.PropertyRepository
	images *storage.ImageStore
	now    func() time.Time
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(repo repository.PropertyRepository, images *storage.ImageStore) PropertyService {
	return &propertyService{
		repo:   repo,
		images: images,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *propertyService) ListProperties(ctx context.Context) ([]model.Property, error) {
	properties, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties from repo: %w", err)
	}
	return properties, nil
}

func (s *propertyService) GetProperty(ctx context.Context, id int) (*model.Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find property by ID: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}
	return property, nil
}

func (s *propertyService) CreateProperty(ctx context.Context, input model.PropertyInput, image *multipart.FileHeader) (*model.Property, error) {
	imageRef := model.DefaultImageURL
	if input.ImageURL != "" {
		imageRef = input.ImageURL
	}

	var uploaded string
	if image != nil {
		ref, err := s.images.Save(image)
		if err != nil {
			return nil, err
		}
		uploaded = ref
		imageRef = ref
	}

	status := input.Status
	if status == "" {
		status = model.StatusAvailable
	}

	now := s.now()
	property := &model.Property{
		Title:     input.Title,
		Location:  input.Location,
		Price:     input.Price,
		Type:      input.Type,
		Beds:      input.Beds,
		Baths:     input.Baths,
		Area:      input.Area,
		Image:     imageRef,
		Status:    status,
		City:      optionalString(input.City),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, property); err != nil {
		s.discardUpload(uploaded)
		return nil, fmt.Errorf("failed to create property in repo: %w", err)
	}
	return property, nil
}

func (s *propertyService) UpdateProperty(ctx context.Context, id int, input model.PropertyInput, image *multipart.FileHeader) (*model.Property, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find property for update: %w", err)
	}
	if existing == nil {
		return nil, ErrPropertyNotFound
	}

	previousImage := existing.Image
	var uploaded string
	switch {
	case image != nil:
		ref, err := s.images.Save(image)
		if err != nil {
			return nil, err
		}
		uploaded = ref
		existing.Image = ref
	case input.ImageURL != "":
		existing.Image = input.ImageURL
	}

	existing.Title = input.Title
	existing.Location = input.Location
	existing.Price = input.Price
	existing.Type = input.Type
	existing.Beds = input.Beds
	existing.Baths = input.Baths
	existing.Area = input.Area
	existing.City = optionalString(input.City)
	if input.Status != "" {
		existing.Status = input.Status
	}
	existing.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, existing); err != nil {
		s.discardUpload(uploaded)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to update property in repo: %w", err)
	}

	// The row now points at the new image; the old local file is unreferenced.
	if existing.Image != previousImage {
		s.discardUpload(previousImage)
	}
	return existing, nil
}

func (s *propertyService) DeleteProperty(ctx context.Context, id int) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find property for deletion: %w", err)
	}
	if existing == nil {
		return ErrPropertyNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("failed to delete property in repo: %w", err)
	}

	s.discardUpload(existing.Image)
	return nil
}

// discardUpload removes a local image file. Failures are logged only, the
// database row is the source of truth.
func (s *propertyService) discardUpload(ref string) {
	if ref == "" || !storage.IsLocal(ref) {
		return
	}
	if err := s.images.Remove(ref); err != nil {
		log.Printf("Error removing image %s: %v", ref, err)
	}
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
