package services

import (
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/models"
	"github.com/Thinura66/VehicleRental-Backend/internal/repository"
	"github.com/Thinura66/VehicleRental-Backend/pkg/cache"
	"github.com/Thinura66/VehicleRental-Backend/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleService struct {
	vehicleRepo  *repository.VehicleRepository
	cacheManager cache.CacheManager
	cacheConfig  cache.Config
	mediaStore   storage.MediaStore
}

func NewVehicleService(vehicleRepo *repository.VehicleRepository) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		cacheConfig: cache.DefaultConfig(),
	}
}

// SetCacheManager enables cache-first vehicle reads.
func (s *VehicleService) SetCacheManager(cacheManager cache.CacheManager) {
	s.cacheManager = cacheManager
}

// SetMediaStore enables image upload and cascade deletion.
func (s *VehicleService) SetMediaStore(mediaStore storage.MediaStore) {
	s.mediaStore = mediaStore
}

type CreateVehicleRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    string  `json:"category" validate:"required,oneof=car bike scooter bicycle truck van"`
	PricePerDay float64 `json:"pricePerDay" validate:"min=0"`
	Longitude   float64 `json:"longitude" validate:"min=-180,max=180"`
	Latitude    float64 `json:"latitude" validate:"min=-90,max=90"`
	Address     string  `json:"address,omitempty" validate:"omitempty,max=200"`
}

type UpdateVehicleRequest struct {
	Name         string           `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description  string           `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category     string           `json:"category,omitempty" validate:"omitempty,oneof=car bike scooter bicycle truck van"`
	PricePerDay  *float64         `json:"pricePerDay,omitempty" validate:"omitempty,min=0"`
	Location     *models.Location `json:"location,omitempty"`
	Availability *bool            `json:"availability,omitempty"`
}

// VehicleSearchQuery mirrors the listing filters of the public catalog.
type VehicleSearchQuery struct {
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	Available *bool
	Search    string
	Longitude *float64
	Latitude  *float64
	RadiusKm  *float64
	Page      int64
	Limit     int64
	Sort      string
}

// SearchVehicles runs the catalog query. The unfiltered first page is the
// hot path and goes through the cache.
func (s *VehicleService) SearchVehicles(q *VehicleSearchQuery) ([]*models.Vehicle, int64, error) {
	cacheable := s.cacheManager != nil && q.isDefaultPage()
	if cacheable {
		cached, total, err := s.cacheManager.GetVehicleList(cache.DefaultListKey)
		if err == nil && cached != nil {
			return cached, total, nil
		}
		if err != nil {
			log.Printf("cache error for vehicle list: %v", err)
		}
	}

	repoQuery := &repository.VehicleQuery{
		Category:  q.Category,
		MinPrice:  q.MinPrice,
		MaxPrice:  q.MaxPrice,
		Available: q.Available,
		Search:    q.Search,
		Page:      q.Page,
		Limit:     q.Limit,
		Sort:      q.Sort,
	}

	if q.Longitude != nil && q.Latitude != nil {
		radius := 10.0
		if q.RadiusKm != nil && *q.RadiusKm > 0 {
			radius = *q.RadiusKm
		}
		repoQuery.Near = &repository.GeoFilter{
			Longitude: *q.Longitude,
			Latitude:  *q.Latitude,
			RadiusKm:  radius,
		}
	}

	vehicles, total, err := s.vehicleRepo.Search(repoQuery)
	if err != nil {
		return nil, 0, err
	}

	if cacheable {
		if cacheErr := s.cacheManager.SetVehicleList(cache.DefaultListKey, vehicles, total, s.cacheConfig.VehicleListTTL); cacheErr != nil {
			log.Printf("failed to cache vehicle list: %v", cacheErr)
		}
	}

	return vehicles, total, nil
}

// isDefaultPage reports whether the query is the plain first catalog page
// with no filters, the only listing shape worth caching.
func (q *VehicleSearchQuery) isDefaultPage() bool {
	return q.Category == "" && q.MinPrice == nil && q.MaxPrice == nil &&
		q.Available == nil && q.Search == "" && q.Longitude == nil &&
		q.Latitude == nil && (q.Page <= 1) && q.Sort == ""
}

func (s *VehicleService) GetVehicleByID(id string) (*models.Vehicle, error) {
	if s.cacheManager != nil {
		cached, err := s.cacheManager.GetVehicle(id)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			log.Printf("cache error for vehicle %s: %v", id, err)
		}
	}

	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: vehicle %s", ErrNotFound, id)
	}

	if s.cacheManager != nil {
		if cacheErr := s.cacheManager.SetVehicle(id, vehicle, s.cacheConfig.VehicleTTL); cacheErr != nil {
			log.Printf("failed to cache vehicle %s: %v", id, cacheErr)
		}
	}

	return vehicle, nil
}

// CreateVehicle adds a listing. Admin-only; the route layer enforces the
// role, ownerID records which admin created it.
func (s *VehicleService) CreateVehicle(ownerID string, req *CreateVehicleRequest) (*models.Vehicle, error) {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid owner ID", ErrValidation)
	}

	vehicle := &models.Vehicle{
		ID:          primitive.NewObjectID(),
		OwnerID:     oid,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PricePerDay: req.PricePerDay,
		Location: models.Location{
			Longitude: req.Longitude,
			Latitude:  req.Latitude,
			Address:   req.Address,
		},
		Availability:  true,
		AverageRating: 0,
		TotalReviews:  0,
		Images:        []models.VehicleImage{},
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	created, err := s.vehicleRepo.Create(vehicle)
	if err != nil {
		return nil, err
	}

	s.invalidateListings()
	return created, nil
}

func (s *VehicleService) UpdateVehicle(id string, req *UpdateVehicleRequest) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: vehicle %s", ErrNotFound, id)
	}

	if req.Name != "" {
		vehicle.Name = req.Name
	}
	if req.Description != "" {
		vehicle.Description = req.Description
	}
	if req.Category != "" {
		vehicle.Category = req.Category
	}
	if req.PricePerDay != nil {
		vehicle.PricePerDay = *req.PricePerDay
	}
	if req.Location != nil {
		if req.Location.Longitude < -180 || req.Location.Longitude > 180 ||
			req.Location.Latitude < -90 || req.Location.Latitude > 90 {
			return nil, fmt.Errorf("%w: coordinates out of range", ErrValidation)
		}
		vehicle.Location = *req.Location
	}
	if req.Availability != nil {
		vehicle.Availability = *req.Availability
	}

	updated, err := s.vehicleRepo.Update(id, vehicle)
	if err != nil {
		return nil, err
	}

	s.invalidateVehicle(id)
	return updated, nil
}

// DeleteVehicle removes the listing and cascades its images out of the
// media store. A failed image delete is logged, not compensated.
func (s *VehicleService) DeleteVehicle(id string) error {
	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		return fmt.Errorf("%w: vehicle %s", ErrNotFound, id)
	}

	if err := s.vehicleRepo.Delete(id); err != nil {
		return err
	}

	if s.mediaStore != nil {
		for _, image := range vehicle.Images {
			if err := s.mediaStore.Delete(image.URL); err != nil {
				log.Printf("failed to delete image %s for vehicle %s: %v", image.Filename, id, err)
			}
		}
	}

	s.invalidateVehicle(id)
	return nil
}

// AddVehicleImage uploads a file to the media store and appends it to the
// listing.
func (s *VehicleService) AddVehicleImage(id string, file *multipart.FileHeader) (*models.Vehicle, error) {
	if s.mediaStore == nil {
		return nil, fmt.Errorf("media store is not configured")
	}

	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: vehicle %s", ErrNotFound, id)
	}

	ref, err := s.mediaStore.Upload(file, "vehicles")
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	vehicle.Images = append(vehicle.Images, models.VehicleImage{
		URL:      ref.URL,
		Filename: ref.Filename,
	})

	updated, err := s.vehicleRepo.Update(id, vehicle)
	if err != nil {
		return nil, err
	}

	s.invalidateVehicle(id)
	return updated, nil
}

// RemoveVehicleImage detaches an image by filename and deletes it from the
// media store.
func (s *VehicleService) RemoveVehicleImage(id, filename string) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: vehicle %s", ErrNotFound, id)
	}

	var kept []models.VehicleImage
	var removed *models.VehicleImage
	for _, image := range vehicle.Images {
		if image.Filename == filename && removed == nil {
			img := image
			removed = &img
			continue
		}
		kept = append(kept, image)
	}

	if removed == nil {
		return nil, fmt.Errorf("%w: image %s", ErrNotFound, filename)
	}

	vehicle.Images = kept
	if vehicle.Images == nil {
		vehicle.Images = []models.VehicleImage{}
	}

	updated, err := s.vehicleRepo.Update(id, vehicle)
	if err != nil {
		return nil, err
	}

	if s.mediaStore != nil {
		if err := s.mediaStore.Delete(removed.URL); err != nil {
			log.Printf("failed to delete image %s for vehicle %s: %v", filename, id, err)
		}
	}

	s.invalidateVehicle(id)
	return updated, nil
}

// RefreshRating writes a recomputed rollup and drops stale cache entries.
func (s *VehicleService) RefreshRating(id string, averageRating float64, totalReviews int) error {
	if err := s.vehicleRepo.UpdateRating(id, averageRating, totalReviews); err != nil {
		return err
	}
	s.invalidateVehicle(id)
	return nil
}

func (s *VehicleService) invalidateVehicle(id string) {
	if s.cacheManager == nil {
		return
	}
	if err := s.cacheManager.InvalidateVehicle(id); err != nil {
		log.Printf("failed to invalidate vehicle cache %s: %v", id, err)
	}
	s.invalidateListings()
}

func (s *VehicleService) invalidateListings() {
	if s.cacheManager == nil {
		return
	}
	if err := s.cacheManager.InvalidateVehicleLists(); err != nil {
		log.Printf("failed to invalidate vehicle list cache: %v", err)
	}
}
