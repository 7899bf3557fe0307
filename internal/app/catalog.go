package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stayhub/internal/domain"
)

// CatalogService owns hotel/room writes and the cached read paths.
type CatalogService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(store domain.Store, cache domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{store: store, cache: cache, cacheTTL: ttl}
}

type CreateHotelInput struct {
	Name        string
	Description *string
	City        string
	Country     string
	Amenities   []string
}

func (s *CatalogService) CreateHotel(ctx context.Context, ownerID string, in CreateHotelInput) (domain.Hotel, error) {
	h := domain.Hotel{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		City:        in.City,
		Country:     in.Country,
		Amenities:   in.Amenities,
		OwnerID:     ownerID,
		Rating:      decimal.Zero,
	}
	if h.Amenities == nil {
		h.Amenities = []string{}
	}
	if err := s.store.CreateHotel(ctx, h); err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

type CreateRoomInput struct {
	RoomNumber    string
	RoomType      string
	MaxOccupancy  int
	PricePerNight decimal.Decimal
}

func (s *CatalogService) CreateRoom(ctx context.Context, ownerID, hotelID string, in CreateRoomInput) (domain.Room, error) {
	h, err := s.store.GetHotel(ctx, hotelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Room{}, domain.E(domain.CodeHotelNotFound)
		}
		return domain.Room{}, err
	}
	if h.OwnerID != ownerID {
		return domain.Room{}, domain.E(domain.CodeForbidden)
	}
	r := domain.Room{
		ID:            uuid.NewString(),
		HotelID:       hotelID,
		RoomNumber:    in.RoomNumber,
		RoomType:      in.RoomType,
		MaxOccupancy:  in.MaxOccupancy,
		PricePerNight: in.PricePerNight,
	}
	if err := s.store.CreateRoom(ctx, r); err != nil {
		return domain.Room{}, err
	}
	s.invalidateHotel(ctx, hotelID)
	return r, nil
}

func (s *CatalogService) GetHotel(ctx context.Context, id string) (domain.HotelDetail, error) {
	key := hotelKey(id)
	var hd domain.HotelDetail
	if ok, _ := s.cache.Get(ctx, key, &hd); ok {
		return hd, nil
	}
	hd, err := s.store.GetHotelDetail(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.HotelDetail{}, domain.E(domain.CodeHotelNotFound)
		}
		return domain.HotelDetail{}, err
	}
	_ = s.cache.Set(ctx, key, hd, int(s.cacheTTL.Seconds()))
	return hd, nil
}

// Search results are cached per filter combination and expire by TTL only;
// detail entries are invalidated explicitly on writes.
func (s *CatalogService) Search(ctx context.Context, q domain.HotelSearchQuery) ([]domain.HotelSearchResult, error) {
	key := searchKey(q)
	var out []domain.HotelSearchResult
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.store.SearchHotels(ctx, q)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.HotelSearchResult{}
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// InvalidateHotel drops the cached detail after a write that changes it
// (room added, rating recomputed).
func (s *CatalogService) InvalidateHotel(ctx context.Context, id string) {
	s.invalidateHotel(ctx, id)
}

func (s *CatalogService) invalidateHotel(ctx context.Context, id string) {
	_ = s.cache.Del(ctx, hotelKey(id))
}

func hotelKey(id string) string { return "hotel:" + id }

func searchKey(q domain.HotelSearchQuery) string {
	part := func(p *string) string {
		if p == nil {
			return ""
		}
		return strings.ToLower(*p)
	}
	dec := func(d *decimal.Decimal) string {
		if d == nil {
			return ""
		}
		return d.String()
	}
	return fmt.Sprintf("hotels:%s:%s:%s:%s:%s",
		part(q.City), part(q.Country), dec(q.MinPrice), dec(q.MaxPrice), dec(q.MinRating))
}
