// Package memstore is an in-memory domain.Store used by unit tests and local
// runs without a database. A single store mutex held for the whole
// transaction stands in for row locks: it is stricter than per-row locking
// but preserves the contract the engines rely on (serialized check-then-write
// per contended row, all-or-nothing rollback).
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stayhub/internal/domain"
)

type Store struct {
	mu       sync.Mutex
	users    map[string]domain.User // keyed by lowercase email
	hotels   map[string]domain.Hotel
	rooms    map[string]domain.Room
	bookings map[string]domain.Booking
	reviews  map[string]domain.Review // keyed by booking id
}

func New() *Store {
	return &Store{
		users:    map[string]domain.User{},
		hotels:   map[string]domain.Hotel{},
		rooms:    map[string]domain.Room{},
		bookings: map[string]domain.Booking{},
		reviews:  map[string]domain.Review{},
	}
}

func (s *Store) CreateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return domain.E(domain.CodeEmailAlreadyExists)
	}
	s.users[u.Email] = u
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *Store) CreateHotel(_ context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotels[h.ID] = h
	return nil
}

func (s *Store) GetHotel(_ context.Context, id string) (domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (s *Store) GetHotelDetail(_ context.Context, id string) (domain.HotelDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.HotelDetail{}, domain.ErrNotFound
	}
	hd := domain.HotelDetail{Hotel: h, Rooms: []domain.Room{}}
	for _, r := range s.rooms {
		if r.HotelID == id {
			hd.Rooms = append(hd.Rooms, r)
		}
	}
	sort.Slice(hd.Rooms, func(i, j int) bool { return hd.Rooms[i].RoomNumber < hd.Rooms[j].RoomNumber })
	return hd, nil
}

func (s *Store) CreateRoom(_ context.Context, room domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.HotelID == room.HotelID && r.RoomNumber == room.RoomNumber {
			return domain.E(domain.CodeRoomAlreadyExists)
		}
	}
	s.rooms[room.ID] = room
	return nil
}

func (s *Store) SearchHotels(_ context.Context, q domain.HotelSearchQuery) ([]domain.HotelSearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	minPrices := map[string]decimal.Decimal{}
	for _, r := range s.rooms {
		if p, ok := minPrices[r.HotelID]; !ok || r.PricePerNight.LessThan(p) {
			minPrices[r.HotelID] = r.PricePerNight
		}
	}

	var out []domain.HotelSearchResult
	for _, h := range s.hotels {
		minPrice, ok := minPrices[h.ID] // hotels without rooms are excluded
		if !ok {
			continue
		}
		if q.City != nil && !strings.EqualFold(*q.City, h.City) {
			continue
		}
		if q.Country != nil && !strings.EqualFold(*q.Country, h.Country) {
			continue
		}
		if q.MinRating != nil && h.Rating.LessThan(*q.MinRating) {
			continue
		}
		if q.MinPrice != nil && minPrice.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && minPrice.GreaterThan(*q.MaxPrice) {
			continue
		}
		out = append(out, domain.HotelSearchResult{
			ID:               h.ID,
			Name:             h.Name,
			Description:      h.Description,
			City:             h.City,
			Country:          h.Country,
			Amenities:        h.Amenities,
			Rating:           h.Rating,
			TotalReviews:     h.TotalReviews,
			MinPricePerNight: minPrice,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Rating.Equal(out[j].Rating) {
			return out[i].Rating.GreaterThan(out[j].Rating)
		}
		return out[i].MinPricePerNight.LessThan(out[j].MinPricePerNight)
	})
	return out, nil
}

func (s *Store) ListBookings(_ context.Context, userID string, status *domain.BookingStatus) ([]domain.BookingView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.BookingView
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		v := domain.BookingView{Booking: b}
		if h, ok := s.hotels[b.HotelID]; ok {
			v.HotelName = h.Name
		}
		if r, ok := s.rooms[b.RoomID]; ok {
			v.RoomNumber = r.RoomNumber
			v.RoomType = r.RoomType
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingDate.After(out[j].BookingDate) })
	return out, nil
}

// WithinTx holds the store mutex for the whole callback and restores a
// snapshot on error, so partial writes are never observable.
func (s *Store) WithinTx(_ context.Context, fn func(domain.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&tx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshotData struct {
	hotels   map[string]domain.Hotel
	bookings map[string]domain.Booking
	reviews  map[string]domain.Review
}

func (s *Store) snapshot() snapshotData {
	return snapshotData{
		hotels:   cloneMap(s.hotels),
		bookings: cloneMap(s.bookings),
		reviews:  cloneMap(s.reviews),
	}
}

func (s *Store) restore(snap snapshotData) {
	s.hotels = snap.hotels
	s.bookings = snap.bookings
	s.reviews = snap.reviews
}

func cloneMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type tx struct{ s *Store }

func (t *tx) RoomForUpdate(_ context.Context, roomID string) (domain.Room, string, error) {
	r, ok := t.s.rooms[roomID]
	if !ok {
		return domain.Room{}, "", domain.ErrNotFound
	}
	h := t.s.hotels[r.HotelID]
	return r, h.OwnerID, nil
}

func (t *tx) HasOverlap(_ context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	for _, b := range t.s.bookings {
		if b.RoomID != roomID || b.Status != domain.BookingConfirmed {
			continue
		}
		if b.CheckInDate.Before(checkOut) && b.CheckOutDate.After(checkIn) {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) InsertBooking(_ context.Context, b domain.Booking) error {
	t.s.bookings[b.ID] = b
	return nil
}

func (t *tx) BookingForUpdate(_ context.Context, id string) (domain.Booking, error) {
	b, ok := t.s.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (t *tx) MarkBookingCancelled(_ context.Context, id string, at time.Time) error {
	b, ok := t.s.bookings[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = domain.BookingCancelled
	b.CancelledAt = &at
	t.s.bookings[id] = b
	return nil
}

func (t *tx) BookingWithReviewFlag(_ context.Context, id string) (domain.Booking, bool, error) {
	b, ok := t.s.bookings[id]
	if !ok {
		return domain.Booking{}, false, domain.ErrNotFound
	}
	_, reviewed := t.s.reviews[id]
	return b, reviewed, nil
}

func (t *tx) HotelForUpdate(_ context.Context, id string) (domain.Hotel, error) {
	h, ok := t.s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (t *tx) InsertReview(_ context.Context, r domain.Review) error {
	if _, ok := t.s.reviews[r.BookingID]; ok {
		return domain.E(domain.CodeAlreadyReviewed)
	}
	t.s.reviews[r.BookingID] = r
	return nil
}

func (t *tx) ReviewStats(_ context.Context, hotelID string) (decimal.Decimal, int, error) {
	sum, count := int64(0), 0
	for _, r := range t.s.reviews {
		if r.HotelID == hotelID {
			sum += int64(r.Rating)
			count++
		}
	}
	if count == 0 {
		return decimal.Zero, 0, nil
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(count))), count, nil
}

func (t *tx) UpdateHotelRating(_ context.Context, hotelID string, rating decimal.Decimal, totalReviews int) error {
	h, ok := t.s.hotels[hotelID]
	if !ok {
		return domain.ErrNotFound
	}
	h.Rating = rating
	h.TotalReviews = totalReviews
	t.s.hotels[hotelID] = h
	return nil
}
