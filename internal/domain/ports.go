package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the relational store handle, constructed once at process start
// and passed down explicitly.
type Store interface {
	// Credential paths
	CreateUser(ctx context.Context, u User) error
	GetUserByEmail(ctx context.Context, email string) (User, error)

	// Catalog paths
	CreateHotel(ctx context.Context, h Hotel) error
	GetHotel(ctx context.Context, id string) (Hotel, error)
	GetHotelDetail(ctx context.Context, id string) (HotelDetail, error)
	CreateRoom(ctx context.Context, r Room) error
	SearchHotels(ctx context.Context, q HotelSearchQuery) ([]HotelSearchResult, error)

	// Booking read path
	ListBookings(ctx context.Context, userID string, status *BookingStatus) ([]BookingView, error)

	// WithinTx runs fn inside one transaction: commit on nil, full rollback
	// on error. Row locks taken through Tx are held until then.
	WithinTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the transactional surface the booking and review engines run on.
// *ForUpdate methods take an exclusive row lock (select-for-update) that the
// store holds until commit or rollback.
type Tx interface {
	// RoomForUpdate locks the room row and returns the owning hotel's owner
	// id from the same read.
	RoomForUpdate(ctx context.Context, roomID string) (Room, string, error)
	// HasOverlap reports whether a confirmed booking on the room intersects
	// the half-open interval [checkIn, checkOut).
	HasOverlap(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
	InsertBooking(ctx context.Context, b Booking) error

	BookingForUpdate(ctx context.Context, id string) (Booking, error)
	MarkBookingCancelled(ctx context.Context, id string, at time.Time) error

	// BookingWithReviewFlag reads a booking plus whether a review already
	// references it.
	BookingWithReviewFlag(ctx context.Context, id string) (Booking, bool, error)
	HotelForUpdate(ctx context.Context, id string) (Hotel, error)
	InsertReview(ctx context.Context, r Review) error
	// ReviewStats recounts the authoritative aggregate post-insert.
	ReviewStats(ctx context.Context, hotelID string) (avg decimal.Decimal, count int, err error)
	UpdateHotelRating(ctx context.Context, hotelID string, rating decimal.Decimal, totalReviews int) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
