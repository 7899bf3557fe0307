package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stayhub/internal/adapters/observability"
	"stayhub/internal/domain"
)

// BookingService serializes all booking attempts per room through the room
// row lock; the database is the sole serialization point.
type BookingService struct {
	store domain.Store
	now   func() time.Time
}

func NewBookingService(store domain.Store) *BookingService {
	return &BookingService{store: store, now: time.Now}
}

type CreateBookingInput struct {
	RoomID       string
	CheckInDate  time.Time
	CheckOutDate time.Time
	Guests       int
}

// Midnight truncates to the calendar date in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create books a room for [checkIn, checkOut). The whole sequence runs in
// one transaction: the room row lock taken first makes the overlap check and
// insert effectively single-threaded per room.
func (s *BookingService) Create(ctx context.Context, userID string, role domain.Role, in CreateBookingInput) (domain.Booking, error) {
	checkIn := Midnight(in.CheckInDate)
	checkOut := Midnight(in.CheckOutDate)
	today := Midnight(s.now())

	if !checkIn.After(today) {
		return domain.Booking{}, domain.E(domain.CodeInvalidDates)
	}
	if !checkIn.Before(checkOut) {
		return domain.Booking{}, domain.E(domain.CodeInvalidDates)
	}

	var booking domain.Booking
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		room, ownerID, err := tx.RoomForUpdate(ctx, in.RoomID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.E(domain.CodeRoomNotFound)
			}
			return err
		}
		if role == domain.RoleOwner && ownerID == userID {
			// owners cannot book their own rooms
			return domain.E(domain.CodeForbidden)
		}
		overlap, err := tx.HasOverlap(ctx, room.ID, checkIn, checkOut)
		if err != nil {
			return err
		}
		if overlap {
			observability.BookingConflicts.Inc()
			return domain.E(domain.CodeRoomNotAvailable)
		}
		if in.Guests > room.MaxOccupancy {
			return domain.E(domain.CodeInvalidCapacity)
		}

		nights := int64(checkOut.Sub(checkIn).Hours() / 24)
		booking = domain.Booking{
			ID:           uuid.NewString(),
			RoomID:       room.ID,
			HotelID:      room.HotelID,
			UserID:       userID,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
			Guests:       in.Guests,
			TotalPrice:   room.PricePerNight.Mul(decimal.NewFromInt(nights)),
			Status:       domain.BookingConfirmed,
			BookingDate:  s.now().UTC(),
		}
		return tx.InsertBooking(ctx, booking)
	})
	if err != nil {
		return domain.Booking{}, err
	}
	observability.BookingsCreated.Inc()
	return booking, nil
}

// Cancel flips a confirmed booking to cancelled. Only the booking's owner
// may cancel, only once, and only up to 24h before check-in.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID string) (domain.Booking, error) {
	var booking domain.Booking
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.E(domain.CodeBookingNotFound)
			}
			return err
		}
		if b.UserID != userID {
			return domain.E(domain.CodeForbidden)
		}
		if b.Status == domain.BookingCancelled {
			return domain.E(domain.CodeAlreadyCancelled)
		}
		now := s.now().UTC()
		if b.CheckInDate.Sub(now) < 24*time.Hour {
			return domain.E(domain.CodeCancellationDeadlinePassed)
		}
		if err := tx.MarkBookingCancelled(ctx, b.ID, now); err != nil {
			return err
		}
		b.Status = domain.BookingCancelled
		b.CancelledAt = &now
		booking = b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, userID string, status *domain.BookingStatus) ([]domain.BookingView, error) {
	out, err := s.store.ListBookings(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.BookingView{}
	}
	return out, nil
}
