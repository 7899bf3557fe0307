package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"stayhub/internal/domain"
)

// tx implements domain.Tx over one *sql.Tx. The *ForUpdate reads take
// InnoDB exclusive row locks held until the enclosing commit/rollback.
type tx struct{ tx *sql.Tx }

const dateLayout = "2006-01-02"

func (t *tx) RoomForUpdate(ctx context.Context, roomID string) (domain.Room, string, error) {
	var r domain.Room
	var ownerID string
	err := t.tx.QueryRowContext(ctx, roomForUpdateSQL, roomID).
		Scan(&r.ID, &r.HotelID, &r.RoomNumber, &r.RoomType, &r.MaxOccupancy, &r.PricePerNight, &ownerID)
	if err == sql.ErrNoRows {
		return domain.Room{}, "", domain.ErrNotFound
	}
	if err != nil {
		return domain.Room{}, "", err
	}
	return r, ownerID, nil
}

func (t *tx) HasOverlap(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx, hasOverlapSQL,
		roomID, checkOut.Format(dateLayout), checkIn.Format(dateLayout)).Scan(&exists)
	return exists, err
}

func (t *tx) InsertBooking(ctx context.Context, b domain.Booking) error {
	_, err := t.tx.ExecContext(ctx, insertBookingSQL,
		b.ID, b.RoomID, b.HotelID, b.UserID,
		b.CheckInDate.Format(dateLayout), b.CheckOutDate.Format(dateLayout),
		b.Guests, b.TotalPrice, string(b.Status), b.BookingDate)
	return err
}

func scanBooking(scan func(dest ...any) error, extra ...any) (domain.Booking, error) {
	var b domain.Booking
	var status string
	var cancelledAt sql.NullTime
	dest := []any{
		&b.ID, &b.RoomID, &b.HotelID, &b.UserID,
		&b.CheckInDate, &b.CheckOutDate, &b.Guests, &b.TotalPrice,
		&status, &b.BookingDate, &cancelledAt,
	}
	dest = append(dest, extra...)
	if err := scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	if cancelledAt.Valid {
		at := cancelledAt.Time
		b.CancelledAt = &at
	}
	return b, nil
}

func (t *tx) BookingForUpdate(ctx context.Context, id string) (domain.Booking, error) {
	row := t.tx.QueryRowContext(ctx, bookingForUpdateSQL, id)
	return scanBooking(row.Scan)
}

func (t *tx) MarkBookingCancelled(ctx context.Context, id string, at time.Time) error {
	_, err := t.tx.ExecContext(ctx, markBookingCancelledSQL, at, id)
	return err
}

func (t *tx) BookingWithReviewFlag(ctx context.Context, id string) (domain.Booking, bool, error) {
	var reviewed bool
	row := t.tx.QueryRowContext(ctx, bookingWithReviewFlagSQL, id)
	b, err := scanBooking(row.Scan, &reviewed)
	if err != nil {
		return domain.Booking{}, false, err
	}
	return b, reviewed, nil
}

func (t *tx) HotelForUpdate(ctx context.Context, id string) (domain.Hotel, error) {
	var h domain.Hotel
	var desc sql.NullString
	var amenitiesJSON []byte
	err := t.tx.QueryRowContext(ctx, hotelForUpdateSQL, id).
		Scan(&h.ID, &h.Name, &desc, &h.City, &h.Country,
			&amenitiesJSON, &h.OwnerID, &h.Rating, &h.TotalReviews)
	if err == sql.ErrNoRows {
		return domain.Hotel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hotel{}, err
	}
	h.Description = strPtr(desc)
	h.Amenities = []string{}
	_ = json.Unmarshal(amenitiesJSON, &h.Amenities)
	return h, nil
}

func (t *tx) InsertReview(ctx context.Context, r domain.Review) error {
	_, err := t.tx.ExecContext(ctx, insertReviewSQL,
		r.ID, r.BookingID, r.HotelID, r.UserID, r.Rating, valStr(r.Comment))
	if mysqlDup(err) {
		// unique key on booking_id backstops concurrent double reviews
		return domain.E(domain.CodeAlreadyReviewed)
	}
	return err
}

func (t *tx) ReviewStats(ctx context.Context, hotelID string) (decimal.Decimal, int, error) {
	var avg decimal.Decimal
	var count int
	err := t.tx.QueryRowContext(ctx, reviewStatsSQL, hotelID).Scan(&avg, &count)
	return avg, count, err
}

func (t *tx) UpdateHotelRating(ctx context.Context, hotelID string, rating decimal.Decimal, totalReviews int) error {
	_, err := t.tx.ExecContext(ctx, updateHotelRatingSQL, rating, totalReviews, hotelID)
	return err
}
