package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking holds a half-open [CheckInDate, CheckOutDate) date interval.
// No two confirmed bookings for the same room may overlap.
type Booking struct {
	ID           string          `json:"id"`
	RoomID       string          `json:"roomId"`
	HotelID      string          `json:"hotelId"` // denormalized for query convenience
	UserID       string          `json:"userId"`
	CheckInDate  time.Time       `json:"checkInDate"`
	CheckOutDate time.Time       `json:"checkOutDate"`
	Guests       int             `json:"guests"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Status       BookingStatus   `json:"status"`
	BookingDate  time.Time       `json:"bookingDate"`
	CancelledAt  *time.Time      `json:"cancelledAt,omitempty"`
}

// BookingView enriches a booking with hotel and room display fields
// for the list endpoint.
type BookingView struct {
	Booking
	HotelName  string `json:"hotelName"`
	RoomNumber string `json:"roomNumber"`
	RoomType   string `json:"roomType"`
}
