package domain

import "github.com/shopspring/decimal"

type Room struct {
	ID            string          `json:"id"`
	HotelID       string          `json:"hotelId,omitempty"`
	RoomNumber    string          `json:"roomNumber"` // unique within a hotel
	RoomType      string          `json:"roomType"`
	MaxOccupancy  int             `json:"maxOccupancy"`
	PricePerNight decimal.Decimal `json:"pricePerNight"`
}
