package domain

// Review is tied to exactly one booking and is immutable after creation.
type Review struct {
	ID        string  `json:"id"`
	BookingID string  `json:"bookingId"`
	HotelID   string  `json:"hotelId"`
	UserID    string  `json:"userId"`
	Rating    int     `json:"rating"` // 1..5
	Comment   *string `json:"comment,omitempty"`
}
