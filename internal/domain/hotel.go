package domain

import "github.com/shopspring/decimal"

func init() {
	// Decimals go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Hotel struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	City         string          `json:"city"`
	Country      string          `json:"country"`
	Amenities    []string        `json:"amenities"`
	OwnerID      string          `json:"ownerId"`
	Rating       decimal.Decimal `json:"rating"`       // running average, mutated only by the review engine
	TotalReviews int             `json:"totalReviews"` // ditto
}

// HotelDetail is the hotel read model with its rooms embedded.
type HotelDetail struct {
	Hotel
	Rooms []Room `json:"rooms"`
}

// HotelSearchQuery filters are conjunctive; city/country match case-insensitively.
// Price bounds apply to the per-hotel minimum room price.
type HotelSearchQuery struct {
	City      *string
	Country   *string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	MinRating *decimal.Decimal
}

type HotelSearchResult struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      *string         `json:"description"`
	City             string          `json:"city"`
	Country          string          `json:"country"`
	Amenities        []string        `json:"amenities"`
	Rating           decimal.Decimal `json:"rating"`
	TotalReviews     int             `json:"totalReviews"`
	MinPricePerNight decimal.Decimal `json:"minPricePerNight"`
}
