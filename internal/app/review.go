package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/adapters/observability"
	"stayhub/internal/domain"
)

// ReviewService creates post-stay reviews and folds them into the owning
// hotel's rating aggregate. The hotel row lock serializes concurrent
// recomputations so the stored average is always the authoritative recount,
// never a stale incremental update.
type ReviewService struct {
	store   domain.Store
	catalog *CatalogService
	now     func() time.Time
}

func NewReviewService(store domain.Store, catalog *CatalogService) *ReviewService {
	return &ReviewService{store: store, catalog: catalog, now: time.Now}
}

type CreateReviewInput struct {
	BookingID string
	Rating    int // 1..5
	Comment   *string
}

func (s *ReviewService) Create(ctx context.Context, userID string, in CreateReviewInput) (domain.Review, error) {
	today := Midnight(s.now())

	var review domain.Review
	var hotelID string
	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		b, hasReview, err := tx.BookingWithReviewFlag(ctx, in.BookingID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.E(domain.CodeBookingNotFound)
			}
			return err
		}
		if b.UserID != userID {
			return domain.E(domain.CodeForbidden)
		}
		if b.Status != domain.BookingConfirmed || b.CheckOutDate.After(today) {
			return domain.E(domain.CodeBookingNotEligible)
		}
		if hasReview {
			return domain.E(domain.CodeAlreadyReviewed)
		}

		if _, err := tx.HotelForUpdate(ctx, b.HotelID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.E(domain.CodeHotelNotFound)
			}
			return err
		}

		review = domain.Review{
			ID:        uuid.NewString(),
			BookingID: b.ID,
			HotelID:   b.HotelID,
			UserID:    userID,
			Rating:    in.Rating,
			Comment:   in.Comment,
		}
		if err := tx.InsertReview(ctx, review); err != nil {
			return err
		}

		avg, count, err := tx.ReviewStats(ctx, b.HotelID)
		if err != nil {
			return err
		}
		hotelID = b.HotelID
		return tx.UpdateHotelRating(ctx, b.HotelID, avg.Round(2), count)
	})
	if err != nil {
		return domain.Review{}, err
	}
	observability.ReviewsCreated.Inc()
	if s.catalog != nil {
		s.catalog.InvalidateHotel(ctx, hotelID)
	}
	return review, nil
}
