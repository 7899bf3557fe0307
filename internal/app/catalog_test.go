package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stayhub/internal/domain"
	"stayhub/internal/storage/memstore"
)

// fakeCache round-trips values through JSON like the real adapter does.
type fakeCache struct{ store map[string][]byte }

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func newCatalogFixture() (*CatalogService, *memstore.Store, *fakeCache) {
	st := memstore.New()
	cache := &fakeCache{}
	return NewCatalogService(st, cache, 5*time.Minute), st, cache
}

func TestCreateHotel(t *testing.T) {
	svc, st, _ := newCatalogFixture()

	h, err := svc.CreateHotel(context.Background(), "owner-1", CreateHotelInput{
		Name: "Harbor View", City: "Lisbon", Country: "Portugal",
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if h.OwnerID != "owner-1" || !h.Rating.IsZero() || h.TotalReviews != 0 {
		t.Fatalf("unexpected hotel: %+v", h)
	}
	if h.Amenities == nil {
		t.Fatalf("amenities should default to empty slice")
	}
	if _, err := st.GetHotel(context.Background(), h.ID); err != nil {
		t.Fatalf("not persisted: %v", err)
	}
}

func TestCreateRoom(t *testing.T) {
	svc, _, _ := newCatalogFixture()
	ctx := context.Background()

	h, err := svc.CreateHotel(ctx, "owner-1", CreateHotelInput{Name: "Harbor View", City: "Lisbon", Country: "Portugal"})
	if err != nil {
		t.Fatalf("create hotel: %v", err)
	}

	in := CreateRoomInput{RoomNumber: "101", RoomType: "double", MaxOccupancy: 2, PricePerNight: decimal.NewFromInt(120)}

	_, err = svc.CreateRoom(ctx, "owner-1", "missing", in)
	wantCode(t, err, domain.CodeHotelNotFound)

	_, err = svc.CreateRoom(ctx, "other-owner", h.ID, in)
	wantCode(t, err, domain.CodeForbidden)

	if _, err := svc.CreateRoom(ctx, "owner-1", h.ID, in); err != nil {
		t.Fatalf("create room: %v", err)
	}
	_, err = svc.CreateRoom(ctx, "owner-1", h.ID, in)
	wantCode(t, err, domain.CodeRoomAlreadyExists)
}

func TestGetHotel_CacheMissThenHit(t *testing.T) {
	svc, st, _ := newCatalogFixture()
	ctx := context.Background()

	h, err := svc.CreateHotel(ctx, "owner-1", CreateHotelInput{Name: "Harbor View", City: "Lisbon", Country: "Portugal"})
	if err != nil {
		t.Fatalf("create hotel: %v", err)
	}

	// Miss (first time, populates cache)
	got, err := svc.GetHotel(ctx, h.ID)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got.Name != "Harbor View" || got.Rooms == nil {
		t.Fatalf("unexpected detail: %+v", got)
	}

	// Mutate the store to prove the second read comes from cache
	mutated := h
	mutated.Name = "SHOULD NOT SEE THIS"
	if err := st.CreateHotel(ctx, mutated); err != nil {
		t.Fatalf("mutate: %v", err)
	}

	got2, err := svc.GetHotel(ctx, h.ID)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got2.Name != "Harbor View" {
		t.Fatalf("expected cached name, got %s", got2.Name)
	}
}

func TestCreateRoom_InvalidatesHotelDetail(t *testing.T) {
	svc, _, _ := newCatalogFixture()
	ctx := context.Background()

	h, _ := svc.CreateHotel(ctx, "owner-1", CreateHotelInput{Name: "Harbor View", City: "Lisbon", Country: "Portugal"})
	if _, err := svc.GetHotel(ctx, h.ID); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	if _, err := svc.CreateRoom(ctx, "owner-1", h.ID, CreateRoomInput{
		RoomNumber: "101", RoomType: "double", MaxOccupancy: 2, PricePerNight: decimal.NewFromInt(120),
	}); err != nil {
		t.Fatalf("create room: %v", err)
	}

	got, err := svc.GetHotel(ctx, h.ID)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(got.Rooms) != 1 {
		t.Fatalf("stale detail after room insert: %+v", got.Rooms)
	}
}

func TestGetHotel_NotFound(t *testing.T) {
	svc, _, _ := newCatalogFixture()
	_, err := svc.GetHotel(context.Background(), "missing")
	wantCode(t, err, domain.CodeHotelNotFound)
}

func TestSearch(t *testing.T) {
	svc, _, _ := newCatalogFixture()
	ctx := context.Background()

	seed := func(name, city string, rating string, price int64) string {
		h, err := svc.CreateHotel(ctx, "owner-1", CreateHotelInput{Name: name, City: city, Country: "Portugal"})
		if err != nil {
			t.Fatalf("seed hotel: %v", err)
		}
		if _, err := svc.CreateRoom(ctx, "owner-1", h.ID, CreateRoomInput{
			RoomNumber: "101", RoomType: "double", MaxOccupancy: 2, PricePerNight: decimal.NewFromInt(price),
		}); err != nil {
			t.Fatalf("seed room: %v", err)
		}
		// simulate accumulated reviews
		r, _ := decimal.NewFromString(rating)
		err = svcStore(svc).WithinTx(ctx, func(tx domain.Tx) error {
			return tx.UpdateHotelRating(ctx, h.ID, r, 10)
		})
		if err != nil {
			t.Fatalf("seed rating: %v", err)
		}
		return h.ID
	}

	cheapID := seed("Cheap Sleep", "Lisbon", "3.50", 40)
	fancyID := seed("Fancy Stay", "Lisbon", "4.80", 300)
	portoID := seed("Porto Inn", "Porto", "4.00", 90)
	// hotel without rooms never shows up
	if _, err := svc.CreateHotel(ctx, "owner-1", CreateHotelInput{Name: "Empty", City: "Lisbon", Country: "Portugal"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	all, err := svc.Search(ctx, domain.HotelSearchQuery{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 results, got %d", len(all))
	}
	// rating descending
	if all[0].ID != fancyID || all[1].ID != portoID || all[2].ID != cheapID {
		t.Fatalf("order: %s %s %s", all[0].Name, all[1].Name, all[2].Name)
	}

	city := "lisbon" // case-insensitive
	byCity, _ := svc.Search(ctx, domain.HotelSearchQuery{City: &city})
	if len(byCity) != 2 {
		t.Fatalf("city filter: %+v", byCity)
	}

	maxPrice := decimal.NewFromInt(100)
	minRating, _ := decimal.NewFromString("3.8")
	filtered, _ := svc.Search(ctx, domain.HotelSearchQuery{MaxPrice: &maxPrice, MinRating: &minRating})
	if len(filtered) != 1 || filtered[0].ID != portoID {
		t.Fatalf("combined filter: %+v", filtered)
	}
}

func TestSearch_CachedPerFilterCombination(t *testing.T) {
	svc, _, cache := newCatalogFixture()
	ctx := context.Background()

	h, _ := svc.CreateHotel(ctx, "owner-1", CreateHotelInput{Name: "Harbor View", City: "Lisbon", Country: "Portugal"})
	if _, err := svc.CreateRoom(ctx, "owner-1", h.ID, CreateRoomInput{
		RoomNumber: "101", RoomType: "double", MaxOccupancy: 2, PricePerNight: decimal.NewFromInt(120),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	city := "Lisbon"
	if _, err := svc.Search(ctx, domain.HotelSearchQuery{City: &city}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if _, err := svc.Search(ctx, domain.HotelSearchQuery{}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(cache.store) != 2 {
		t.Fatalf("expected two cache entries, got %d", len(cache.store))
	}
}

// svcStore exposes the underlying store for test seeding.
func svcStore(s *CatalogService) domain.Store { return s.store }
