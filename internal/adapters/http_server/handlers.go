package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"stayhub/internal/app"
	"stayhub/internal/domain"
)

type Handlers struct {
	Auth     *app.AuthService
	Catalog  *app.CatalogService
	Bookings *app.BookingService
	Reviews  *app.ReviewService
	Tokens   TokenVerifier
	LoginRPS float64

	validate *validator.Validate
}

func NewHandlers(auth *app.AuthService, catalog *app.CatalogService, bookings *app.BookingService, reviews *app.ReviewService, tokens TokenVerifier, loginRPS float64) *Handlers {
	return &Handlers{
		Auth:     auth,
		Catalog:  catalog,
		Bookings: bookings,
		Reviews:  reviews,
		Tokens:   tokens,
		LoginRPS: loginRPS,
		validate: validator.New(),
	}
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	})

	s.mux.Group(func(r chi.Router) {
		r.Use(RateLimit(h.LoginRPS, int(h.LoginRPS)+1))
		r.Post("/auth/signup", h.signup)
		r.Post("/auth/login", h.login)
	})

	s.mux.Get("/hotels", h.searchHotels)
	s.mux.Get("/hotels/{hotelID}", h.getHotel)

	s.mux.Group(func(r chi.Router) {
		r.Use(Auth(h.Tokens))
		r.With(RequireRole(domain.RoleOwner)).Post("/hotels", h.createHotel)
		r.With(RequireRole(domain.RoleOwner)).Post("/hotels/{hotelID}/rooms", h.createRoom)
		r.Post("/bookings", h.createBooking)
		r.Get("/bookings", h.listBookings)
		r.Put("/bookings/{bookingID}/cancel", h.cancelBooking)
		r.Post("/reviews", h.createReview)
	})
}

// decode unmarshals and validates a request body; any failure is the
// caller's fault, never a 500.
func (h *Handlers) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.E(domain.CodeInvalidRequest)
	}
	if err := h.validate.Struct(dst); err != nil {
		return domain.E(domain.CodeInvalidRequest)
	}
	return nil
}

// parseDate accepts a bare calendar date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ---- auth ----

type signupRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=255"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=255"`
	Role     string  `json:"role" validate:"omitempty,oneof=customer owner"`
	Phone    *string `json:"phone" validate:"omitempty,min=10,max=20"`
}

func (h *Handlers) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := h.decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	u, err := h.Auth.Signup(r.Context(), app.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Phone:    req.Phone,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	tok, u, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}
	u.Phone = nil // login echoes identity only
	writeData(w, http.StatusOK, loginResponse{Token: tok, User: u})
}

// ---- hotels and rooms ----

type createHotelRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	City        string   `json:"city" validate:"required,min=2,max=120"`
	Country     string   `json:"country" validate:"required,min=2,max=120"`
	Amenities   []string `json:"amenities" validate:"omitempty,dive,min=1"`
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var req createHotelRequest
	if err := h.decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	hotel, err := h.Catalog.CreateHotel(r.Context(), UserIDFrom(r.Context()), app.CreateHotelInput{
		Name:        req.Name,
		Description: req.Description,
		City:        req.City,
		Country:     req.Country,
		Amenities:   req.Amenities,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusCreated, hotel)
}

type createRoomRequest struct {
	RoomNumber    string      `json:"roomNumber" validate:"required,min=1,max=32"`
	RoomType      string      `json:"roomType" validate:"required,min=2,max=64"`
	MaxOccupancy  int         `json:"maxOccupancy" validate:"required,gt=0"`
	PricePerNight json.Number `json:"pricePerNight" validate:"required"`
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := h.decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	price, err := decimal.NewFromString(req.PricePerNight.String())
	if err != nil || !price.IsPositive() {
		writeError(w, domain.CodeInvalidRequest)
		return
	}
	room, err := h.Catalog.CreateRoom(r.Context(), UserIDFrom(r.Context()), chi.URLParam(r, "hotelID"), app.CreateRoomInput{
		RoomNumber:    req.RoomNumber,
		RoomType:      req.RoomType,
		MaxOccupancy:  req.MaxOccupancy,
		PricePerNight: price,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusCreated, room)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hd, err := h.Catalog.GetHotel(r.Context(), chi.URLParam(r, "hotelID"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, hd)
}

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	q := domain.HotelSearchQuery{}
	vals := r.URL.Query()

	if city := vals.Get("city"); city != "" {
		q.City = &city
	}
	if country := vals.Get("country"); country != "" {
		q.Country = &country
	}

	parseDec := func(name string) (*decimal.Decimal, bool) {
		s := vals.Get(name)
		if s == "" {
			return nil, true
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, false
		}
		return &d, true
	}

	var ok bool
	if q.MinPrice, ok = parseDec("minPrice"); !ok {
		writeError(w, domain.CodeInvalidRequest)
		return
	}
	if q.MaxPrice, ok = parseDec("maxPrice"); !ok {
		writeError(w, domain.CodeInvalidRequest)
		return
	}
	if q.MinRating, ok = parseDec("minRating"); !ok {
		writeError(w, domain.CodeInvalidRequest)
		return
	}

	if q.MinPrice != nil && !q.MinPrice.IsPositive() {
		writeError(w, domain.CodeInvalidRequest)
		return
	}
	if q.MaxPrice != nil && !q.MaxPrice.IsPositive() {
		writeError(w, domain.CodeInvalidRequest)
		return
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		writeError(w, domain.CodeInvalidRequest)
		return
	}
	if q.MinRating != nil && (q.MinRating.IsNegative() || q.MinRating.GreaterThan(decimal.NewFromInt(5))) {
		writeError(w, domain.CodeInvalidRequest)
		return
	}

	out, err := h.Catalog.Search(r.Context(), q)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

// ---- bookings ----

type createBookingRequest struct {
	RoomID       string `json:"roomId" validate:"required"`
	CheckInDate  string `json:"checkInDate" validate:"required"`
	CheckOutDate string `json:"checkOutDate" validate:"required"`
	Guests       int    `json:"guests" validate:"required,gt=0"`
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := h.decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	checkIn, err := parseDate(req.CheckInDate)
	if err != nil {
		writeError(w, domain.CodeInvalidDates)
		return
	}
	checkOut, err := parseDate(req.CheckOutDate)
	if err != nil {
		writeError(w, domain.CodeInvalidDates)
		return
	}
	b, err := h.Bookings.Create(r.Context(), UserIDFrom(r.Context()), RoleFrom(r.Context()), app.CreateBookingInput{
		RoomID:       req.RoomID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Guests:       req.Guests,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusCreated, b)
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	var status *domain.BookingStatus
	if s := r.URL.Query().Get("status"); s != "" {
		bs := domain.BookingStatus(s)
		if bs != domain.BookingConfirmed && bs != domain.BookingCancelled {
			writeError(w, domain.CodeInvalidRequest)
			return
		}
		status = &bs
	}
	out, err := h.Bookings.List(r.Context(), UserIDFrom(r.Context()), status)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.Cancel(r.Context(), UserIDFrom(r.Context()), chi.URLParam(r, "bookingID"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusOK, b)
}

// ---- reviews ----

type createReviewRequest struct {
	BookingID string  `json:"bookingId" validate:"required"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string `json:"comment" validate:"omitempty,max=1000"`
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := h.decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	rev, err := h.Reviews.Create(r.Context(), UserIDFrom(r.Context()), app.CreateReviewInput{
		BookingID: req.BookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, http.StatusCreated, rev)
}
