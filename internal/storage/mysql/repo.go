package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"

	"stayhub/internal/domain"
)

type Store struct{ db *sql.DB }

func New(db *sql.DB) *Store { return &Store{db: db} }

// mysqlDup reports a unique-key violation (ER_DUP_ENTRY).
func mysqlDup(err error) bool {
	var me *gomysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx, insertUserSQL,
		u.ID, u.Email, u.Name, u.PasswordHash, string(u.Role), valStr(u.Phone))
	if mysqlDup(err) {
		return domain.E(domain.CodeEmailAlreadyExists)
	}
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	var role string
	var phone sql.NullString
	err := s.db.QueryRowContext(ctx, getUserByEmailSQL, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &phone)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	u.Phone = strPtr(phone)
	return u, nil
}

func (s *Store) CreateHotel(ctx context.Context, h domain.Hotel) error {
	amen, _ := json.Marshal(h.Amenities)
	_, err := s.db.ExecContext(ctx, insertHotelSQL,
		h.ID, h.Name, valStr(h.Description), h.City, h.Country,
		string(amen), h.OwnerID, h.Rating, h.TotalReviews)
	return err
}

func scanHotel(row *sql.Row) (domain.Hotel, error) {
	var h domain.Hotel
	var desc sql.NullString
	var amenitiesJSON []byte
	err := row.Scan(&h.ID, &h.Name, &desc, &h.City, &h.Country,
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

func (s *Store) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	return scanHotel(s.db.QueryRowContext(ctx, getHotelSQL, id))
}

func (s *Store) GetHotelDetail(ctx context.Context, id string) (domain.HotelDetail, error) {
	h, err := s.GetHotel(ctx, id)
	if err != nil {
		return domain.HotelDetail{}, err
	}

	rows, err := s.db.QueryContext(ctx, listRoomsByHotelSQL, id)
	if err != nil {
		return domain.HotelDetail{}, err
	}
	defer rows.Close()

	hd := domain.HotelDetail{Hotel: h, Rooms: []domain.Room{}}
	for rows.Next() {
		var r domain.Room
		if err := rows.Scan(&r.ID, &r.HotelID, &r.RoomNumber, &r.RoomType, &r.MaxOccupancy, &r.PricePerNight); err != nil {
			return domain.HotelDetail{}, err
		}
		r.HotelID = "" // implied by the parent in the detail view
		hd.Rooms = append(hd.Rooms, r)
	}
	return hd, rows.Err()
}

func (s *Store) CreateRoom(ctx context.Context, r domain.Room) error {
	_, err := s.db.ExecContext(ctx, insertRoomSQL,
		r.ID, r.HotelID, r.RoomNumber, r.RoomType, r.MaxOccupancy, r.PricePerNight)
	if mysqlDup(err) {
		return domain.E(domain.CodeRoomAlreadyExists)
	}
	return err
}

func (s *Store) SearchHotels(ctx context.Context, q domain.HotelSearchQuery) ([]domain.HotelSearchResult, error) {
	var sb strings.Builder
	sb.WriteString(searchHotelsBaseSQL)
	args := make([]any, 0, 5)

	if q.City != nil {
		sb.WriteString(" AND LOWER(h.city) = LOWER(?)")
		args = append(args, *q.City)
	}
	if q.Country != nil {
		sb.WriteString(" AND LOWER(h.country) = LOWER(?)")
		args = append(args, *q.Country)
	}
	if q.MinRating != nil {
		sb.WriteString(" AND h.rating >= ?")
		args = append(args, *q.MinRating)
	}
	sb.WriteString(searchHotelsGroupSQL)
	if q.MinPrice != nil {
		sb.WriteString(" AND MIN(r.price_per_night) >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		sb.WriteString(" AND MIN(r.price_per_night) <= ?")
		args = append(args, *q.MaxPrice)
	}
	sb.WriteString(searchHotelsOrderSQL)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.HotelSearchResult{}
	for rows.Next() {
		var r domain.HotelSearchResult
		var desc sql.NullString
		var amenitiesJSON []byte
		if err := rows.Scan(&r.ID, &r.Name, &desc, &r.City, &r.Country,
			&amenitiesJSON, &r.Rating, &r.TotalReviews, &r.MinPricePerNight); err != nil {
			return nil, err
		}
		r.Description = strPtr(desc)
		r.Amenities = []string{}
		_ = json.Unmarshal(amenitiesJSON, &r.Amenities)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListBookings(ctx context.Context, userID string, status *domain.BookingStatus) ([]domain.BookingView, error) {
	q := listBookingsSQL
	args := []any{userID}
	if status != nil {
		q += " AND b.status = ?"
		args = append(args, string(*status))
	}
	q += " ORDER BY b.booking_date DESC, b.id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.BookingView{}
	for rows.Next() {
		var v domain.BookingView
		var bStatus string
		var cancelledAt sql.NullTime
		if err := rows.Scan(
			&v.ID, &v.RoomID, &v.HotelID, &v.UserID,
			&v.CheckInDate, &v.CheckOutDate, &v.Guests, &v.TotalPrice,
			&bStatus, &v.BookingDate, &cancelledAt,
			&v.HotelName, &v.RoomNumber, &v.RoomType,
		); err != nil {
			return nil, err
		}
		v.Status = domain.BookingStatus(bStatus)
		if cancelledAt.Valid {
			t := cancelledAt.Time
			v.CancelledAt = &t
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// WithinTx wraps fn in one database transaction; any error rolls the whole
// thing back, so a failed invariant check never leaves partial writes.
func (s *Store) WithinTx(ctx context.Context, fn func(domain.Tx) error) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&tx{tx: dbtx}); err != nil {
		_ = dbtx.Rollback()
		return err
	}
	return dbtx.Commit()
}
