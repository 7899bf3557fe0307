package mysql

const insertUserSQL = `
INSERT INTO users (id, email, name, password_hash, role, phone)
VALUES (?, ?, ?, ?, ?, ?)
`

const getUserByEmailSQL = `
SELECT id, email, name, password_hash, role, phone
FROM users
WHERE email = ?
`

const insertHotelSQL = `
INSERT INTO hotels (id, name, description, city, country, amenities, owner_id, rating, total_reviews)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const getHotelSQL = `
SELECT id, name, description, city, country, amenities, owner_id, rating, total_reviews
FROM hotels
WHERE id = ?
`

const listRoomsByHotelSQL = `
SELECT id, hotel_id, room_number, room_type, max_occupancy, price_per_night
FROM rooms
WHERE hotel_id = ?
ORDER BY room_number
`

const insertRoomSQL = `
INSERT INTO rooms (id, hotel_id, room_number, room_type, max_occupancy, price_per_night)
VALUES (?, ?, ?, ?, ?, ?)
`

// searchHotelsSQL is assembled dynamically in SearchHotels: conjunctive WHERE
// filters on hotel columns, HAVING filters on the aggregated minimum room
// price, ordered by rating then price.
const searchHotelsBaseSQL = `
SELECT
  h.id, h.name, h.description, h.city, h.country, h.amenities,
  h.rating, h.total_reviews,
  MIN(r.price_per_night) AS min_price_per_night
FROM hotels h
INNER JOIN rooms r ON r.hotel_id = h.id
WHERE 1=1`

const searchHotelsGroupSQL = `
GROUP BY h.id, h.name, h.description, h.city, h.country, h.amenities, h.rating, h.total_reviews
HAVING 1=1`

const searchHotelsOrderSQL = `
ORDER BY h.rating DESC, min_price_per_night ASC`

const listBookingsSQL = `
SELECT
  b.id, b.room_id, b.hotel_id, b.user_id,
  b.check_in_date, b.check_out_date, b.guests, b.total_price,
  b.status, b.booking_date, b.cancelled_at,
  h.name, r.room_number, r.room_type
FROM bookings b
INNER JOIN hotels h ON h.id = b.hotel_id
INNER JOIN rooms r ON r.id = b.room_id
WHERE b.user_id = ?`

// roomForUpdateSQL locks the room row (the hotel row comes along for the
// ride through the join) and carries the owner id in the same read.
const roomForUpdateSQL = `
SELECT r.id, r.hotel_id, r.room_number, r.room_type, r.max_occupancy, r.price_per_night, h.owner_id
FROM rooms r
INNER JOIN hotels h ON h.id = r.hotel_id
WHERE r.id = ?
FOR UPDATE
`

// Two-sided interval test for half-open [check_in, check_out) ranges.
const hasOverlapSQL = `
SELECT EXISTS (
  SELECT 1 FROM bookings
  WHERE room_id = ?
    AND status = 'confirmed'
    AND check_in_date < ?
    AND check_out_date > ?
)
`

const insertBookingSQL = `
INSERT INTO bookings
  (id, room_id, hotel_id, user_id, check_in_date, check_out_date, guests, total_price, status, booking_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const bookingForUpdateSQL = `
SELECT id, room_id, hotel_id, user_id, check_in_date, check_out_date, guests, total_price, status, booking_date, cancelled_at
FROM bookings
WHERE id = ?
FOR UPDATE
`

const markBookingCancelledSQL = `
UPDATE bookings SET status = 'cancelled', cancelled_at = ? WHERE id = ?
`

const bookingWithReviewFlagSQL = `
SELECT
  b.id, b.room_id, b.hotel_id, b.user_id,
  b.check_in_date, b.check_out_date, b.guests, b.total_price,
  b.status, b.booking_date, b.cancelled_at,
  EXISTS (SELECT 1 FROM reviews rv WHERE rv.booking_id = b.id)
FROM bookings b
WHERE b.id = ?
`

const hotelForUpdateSQL = `
SELECT id, name, description, city, country, amenities, owner_id, rating, total_reviews
FROM hotels
WHERE id = ?
FOR UPDATE
`

const insertReviewSQL = `
INSERT INTO reviews (id, booking_id, hotel_id, user_id, rating, comment)
VALUES (?, ?, ?, ?, ?, ?)
`

const reviewStatsSQL = `
SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE hotel_id = ?
`

const updateHotelRatingSQL = `
UPDATE hotels SET rating = ?, total_reviews = ? WHERE id = ?
`
