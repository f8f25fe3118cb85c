package mysql

// Column order shared by every hotel SELECT; scanHotel depends on it.
const hotelColumns = `id, owner_id, name, city, country, description, type,
  adult_count, child_count, facilities, price_per_night, star_rating,
  image_urls, last_updated, bookings`

const insertHotelSQL = `
INSERT INTO hotels
  (id, owner_id, name, city, country, description, type,
   adult_count, child_count, facilities, price_per_night, star_rating,
   image_urls, last_updated, bookings)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Owner edits never touch the embedded bookings.
const updateHotelSQL = `
UPDATE hotels SET
  name            = ?,
  city            = ?,
  country         = ?,
  description     = ?,
  type            = ?,
  adult_count     = ?,
  child_count     = ?,
  facilities      = ?,
  price_per_night = ?,
  star_rating     = ?,
  image_urls      = ?,
  last_updated    = ?,
  version         = version + 1
WHERE id = ? AND owner_id = ?
`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

const selectBookingsSQL = `SELECT bookings, version FROM hotels WHERE id = ?`

// Compare-and-swap on version: a concurrent append or edit between the read
// and this write leaves zero affected rows.
const appendBookingSQL = `
UPDATE hotels SET
  bookings     = JSON_ARRAY_APPEND(bookings, '$', CAST(? AS JSON)),
  last_updated = ?,
  version      = version + 1
WHERE id = ? AND version = ?
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getHotelSQL = `SELECT ` + hotelColumns + ` FROM hotels WHERE id = ?`

const findOwnedHotelSQL = `SELECT ` + hotelColumns + ` FROM hotels WHERE id = ? AND owner_id = ?`

const listHotelsSQL = `SELECT ` + hotelColumns + ` FROM hotels ORDER BY last_updated DESC, seq ASC`

const listOwnedHotelsSQL = `SELECT ` + hotelColumns + ` FROM hotels WHERE owner_id = ? ORDER BY seq ASC`

const suggestHotelsSQL = `SELECT ` + hotelColumns + ` FROM hotels WHERE LOWER(name) LIKE ? ORDER BY seq ASC LIMIT ?`

const hotelsBookedBySQL = `SELECT ` + hotelColumns + `
FROM hotels
WHERE JSON_CONTAINS(bookings, JSON_OBJECT('userId', ?))
ORDER BY seq ASC`
