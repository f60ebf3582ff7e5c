package mysql

const insertWishlistSQL = `
INSERT INTO wishlists
  (id, user_id, destination, itinerary_title, flight_data, itinerary, search_metadata, image_url, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const deleteWishlistSQL = `DELETE FROM wishlists WHERE id = ? AND user_id = ?`

const ownerOfWishlistSQL = `SELECT user_id FROM wishlists WHERE id = ?`

const wishlistColumns = `
  id, user_id, destination, itinerary_title, flight_data, itinerary, search_metadata, image_url, created_at
`

// Newest first; id breaks ties so the order is stable.
const listWishlistByUserSQL = `
SELECT` + wishlistColumns + `
FROM wishlists
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
`

const findWishlistByTitleSQL = `
SELECT` + wishlistColumns + `
FROM wishlists
WHERE user_id = ? AND destination = ? AND itinerary_title = ?
ORDER BY created_at DESC
LIMIT 1
`
