package app

import "time"

func SetWishlistClock(s *WishlistService, now func() time.Time) { s.now = now }
