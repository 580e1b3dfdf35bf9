package models

// FilterAll is the sentinel meaning "no constraint" for string predicates.
const FilterAll = "all"

// Search sort keys. An empty SortBy preserves catalog order.
const (
	SortRatingDesc = "rating-desc"
	SortPriceAsc   = "price-asc"
	SortPriceDesc  = "price-desc"
)

// SearchFilter is an immutable multi-predicate teacher query. Predicates are
// combined with logical AND; absent or "all"-valued predicates always match.
type SearchFilter struct {
	Subject    string `json:"subject"`
	Experience string `json:"experience"` // "1-2", "3-5" or "5+"
	MinRating  string `json:"minRating"`  // "4+", "4.5+"
	PriceMin   string `json:"priceMin"`
	PriceMax   string `json:"priceMax"`
	Search     string `json:"search"`

	NativeSpeaker    bool `json:"nativeSpeaker"`
	Certified        bool `json:"certified"`
	GroupSessions    bool `json:"groupSessions"`
	TrialSession     bool `json:"trialSession"`
	WeekendAvailable bool `json:"weekendAvailable"`

	SortBy string `json:"sortBy"`
}

// BookingHistoryFilter narrows and orders a booking history listing.
type BookingHistoryFilter struct {
	Status string // all, upcoming, completed, cancelled
	SortBy string // date-desc, date-asc, price-desc, price-asc
}

// Booking history sort keys.
const (
	BookingSortDateDesc  = "date-desc"
	BookingSortDateAsc   = "date-asc"
	BookingSortPriceDesc = "price-desc"
	BookingSortPriceAsc  = "price-asc"
)
