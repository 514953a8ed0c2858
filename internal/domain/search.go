package domain

// NotAvailable is the designated placeholder for a field that is
// intentionally unknown, as opposed to one that failed to parse.
const NotAvailable = "Not available"

// SearchRequest is the structured form of a user's query. Immutable once
// produced by the parse stage.
type SearchRequest struct {
	Location string `json:"location"`
	CheckIn  string `json:"check_in"`  // YYYY-MM-DD
	CheckOut string `json:"check_out"` // YYYY-MM-DD
	Guests   int    `json:"guests"`
	Budget   string `json:"budget"` // amount + currency, e.g. "20000 INR"
	RoomType string `json:"room_type"`
}

// RoomOption is an alternative room type offered by a hotel.
type RoomOption struct {
	Type  string `json:"type"`
	Price string `json:"price"`
}

// Candidate is one hotel's accumulated data as it flows through the
// pipeline. Cost fields are filled by the cost stage, images/contact by the
// enrichment stage, amenities reformatted at finalization.
type Candidate struct {
	Name          string       `json:"name"`
	Images        []string     `json:"images"`
	Amenities     []string     `json:"amenities"`
	RoomPrice     string       `json:"room_price"`
	OtherRooms    []RoomOption `json:"other_rooms"`
	TaxAmount     string       `json:"government_taxes"`
	ServiceCharge string       `json:"other_charges"`
	TotalCost     string       `json:"total_cost"`
	SourceURL     string       `json:"source"`
	BookingLink   string       `json:"booking_link"`
	Contact       string       `json:"contact"`
}

// NewCandidate returns a Candidate with every optional field at the
// NotAvailable sentinel.
func NewCandidate(name string) Candidate {
	return Candidate{
		Name:          name,
		Images:        []string{NotAvailable},
		Amenities:     []string{NotAvailable},
		RoomPrice:     NotAvailable,
		OtherRooms:    []RoomOption{},
		TaxAmount:     NotAvailable,
		ServiceCharge: NotAvailable,
		TotalCost:     NotAvailable,
		SourceURL:     NotAvailable,
		BookingLink:   NotAvailable,
		Contact:       NotAvailable,
	}
}

// HotelSearchResult is the finished payload for one search.
type HotelSearchResult struct {
	SearchParams SearchRequest `json:"search_params"`
	Hotels       []Candidate   `json:"hotels"`
	Version      int           `json:"version"`
	Timestamp    string        `json:"timestamp"`
}

// SearchResult is one raw item from the web search provider.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet"`
	Date        string `json:"date,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// PlaceInfo is the places provider's answer for one hotel.
type PlaceInfo struct {
	PlaceID string   `json:"place_id"`
	Photos  []string `json:"photos"`
	Phone   string   `json:"phone,omitempty"`
	Website string   `json:"website,omitempty"`
	Rating  float64  `json:"rating,omitempty"`
}
