package models

// Event is a single event listing as returned by the TruckersMP API.
// This mirrors the wire format; instances are read-only once fetched.
type Event struct {
	ID          uint64   `json:"id"`          // Unique identifier on TruckersMP
	Name        string   `json:"name"`        // Display title
	Departure   Location `json:"departure"`   // Departure point; its city becomes the mirrored event's location
	StartAt     string   `json:"start_at"`    // Naive "YYYY-MM-DD HH:MM:SS" timestamp, no timezone
	Banner      string   `json:"banner"`      // Optional banner image URL, empty when absent
	Description string   `json:"description"` // Free text, may contain markdown and carriage returns
	URL         string   `json:"url"`         // Path appended to the site base URL for the "see original" link
}

// Location is the departure point of an event.
type Location struct {
	City string `json:"city"`
}
