package event

type ListingPersistedEvent struct {
	ListingID  string `json:"listing_id"`  // Generated directory identifier
	URL        string `json:"url"`         // Listing page URL
	ImageCount int    `json:"image_count"` // Images written next to meta.json
}

func (e *ListingPersistedEvent) EventType() string {
	return "ListingPersisted"
}

func (e *ListingPersistedEvent) EventValue() ([]byte, error) {
	return DefaultEventValue(e)
}
