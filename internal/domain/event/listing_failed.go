package event

type ListingFailedEvent struct {
	URL    string `json:"url"`    // Listing page URL
	Status string `json:"status"` // transient_failure or permanent_failure
	Error  string `json:"error"`  // Error message from the failure
}

func (e *ListingFailedEvent) EventType() string {
	return "ListingFailed"
}

func (e *ListingFailedEvent) EventValue() ([]byte, error) {
	return DefaultEventValue(e)
}
