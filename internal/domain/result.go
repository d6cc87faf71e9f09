package domain

import "errors"

type ListingStatus string

func (s ListingStatus) String() string {
	return string(s)
}

const (
	ListingStatusSuccess          ListingStatus = "success"
	ListingStatusTransientFailure ListingStatus = "transient_failure"
	ListingStatusPermanentFailure ListingStatus = "permanent_failure"
)

// ListingResult is reported by the crawl driver for every listing it processes
type ListingResult struct {
	URL       string        `json:"url"`
	ListingID string        `json:"listing_id,omitempty"`
	Status    ListingStatus `json:"status"`
	Err       error         `json:"-"`
}

func (r ListingResult) OK() bool {
	return r.Status == ListingStatusSuccess
}

// NewListingResult classifies err into a result status
func NewListingResult(url, listingID string, err error) ListingResult {
	result := ListingResult{URL: url, ListingID: listingID, Err: err}

	if err == nil {
		result.Status = ListingStatusSuccess
		return result
	}

	var crawlErr *CrawlError
	if errors.As(err, &crawlErr) && crawlErr.IsTransient() {
		result.Status = ListingStatusTransientFailure
	} else {
		result.Status = ListingStatusPermanentFailure
	}
	return result
}
