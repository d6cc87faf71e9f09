package service

import (
	"context"
	"sync"

	"autotrader/crawler/internal/domain"
	"autotrader/crawler/internal/domain/event"
)

// fakeClient serves canned search pages, listings and images
type fakeClient struct {
	mu          sync.Mutex
	searchPages map[int][]string
	searchErr   error
	listings    map[string]domain.ListingRecord
	images      map[string][]byte
	onSearch    func(offset int)

	searchCalls  []int
	listingCalls []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		searchPages: make(map[int][]string),
		listings:    make(map[string]domain.ListingRecord),
		images:      make(map[string][]byte),
	}
}

func (f *fakeClient) GetSearchPage(ctx context.Context, offset, size int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.searchCalls = append(f.searchCalls, offset)
	if f.onSearch != nil {
		f.onSearch(offset)
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchPages[offset], nil
}

func (f *fakeClient) GetListing(ctx context.Context, listingURL string) (domain.ListingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listingCalls = append(f.listingCalls, listingURL)
	record, ok := f.listings[listingURL]
	if !ok {
		return nil, domain.NewExtractionError(listingURL, "failed to extract listing", domain.ErrVehicleDataNotFound)
	}

	// hand out a copy so each call can set img_urls independently
	copied := make(domain.ListingRecord, len(record))
	for k, v := range record {
		copied[k] = v
	}
	return copied, nil
}

func (f *fakeClient) GetImage(ctx context.Context, imageURL string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.images[imageURL]
	if !ok {
		return nil, domain.NewNetworkError(imageURL, "HTTP error: 404 Not Found", nil)
	}
	return data, nil
}

func (f *fakeClient) Close() error {
	return nil
}

type recordingPublisher struct {
	events []event.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e event.Event) (string, error) {
	p.events = append(p.events, e)
	return "1-0", nil
}

func (p *recordingPublisher) Close() error {
	return nil
}
