package service

import (
	"context"
	"fmt"

	"autotrader/crawler/internal/client"
	"autotrader/crawler/internal/domain"
	"autotrader/crawler/internal/domain/event"
	"autotrader/crawler/internal/queue"
	"autotrader/crawler/internal/repository"

	log "github.com/sirupsen/logrus"
)

// Service is the crawl driver: search page, then every new listing on it, then the next page
type Service struct {
	paginator        *Paginator
	client           client.AutoTraderClient
	repository       repository.ListingRepository
	publisher        queue.Publisher
	baseURL          string
	abortPageOnError bool
}

func NewService(
	paginator *Paginator,
	client client.AutoTraderClient,
	repository repository.ListingRepository,
	publisher queue.Publisher,
	baseURL string,
	abortPageOnError bool,
) *Service {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &Service{
		paginator:        paginator,
		client:           client,
		repository:       repository,
		publisher:        publisher,
		baseURL:          baseURL,
		abortPageOnError: abortPageOnError,
	}
}

// Run crawls until ctx is cancelled. Errors are logged and the loop goes on;
// there is no retry beyond the next iteration, so a broken search page is requested again
// and a failed listing is never revisited because its path is already marked seen.
func (s *Service) Run(ctx context.Context) error {
	log.Info("🚀 Starting crawl")

	for {
		if err := ctx.Err(); err != nil {
			log.Info("🛑 Crawl stopped")
			return nil
		}

		if _, err := s.ProcessSearchPage(ctx); err != nil {
			log.Errorf("❌ %v", err)
		}
	}
}

// ProcessSearchPage fetches the next search page and processes each new listing on it
func (s *Service) ProcessSearchPage(ctx context.Context) ([]domain.ListingResult, error) {
	batch, err := s.paginator.FetchNextPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to process search page: %w", err)
	}

	results := make([]domain.ListingResult, 0, len(batch.Paths))
	for _, path := range batch.Paths {
		result := s.ProcessListing(ctx, s.baseURL+path)
		results = append(results, result)

		if !result.OK() {
			log.Errorf("❌ %v", result.Err)
			if s.abortPageOnError {
				return results, fmt.Errorf("aborted search page %d: %w", batch.Offset, result.Err)
			}
		}
	}

	log.Infof("End search page %d", batch.Offset)
	return results, nil
}

// ProcessListing extracts one listing and persists it
func (s *Service) ProcessListing(ctx context.Context, listingURL string) domain.ListingResult {
	record, err := s.client.GetListing(ctx, listingURL)
	if err != nil {
		return s.fail(ctx, listingURL, err)
	}

	listingID, err := s.repository.Persist(ctx, record)
	if err != nil {
		return s.fail(ctx, listingURL, fmt.Errorf("failed to persist %s: %w", listingURL, err))
	}

	log.WithField("url", listingURL).Info(listingID)

	s.publish(ctx, &event.ListingPersistedEvent{
		ListingID:  listingID,
		URL:        listingURL,
		ImageCount: len(record.ImageURLs()),
	})
	return domain.NewListingResult(listingURL, listingID, nil)
}

func (s *Service) fail(ctx context.Context, listingURL string, err error) domain.ListingResult {
	result := domain.NewListingResult(listingURL, "", err)
	s.publish(ctx, &event.ListingFailedEvent{
		URL:    listingURL,
		Status: result.Status.String(),
		Error:  err.Error(),
	})
	return result
}

func (s *Service) publish(ctx context.Context, e event.Event) {
	if _, err := s.publisher.Publish(ctx, e); err != nil {
		log.Warnf("⚠️ Failed to publish %s event: %v", e.EventType(), err)
	}
}
