package service

import (
	"context"
	"fmt"

	"autotrader/crawler/internal/client"
	"autotrader/crawler/internal/domain"
	"autotrader/crawler/internal/state"

	log "github.com/sirupsen/logrus"
)

// Paginator walks the search results one page at a time
type Paginator struct {
	client   client.AutoTraderClient
	state    state.CrawlState
	pageSize int
}

func NewPaginator(client client.AutoTraderClient, state state.CrawlState, pageSize int) *Paginator {
	return &Paginator{
		client:   client,
		state:    state,
		pageSize: pageSize,
	}
}

// FetchNextPage returns the listing paths on the current page that were not seen before
// and moves the cursor forward by one page, whether or not anything new was found.
// A page that cannot be fetched leaves the cursor where it is.
func (p *Paginator) FetchNextPage(ctx context.Context) (domain.SearchBatch, error) {
	offset, err := p.state.Offset(ctx)
	if err != nil {
		return domain.SearchBatch{}, fmt.Errorf("failed to read search offset: %w", err)
	}

	paths, err := p.client.GetSearchPage(ctx, offset, p.pageSize)
	if err != nil {
		return domain.SearchBatch{}, err
	}

	batch := domain.SearchBatch{
		Offset: offset,
		Paths:  make([]string, 0, len(paths)),
	}

	for _, path := range paths {
		isNew, err := p.state.MarkSeen(ctx, path)
		if err != nil {
			return domain.SearchBatch{}, err
		}
		if isNew {
			batch.Paths = append(batch.Paths, path)
		}
	}

	if _, err := p.state.Advance(ctx, p.pageSize); err != nil {
		return domain.SearchBatch{}, fmt.Errorf("failed to advance search offset: %w", err)
	}

	log.Debugf("Search page %d: %d links, %d new", offset, len(paths), len(batch.Paths))
	return batch, nil
}
