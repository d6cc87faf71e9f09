package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"autotrader/crawler/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

const imageExtension = ".jpg"

// ExtractionStrategy pulls the listing record out of a parsed listing page.
// It returns domain.ErrVehicleDataNotFound when the page has nothing to extract.
type ExtractionStrategy interface {
	Extract(doc *goquery.Document) (domain.ListingRecord, error)
}

// VehicleDataStrategy reads the JSON object assigned to vehicleData in an inline script
type VehicleDataStrategy struct{}

var vehicleDataRegex = regexp.MustCompile(`vehicleData\s+=\s+(\{.*?\});\n`)

func (VehicleDataStrategy) Extract(doc *goquery.Document) (domain.ListingRecord, error) {
	var raw string
	doc.Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if matches := vehicleDataRegex.FindStringSubmatch(s.Text()); len(matches) > 1 {
			raw = matches[1]
			return false
		}
		return true
	})

	if raw == "" {
		return nil, domain.ErrVehicleDataNotFound
	}

	return decodeRecord(raw)
}

func decodeRecord(raw string) (domain.ListingRecord, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	// keep numbers exactly as the page wrote them
	dec.UseNumber()

	var record domain.ListingRecord
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to parse vehicleData JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse vehicleData JSON: trailing data after object")
	}
	if record == nil {
		return nil, fmt.Errorf("failed to parse vehicleData JSON: null object")
	}

	return record, nil
}

type listingParser struct {
	listingPrefix string
	strategy      ExtractionStrategy
}

func newListingParser(listingPrefix string, strategy ExtractionStrategy) *listingParser {
	if strategy == nil {
		strategy = VehicleDataStrategy{}
	}
	return &listingParser{
		listingPrefix: listingPrefix,
		strategy:      strategy,
	}
}

// ParseSearchPage returns every anchor target starting with the listing prefix, in document order
func (p *listingParser) ParseSearchPage(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return ExtractListingPaths(doc, p.listingPrefix), nil
}

// ParseListingPage extracts the listing record and adds the normalized image URLs to it
func (p *listingParser) ParseListingPage(html string) (domain.ListingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	record, err := p.strategy.Extract(doc)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrVehicleDataNotFound
	}

	imageURLs := ExtractImageURLs(doc)
	record.SetImageURLs(imageURLs)

	log.Debugf("Extracted %d fields and %d images from listing", len(record)-1, len(imageURLs))
	return record, nil
}

func ExtractListingPaths(doc *goquery.Document, prefix string) []string {
	paths := make([]string, 0)

	doc.Find("a[href]").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if strings.HasPrefix(href, prefix) {
			paths = append(paths, href)
		}
	})

	return paths
}

// ExtractImageURLs collects lazy-loaded image sources in document order.
// Duplicates are kept.
func ExtractImageURLs(doc *goquery.Document) []string {
	urls := make([]string, 0)

	doc.Find("img").Each(func(i int, img *goquery.Selection) {
		src, exists := img.Attr("data-src")
		if !exists {
			return
		}
		if imageURL, ok := NormalizeImageURL(src); ok {
			urls = append(urls, imageURL)
		}
	})

	return urls
}

// NormalizeImageURL cuts src right after its first ".jpg", dropping resize query strings.
// Sources without ".jpg" are rejected.
func NormalizeImageURL(src string) (string, bool) {
	idx := strings.Index(src, imageExtension)
	if idx < 0 {
		return "", false
	}
	return src[:idx+len(imageExtension)], true
}
