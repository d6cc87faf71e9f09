package client

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"autotrader/crawler/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractListingPaths(t *testing.T) {
	html := `<html><body>
		<a href="/a/toyota/123">Toyota</a>
		<a href="/cars/on/">Search</a>
		<a href="https://www.autotrader.ca/a/ford/1">Absolute</a>
		<a>No href</a>
		<a href="/a/honda/456">Honda</a>
		<a href="/about">About</a>
	</body></html>`

	paths := ExtractListingPaths(newDoc(t, html), "/a/")

	assert.Equal(t, []string{"/a/toyota/123", "/a/honda/456"}, paths)
}

func TestExtractListingPathsNoMatches(t *testing.T) {
	paths := ExtractListingPaths(newDoc(t, `<html><body><a href="/b/x">x</a></body></html>`), "/a/")

	assert.NotNil(t, paths)
	assert.Empty(t, paths)
}

func TestNormalizeImageURL(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		ok   bool
	}{
		{name: "query string dropped", src: "https://cdn/x.jpg?w=200", want: "https://cdn/x.jpg", ok: true},
		{name: "already canonical", src: "https://cdn/x.jpg", want: "https://cdn/x.jpg", ok: true},
		{name: "resize suffix dropped", src: "https://cdn/photos/1-1024x786.jpg-800x600.jpg", want: "https://cdn/photos/1-1024x786.jpg", ok: true},
		{name: "first occurrence wins", src: "https://cdn/a.jpg/b.jpg", want: "https://cdn/a.jpg", ok: true},
		{name: "no jpg", src: "https://cdn/x.png", ok: false},
		{name: "empty", src: "", ok: false},
		{name: "uppercase is not matched", src: "https://cdn/X.JPG", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeImageURL(tt.src)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.True(t, strings.HasPrefix(tt.src, got))
				assert.True(t, strings.HasSuffix(got, ".jpg"))
			}
		})
	}
}

func TestExtractImageURLs(t *testing.T) {
	html := `<html><body>
		<img data-src="https://cdn/a.jpg?w=200">
		<img src="https://cdn/plain.jpg">
		<img data-src="https://cdn/logo.svg">
		<img data-src="">
		<img data-src="https://cdn/a.jpg?w=400">
		<img data-src="https://cdn/b.jpg-1024x768">
	</body></html>`

	urls := ExtractImageURLs(newDoc(t, html))

	assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/a.jpg", "https://cdn/b.jpg"}, urls)
}

func TestVehicleDataStrategy(t *testing.T) {
	html := "<html><head><script>var other = 1;\n</script>" +
		"<script>\nwindow.x = 1;\nvehicleData = {\"make\": \"Toyota\", \"year\": 2020, \"specs\": {\"doors\": 4}};\nwindow.y = 2;\n</script>" +
		"</head><body></body></html>"

	record, err := VehicleDataStrategy{}.Extract(newDoc(t, html))
	require.NoError(t, err)

	assert.Equal(t, "Toyota", record["make"])
	assert.Equal(t, json.Number("2020"), record["year"])
	assert.Equal(t, map[string]any{"doors": json.Number("4")}, record["specs"])
}

func TestVehicleDataStrategyNotFound(t *testing.T) {
	html := "<html><head><script>var vehicle = {\"make\": \"Toyota\"};\n</script></head></html>"

	_, err := VehicleDataStrategy{}.Extract(newDoc(t, html))

	assert.True(t, errors.Is(err, domain.ErrVehicleDataNotFound))
}

func TestVehicleDataStrategyRequiresTrailingNewline(t *testing.T) {
	html := "<html><head><script>vehicleData = {\"make\": \"Toyota\"};</script></head></html>"

	_, err := VehicleDataStrategy{}.Extract(newDoc(t, html))

	assert.ErrorIs(t, err, domain.ErrVehicleDataNotFound)
}

func TestVehicleDataStrategyInvalidJSON(t *testing.T) {
	html := "<html><head><script>vehicleData = {make: 'Toyota'};\n</script></head></html>"

	_, err := VehicleDataStrategy{}.Extract(newDoc(t, html))

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrVehicleDataNotFound)
	assert.Contains(t, err.Error(), "failed to parse vehicleData JSON")
}

func TestParseListingPage(t *testing.T) {
	html := "<html><head><script>vehicleData = {\"make\": \"Toyota\", \"year\": 2020};\n</script></head>" +
		`<body><img data-src="https://cdn/x.jpg?w=200"></body></html>`

	parser := newListingParser("/a/", nil)
	record, err := parser.ParseListingPage(html)
	require.NoError(t, err)

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.JSONEq(t, `{"make": "Toyota", "year": 2020, "img_urls": ["https://cdn/x.jpg"]}`, string(data))
}

func TestParseListingPageWithoutImages(t *testing.T) {
	html := "<html><head><script>vehicleData = {\"make\": \"Honda\"};\n</script></head><body></body></html>"

	record, err := newListingParser("/a/", nil).ParseListingPage(html)
	require.NoError(t, err)

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.JSONEq(t, `{"make": "Honda", "img_urls": []}`, string(data))
}

type staticStrategy struct {
	record domain.ListingRecord
}

func (s staticStrategy) Extract(doc *goquery.Document) (domain.ListingRecord, error) {
	return s.record, nil
}

func TestParseListingPageCustomStrategy(t *testing.T) {
	parser := newListingParser("/a/", staticStrategy{record: domain.ListingRecord{"source": "custom"}})

	record, err := parser.ParseListingPage(`<html><body><img data-src="https://cdn/z.jpg"></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "custom", record["source"])
	assert.Equal(t, []string{"https://cdn/z.jpg"}, record.ImageURLs())
}

func TestParseListingPageNilRecord(t *testing.T) {
	parser := newListingParser("/a/", staticStrategy{})

	record, err := parser.ParseListingPage(`<html><body><img data-src="https://cdn/z.jpg"></body></html>`)
	assert.ErrorIs(t, err, domain.ErrVehicleDataNotFound)
	assert.Nil(t, record)
}
