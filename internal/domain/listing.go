package domain

// ImageURLsKey is the key added to every extracted record
const ImageURLsKey = "img_urls"

// ListingRecord is the vehicle JSON object embedded in a listing page.
// Keys are passed through as the site sends them.
type ListingRecord map[string]any

// SetImageURLs stores the normalized image URLs under ImageURLsKey
func (r ListingRecord) SetImageURLs(urls []string) {
	if urls == nil {
		urls = []string{}
	}
	r[ImageURLsKey] = urls
}

// ImageURLs returns the image URLs stored on the record
func (r ListingRecord) ImageURLs() []string {
	switch v := r[ImageURLsKey].(type) {
	case []string:
		return v
	case []any:
		urls := make([]string, 0, len(v))
		for _, u := range v {
			if s, ok := u.(string); ok {
				urls = append(urls, s)
			}
		}
		return urls
	default:
		return nil
	}
}

// SearchBatch is the outcome of one search page fetch
type SearchBatch struct {
	Offset int      `json:"offset"` // offset the page was requested with
	Paths  []string `json:"paths"`  // listing paths not seen before in this run
}
