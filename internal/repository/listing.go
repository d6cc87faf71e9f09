package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"autotrader/crawler/internal/domain"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const DefaultMetaFile = "meta.json"

// ImageFetcher downloads a single image body
type ImageFetcher interface {
	GetImage(ctx context.Context, imageURL string) ([]byte, error)
}

type ListingRepository interface {
	// Persist writes the record and its images under a new directory and returns the directory's identifier
	Persist(ctx context.Context, record domain.ListingRecord) (string, error)
}

type listingRepository struct {
	fs       afero.Fs
	rootDir  string
	metaFile string
	images   ImageFetcher
	newID    func() string
}

func NewListingRepository(fs afero.Fs, rootDir, metaFile string, images ImageFetcher) ListingRepository {
	if metaFile == "" {
		metaFile = DefaultMetaFile
	}
	return &listingRepository{
		fs:       fs,
		rootDir:  rootDir,
		metaFile: metaFile,
		images:   images,
		newID:    uuid.NewString,
	}
}

// Persist never reuses a directory: the same record persisted twice lands in two directories.
// The first failing image download aborts the listing before meta.json is written.
func (r *listingRepository) Persist(ctx context.Context, record domain.ListingRecord) (string, error) {
	listingID := r.newID()
	listingDir := filepath.Join(r.rootDir, listingID)

	if err := r.fs.MkdirAll(listingDir, 0o755); err != nil {
		return "", domain.NewFilesystemError(listingDir, "failed to create listing directory", err)
	}

	for _, imageURL := range record.ImageURLs() {
		data, err := r.images.GetImage(ctx, imageURL)
		if err != nil {
			return "", fmt.Errorf("failed to download image %s: %w", imageURL, err)
		}

		imagePath := filepath.Join(listingDir, ImageFileName(imageURL))
		if err := afero.WriteFile(r.fs, imagePath, data, 0o644); err != nil {
			return "", domain.NewFilesystemError(imagePath, "failed to write image", err)
		}
	}

	meta, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode listing record: %w", err)
	}

	metaPath := filepath.Join(listingDir, r.metaFile)
	if err := afero.WriteFile(r.fs, metaPath, meta, 0o644); err != nil {
		return "", domain.NewFilesystemError(metaPath, "failed to write listing metadata", err)
	}

	log.Debugf("Persisted listing %s with %d images", listingID, len(record.ImageURLs()))
	return listingID, nil
}

// ImageFileName is the final path segment of the image URL
func ImageFileName(imageURL string) string {
	return imageURL[strings.LastIndex(imageURL, "/")+1:]
}
