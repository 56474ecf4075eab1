package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// OpenLibraryCoverURL is the Open Library Covers API template, keyed by ISBN
const OpenLibraryCoverURL = "https://covers.openlibrary.org/b/isbn/%s-L.jpg"

// minImageSize is the smallest body accepted as a real image; Open Library
// answers unknown covers with a tiny placeholder
const minImageSize = 1000

// maxImageSize caps the bytes read from a candidate URL
const maxImageSize = 20 << 20

// Fetcher downloads the chosen cover image for a record
type Fetcher struct {
	HTTPClient *http.Client
	// CoverURL is the fallback cover template, formatted with the ISBN
	CoverURL string
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		CoverURL: OpenLibraryCoverURL,
	}
}

// Download saves the first candidate URL that yields an image to
// {dir}/{isbn}.jpg and returns the path. The directory only ever holds the
// current book's image, so its previous contents are removed first. When no
// candidate downloads, the Open Library cover is tried.
func (f *Fetcher) Download(ctx context.Context, isbn, dir string, candidates []string) (string, error) {
	if err := resetDir(dir); err != nil {
		return "", err
	}

	outputPath := filepath.Join(dir, fmt.Sprintf("%s.jpg", isbn))

	for _, u := range candidates {
		if err := f.downloadImage(ctx, u, outputPath); err != nil {
			slog.Debug("Candidate image failed", "isbn", isbn, "url", u, "error", err)
			continue
		}
		slog.Info("Downloaded image", "isbn", isbn, "url", u, "path", outputPath)
		return outputPath, nil
	}

	if f.CoverURL != "" {
		coverURL := fmt.Sprintf(f.CoverURL, isbn)
		if err := f.downloadImage(ctx, coverURL, outputPath); err != nil {
			slog.Warn("Failed to download cover image", "isbn", isbn, "error", err)
		} else {
			slog.Info("Downloaded fallback cover", "isbn", isbn, "path", outputPath)
			return outputPath, nil
		}
	}

	return "", fmt.Errorf("no image could be downloaded for ISBN %s", isbn)
}

// resetDir creates dir or removes the regular files in it. Subdirectories
// are left alone.
func resetDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read image directory: %w", err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to clear image directory: %w", err)
		}
	}
	return nil
}

// downloadImage downloads an image from a URL to a file
func (f *Fetcher) downloadImage(ctx context.Context, url, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return fmt.Errorf("failed to read image data: %w", err)
	}

	if len(imageData) > maxImageSize {
		return fmt.Errorf("image too large, over %d bytes", maxImageSize)
	}

	if len(imageData) < minImageSize {
		return fmt.Errorf("image too small (likely placeholder), size: %d bytes", len(imageData))
	}

	if err := os.WriteFile(outputPath, imageData, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	return nil
}
