package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultUnsplashBase is the public Unsplash API endpoint.
const DefaultUnsplashBase = "https://api.unsplash.com"

var (
	// ErrNoImage is returned when a search finds nothing.
	ErrNoImage = errors.New("no image found")
	// ErrNoAccessKey is returned when no Unsplash access key is configured.
	ErrNoAccessKey = errors.New("unsplash access key not configured")
	// ErrUnauthorized means Unsplash rejected the access key.
	ErrUnauthorized = errors.New("unsplash access key is invalid")
	// ErrRateLimited means the hourly request quota is used up.
	ErrRateLimited = errors.New("unsplash rate limit reached")
)

// Image is one illustrative photo with the attribution Unsplash requires.
type Image struct {
	URL             string `json:"url"`
	Alt             string `json:"alt"`
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographer_url"`
	PhotoURL        string `json:"photo_url"`
	DownloadURL     string `json:"download_url"`
}

// Unsplash searches photos for a word.
type Unsplash struct {
	AccessKey string
	BaseURL   string
	Client    *http.Client
}

// NewUnsplash creates a client for the public API.
func NewUnsplash(accessKey string) *Unsplash {
	return &Unsplash{
		AccessKey: accessKey,
		BaseURL:   DefaultUnsplashBase,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Results []struct {
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Small string `json:"small"`
		} `json:"urls"`
		Links struct {
			HTML             string `json:"html"`
			DownloadLocation string `json:"download_location"`
		} `json:"links"`
		User struct {
			Name  string `json:"name"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"user"`
	} `json:"results"`
}

// Search returns the first landscape photo matching word.
func (u *Unsplash) Search(ctx context.Context, word string) (*Image, error) {
	if u.AccessKey == "" {
		return nil, ErrNoAccessKey
	}
	q := url.Values{}
	q.Set("query", word)
	q.Set("per_page", "1")
	q.Set("orientation", "landscape")
	q.Set("content_filter", "high")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.BaseURL+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+u.AccessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("search images: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusForbidden:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("search images: unexpected status %s", resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if len(body.Results) == 0 {
		return nil, ErrNoImage
	}

	photo := body.Results[0]
	alt := photo.AltDescription
	if alt == "" {
		alt = word
	}
	return &Image{
		URL:             photo.URLs.Small,
		Alt:             alt,
		Photographer:    photo.User.Name,
		PhotographerURL: photo.User.Links.HTML,
		PhotoURL:        photo.Links.HTML,
		DownloadURL:     photo.Links.DownloadLocation,
	}, nil
}

// TrackDownload pings the photo's download location, which the Unsplash API
// guidelines require whenever a photo is displayed.
func (u *Unsplash) TrackDownload(ctx context.Context, img *Image) error {
	if img == nil || img.DownloadURL == "" || u.AccessKey == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.DownloadURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Client-ID "+u.AccessKey)
	resp, err := u.client().Do(req)
	if err != nil {
		return fmt.Errorf("track download: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("track download: unexpected status %s", resp.Status)
	}
	return nil
}

func (u *Unsplash) client() *http.Client {
	if u.Client != nil {
		return u.Client
	}
	return http.DefaultClient
}
