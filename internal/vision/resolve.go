package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"strings"

	"tire-backend/internal/shared/storage/object"
)

// StoreScheme prefixes image URLs that point into the photo store.
const StoreScheme = "store://"

// MaxImageBytes bounds photos read from the store or a data URL.
const MaxImageBytes = 8 << 20

// Resolver turns the imageUrl of a request into an Image.
type Resolver struct {
	Store object.Store
}

// Resolve accepts store:// keys, base64 data URLs and http(s) URLs.
func (r Resolver) Resolve(ctx context.Context, imageURL string) (Image, error) {
	imageURL = strings.TrimSpace(imageURL)
	switch {
	case strings.HasPrefix(imageURL, StoreScheme):
		return r.fromStore(ctx, strings.TrimPrefix(imageURL, StoreScheme))
	case strings.HasPrefix(imageURL, "data:"):
		return fromDataURL(imageURL)
	default:
		u, err := url.Parse(imageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Image{}, fmt.Errorf("%w: unsupported image url", ErrInvalidImage)
		}
		return Image{URL: u.String()}, nil
	}
}

func (r Resolver) fromStore(ctx context.Context, key string) (Image, error) {
	if r.Store == nil {
		return Image{}, fmt.Errorf("%w: photo store not configured", ErrInvalidImage)
	}
	rc, err := r.Store.Open(ctx, key)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxImageBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("read photo: %w", err)
	}
	if len(data) > MaxImageBytes {
		return Image{}, fmt.Errorf("%w: photo too large", ErrInvalidImage)
	}
	return Image{Data: data}, nil
}

func fromDataURL(s string) (Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") || !strings.HasPrefix(meta, "image/") {
		return Image{}, fmt.Errorf("%w: expected base64 image data url", ErrInvalidImage)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return Image{}, fmt.Errorf("%w: photo too large", ErrInvalidImage)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	return Image{Data: data, ContentType: strings.TrimSuffix(meta, ";base64")}, nil
}
