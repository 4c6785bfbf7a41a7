// Package object stores uploaded tire photos.
package object

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
)

var (
	ErrInvalidKey = errors.New("invalid storage key")
	ErrNotImage   = errors.New("object is not an image")
)

// Object describes a stored photo.
type Object struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Store saves and retrieves photos. Keys are relative and never begin with "/".
type Store interface {
	Save(ctx context.Context, owner, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// SniffImage reads the first bytes of r and returns the detected content type
// together with a reader that replays them. Non-image content yields ErrNotImage.
func SniffImage(r io.Reader) (string, io.Reader, error) {
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return contentType, nil, ErrNotImage
	}
	return contentType, io.MultiReader(bytes.NewReader(head[:n]), r), nil
}
