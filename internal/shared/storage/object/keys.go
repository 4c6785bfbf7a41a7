package object

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

// OwnerKey returns a path-safe directory name for an owner ID.
func OwnerKey(owner string) string {
	sum := sha256.Sum256([]byte(owner))
	return hex.EncodeToString(sum[:])
}

// CleanFileName strips path separators and rejects traversal patterns.
func CleanFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(s)
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// NewKey returns a fresh storage key for a photo uploaded by owner.
func NewKey(owner, fileName string) (string, error) {
	name, err := CleanFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(OwnerKey(owner), uuid.NewString()+"_"+name), nil
}

// CleanKey validates a relative storage key.
func CleanKey(key string) (string, error) {
	clean := path.Clean(strings.TrimSpace(key))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.HasPrefix(clean, "/") {
		return "", ErrInvalidKey
	}
	return clean, nil
}
