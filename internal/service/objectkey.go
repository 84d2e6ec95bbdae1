package service

import "github.com/google/uuid"

// DefaultKeySuffix marks stored entry content as JPEG regardless of the bytes.
const DefaultKeySuffix = ".jpg"

// NewObjectKey returns a random UUIDv4 string followed by suffix.
// Collisions are not checked; the 122 random bits make them negligible.
func NewObjectKey(suffix string) string {
	return uuid.New().String() + suffix
}

// ObjectKeyFunc returns a generator bound to suffix, or DefaultKeySuffix when empty.
func ObjectKeyFunc(suffix string) func() string {
	if suffix == "" {
		suffix = DefaultKeySuffix
	}
	return func() string {
		return NewObjectKey(suffix)
	}
}
