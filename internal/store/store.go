package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("image not found")
	ErrExpired  = errors.New("image expired")
)

type Image struct {
	Data   []byte
	Format string
}

// Store hands a generated image to the result page. Entries live just long
// enough for the browser to fetch them; this is delivery plumbing, not
// persistence.
type Store interface {
	Put(context.Context, Image) string
	Get(context.Context, string) (Image, error)
}
