package flux

import (
	"context"
	"image"

	"github.com/tobyward/chronoflux/internal/request"
)

// Result is the single terminal outcome of a generation job.
type Result struct {
	Image    image.Image
	Data     []byte
	Format   string
	Attempts int
}

type Generator interface {
	Generate(context.Context, string, request.Params) (*Result, error)
}
