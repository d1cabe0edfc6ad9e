package texture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidSize is returned for rasters smaller than 1×1.
	ErrInvalidSize = errors.New("texture size must be at least 1x1")

	// ErrUnknownRecipe is returned for recipe names with no generator.
	ErrUnknownRecipe = errors.New("unknown texture recipe")
)

// Source supplies uniform random numbers in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// globalSource draws from the process-wide generator.
type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Factory draws procedural textures from a random source. A Factory is not
// safe for concurrent use; GenerateAll fans out internally with
// independent sources.
type Factory struct {
	src Source
}

// NewFactory returns a factory drawing from src. A nil src uses the
// process-wide generator, so output differs from run to run.
func NewFactory(src Source) *Factory {
	if src == nil {
		src = globalSource{}
	}
	return &Factory{src: src}
}

// NewSeededFactory returns a factory with a reproducible PCG source.
func NewSeededFactory(seed uint64) *Factory {
	return NewFactory(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Generate draws recipe r into a new w×h raster.
func (f *Factory) Generate(r Recipe, w, h int) (*image.RGBA, error) {
	return generate(r, w, h, f.src)
}

func generate(r Recipe, w, h int, src Source) (*image.RGBA, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidSize, w, h)
	}
	draw, ok := recipes[r]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecipe, r)
	}

	c := NewCanvas(w, h)
	fw, fh := float64(w), float64(h)
	scale := min(fw, fh) / float64(r.ReferenceSize())
	draw(c, src, fw, fh, scale)
	return c.Image(), nil
}

// Request asks for one raster from GenerateAll.
type Request struct {
	Recipe Recipe
	Width  int
	Height int
}

// GenerateAll draws every request concurrently and returns the rasters in
// request order. Each request gets its own PCG source seeded, in request
// order, from the factory's source.
func (f *Factory) GenerateAll(ctx context.Context, reqs []Request) ([]*image.RGBA, error) {
	sources := make([]Source, len(reqs))
	for i := range reqs {
		sources[i] = rand.New(rand.NewPCG(seedFrom(f.src), seedFrom(f.src)))
	}

	out := make([]*image.RGBA, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := generate(req.Recipe, req.Width, req.Height, sources[i])
			if err != nil {
				return fmt.Errorf("generate %s: %w", req.Recipe, err)
			}
			out[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func seedFrom(src Source) uint64 {
	return uint64(src.Float64() * (1 << 53))
}
