package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/disintegration/imaging"

	"github.com/stockpix/stockpix/internal/store"
)

// Upscaler enlarges generated images before marketplace submission.
// It downloads the source object, resizes it by a fixed factor with a
// Lanczos filter, and uploads the result next to the source under an
// upscaled_ prefix.
type Upscaler struct {
	objects store.ObjectStore
	logger  *slog.Logger
	factor  int
}

// NewUpscaler creates an Upscaler writing through the given object
// store. factor is the linear scale multiplier and must be at least 2.
func NewUpscaler(objects store.ObjectStore, factor int, logger *slog.Logger) (*Upscaler, error) {
	if objects == nil {
		return nil, errors.New("object store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if factor < 2 {
		return nil, fmt.Errorf("upscale factor must be at least 2, got %d", factor)
	}
	return &Upscaler{objects: objects, logger: logger, factor: factor}, nil
}

// UpscaledKey returns the object key the upscaled copy of sourceKey is
// written to. The upscaled object lives in the same directory as its
// source with an upscaled_ filename prefix.
func UpscaledKey(sourceKey string) string {
	dir, file := path.Split(sourceKey)
	return dir + "upscaled_" + file
}

// Upscale resizes the object at sourceKey by the configured factor and
// uploads the result. It returns the key of the uploaded object. The
// operation is idempotent: an existing upscaled object is overwritten.
func (u *Upscaler) Upscale(ctx context.Context, sourceKey string) (string, error) {
	data, err := u.objects.Get(ctx, sourceKey)
	if err != nil {
		return "", fmt.Errorf("failed to download source image %q: %w", sourceKey, err)
	}

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode source image %q: %w", sourceKey, err)
	}

	bounds := src.Bounds()
	dst := imaging.Resize(src, bounds.Dx()*u.factor, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode upscaled image: %w", err)
	}

	dstKey := UpscaledKey(sourceKey)
	if err := u.objects.Put(ctx, dstKey, buf.Bytes(), "image/png"); err != nil {
		return "", fmt.Errorf("failed to upload upscaled image %q: %w", dstKey, err)
	}

	u.logger.Debug("upscaled image",
		"source_key", sourceKey,
		"upscaled_key", dstKey,
		"factor", u.factor,
		"width", bounds.Dx()*u.factor,
		"height", bounds.Dy()*u.factor,
	)
	return dstKey, nil
}

// Factor returns the configured scale multiplier.
func (u *Upscaler) Factor() int {
	return u.factor
}
