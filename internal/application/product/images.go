package product

import (
	"bytes"
	"context"
	"fmt"

	"github.com/h2non/filetype"

	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/pkg/id"
)

var allowedImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type sniffedImage struct {
	data        []byte
	ext         string
	contentType string
}

// sniffImages checks count, size and the real (magic-byte) type of every
// upload before anything is stored.
func (s *service) sniffImages(files []domain.ImageUpload) ([]sniffedImage, error) {
	if len(files) > s.maxImages {
		return nil, fmt.Errorf("at most %d images are allowed: %w", s.maxImages, domain.ErrBadRequest)
	}
	out := make([]sniffedImage, 0, len(files))
	for _, f := range files {
		if len(f.Data) == 0 {
			return nil, fmt.Errorf("image %q is empty: %w", f.Filename, domain.ErrBadRequest)
		}
		if int64(len(f.Data)) > s.maxImageBytes {
			return nil, fmt.Errorf("image %q exceeds %d bytes: %w", f.Filename, s.maxImageBytes, domain.ErrBadRequest)
		}
		kind, err := filetype.Match(f.Data)
		if err != nil || kind == filetype.Unknown || !allowedImageMIME[kind.MIME.Value] {
			return nil, fmt.Errorf("file %q is not a jpeg, png, gif or webp image: %w", f.Filename, domain.ErrBadRequest)
		}
		out = append(out, sniffedImage{data: f.Data, ext: "." + kind.Extension, contentType: kind.MIME.Value})
	}
	return out, nil
}

// uploadImages stores every image under products/ and returns their URLs.
// On failure the images already stored are removed again.
func (s *service) uploadImages(ctx context.Context, images []sniffedImage) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		url, err := s.images.Upload(ctx, "products/"+id.NewUUID()+img.ext, bytes.NewReader(img.data), img.contentType)
		if err != nil {
			s.deleteImages(ctx, urls)
			return nil, fmt.Errorf("upload image: %v: %w", err, domain.ErrUpstream)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// deleteImages removes images best-effort; failures are only logged.
func (s *service) deleteImages(ctx context.Context, urls []string) {
	for _, u := range urls {
		if err := s.images.Delete(ctx, u); err != nil {
			s.log.WithError(err).WithField("image", u).Warn("could not delete product image")
		}
	}
}
