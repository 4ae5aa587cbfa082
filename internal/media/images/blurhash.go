package images

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// blurHashSize is the longest edge of the thumbnail the hash is computed from.
	blurHashSize = 64

	blurHashX = 4
	blurHashY = 3
)

// ComputeBlurHash decodes the image file at path and returns its BlurHash.
func ComputeBlurHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	return BlurHash(img)
}

// BlurHash encodes img with 4x3 components. Large images are scaled down
// first; the hash only carries a few colors.
func BlurHash(img image.Image) (string, error) {
	hash, err := blurhash.Encode(blurHashX, blurHashY, resizeForBlurHash(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

func resizeForBlurHash(img image.Image) image.Image {
	src := img.Bounds()
	w, h := thumbnailSize(src.Dx(), src.Dy(), blurHashSize)
	if w == src.Dx() && h == src.Dy() {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}

// thumbnailSize fits w x h inside a limit x limit box, keeping the aspect
// ratio. Sizes already inside the box are returned unchanged.
func thumbnailSize(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(h*limit/w, 1)
	}
	return max(w*limit/h, 1), limit
}
