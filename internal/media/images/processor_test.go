package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessor_Process(t *testing.T) {
	t.Run("stores valid png and computes placeholder", func(t *testing.T) {
		p := NewProcessor(setupTestStorage(t), nil)
		data := encodePNG(t, 120, 80)

		res, err := p.Process("inf-1", data)
		require.NoError(t, err)

		assert.Equal(t, "png", res.Format)
		assert.Equal(t, 120, res.Width)
		assert.Equal(t, 80, res.Height)
		assert.Equal(t, int64(len(data)), res.Size)
		assert.Equal(t, HashBytes(data), res.Hash)
		assert.NotEmpty(t, res.BlurHash)

		stored, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		assert.Equal(t, data, stored)
	})

	t.Run("rejects empty data", func(t *testing.T) {
		p := NewProcessor(setupTestStorage(t), nil)
		_, err := p.Process("inf-1", nil)
		assert.ErrorIs(t, err, ErrEmptyImage)
	})

	t.Run("rejects oversized data", func(t *testing.T) {
		p := NewProcessor(setupTestStorage(t), nil)
		_, err := p.Process("inf-1", make([]byte, MaxAvatarBytes+1))
		assert.ErrorIs(t, err, ErrImageTooLarge)
	})

	t.Run("rejects non-image data", func(t *testing.T) {
		p := NewProcessor(setupTestStorage(t), nil)
		_, err := p.Process("inf-1", []byte("definitely not an image"))
		require.Error(t, err)
		assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
		assert.False(t, p.Storage().Exists("inf-1"))
	})
}

func TestBlurHash_LargeImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 640, 200))
	hash, err := BlurHash(img)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	small := resizeForBlurHash(img)
	assert.Equal(t, blurHashSize, small.Bounds().Dx())
	assert.Equal(t, 20, small.Bounds().Dy())
}

func TestThumbnailSize(t *testing.T) {
	tests := []struct {
		w, h, wantW, wantH int
	}{
		{32, 32, 32, 32},
		{640, 200, 64, 20},
		{200, 640, 20, 64},
		{128, 128, 64, 64},
		{10000, 10, 64, 1},
	}
	for _, tt := range tests {
		w, h := thumbnailSize(tt.w, tt.h, blurHashSize)
		assert.Equal(t, tt.wantW, w, "%dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "%dx%d", tt.w, tt.h)
	}
}

func TestComputeBlurHash_File(t *testing.T) {
	s := setupTestStorage(t)
	require.NoError(t, s.Save("inf-1", encodePNG(t, 32, 32)))

	hash, err := ComputeBlurHash(s.Path("inf-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	_, err = ComputeBlurHash(s.Path("inf-missing"))
	assert.Error(t, err)
}

func TestFetcher_Fetch(t *testing.T) {
	data := encodePNG(t, 16, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/avatar.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), NewProcessor(setupTestStorage(t), nil), nil)

	res, err := f.Fetch(context.Background(), "inf-1", srv.URL+"/avatar.png")
	require.NoError(t, err)
	assert.Equal(t, 16, res.Width)
	assert.Equal(t, HashBytes(data), res.Hash)

	_, err = f.Fetch(context.Background(), "inf-2", srv.URL+"/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
