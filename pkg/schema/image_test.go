package schema_test

import (
	"encoding/base64"
	"testing"

	"github.com/mutablelogic/go-miniapp/pkg/schema"
	"github.com/stretchr/testify/assert"
)

const pngPixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func TestNormalizeInline(t *testing.T) {
	assert := assert.New(t)

	resp := schema.ImageResponse{ImageBase64: "data:image/png;base64," + pngPixel}
	result, err := resp.Normalize()
	assert.NoError(err)
	assert.True(result.Inline())
	assert.Equal("image/png", result.Mime)

	expected, _ := base64.StdEncoding.DecodeString(pngPixel)
	assert.Equal(expected, result.Data)
}

func TestNormalizeBareBase64(t *testing.T) {
	assert := assert.New(t)

	resp := schema.ImageResponse{ImageBase64: pngPixel}
	result, err := resp.Normalize()
	assert.NoError(err)
	assert.True(result.Inline())
	assert.Equal("image/png", result.Mime)
}

func TestNormalizeURL(t *testing.T) {
	assert := assert.New(t)

	resp := schema.ImageResponse{URL: "https://example.com/out.png"}
	result, err := resp.Normalize()
	assert.NoError(err)
	assert.False(result.Inline())
	assert.Equal("https://example.com/out.png", result.DataURL())
}

func TestNormalizePrefersInline(t *testing.T) {
	assert := assert.New(t)

	resp := schema.ImageResponse{
		ImageBase64: "data:image/png;base64," + pngPixel,
		ImageURL:    "https://example.com/out.png",
		URL:         "https://example.com/other.png",
	}
	result, err := resp.Normalize()
	assert.NoError(err)
	assert.True(result.Inline())
	assert.Nil(result.Href)
}

func TestNormalizeEmpty(t *testing.T) {
	assert := assert.New(t)

	result, err := schema.ImageResponse{}.Normalize()
	assert.Error(err)
	assert.Nil(result)
}

func TestNormalizeError(t *testing.T) {
	assert := assert.New(t)

	result, err := schema.ImageResponse{Error: "payment_required"}.Normalize()
	assert.Error(err)
	assert.Nil(result)
	assert.Contains(err.Error(), "payment_required")
}

func TestNewImageRequestDefaults(t *testing.T) {
	assert := assert.New(t)

	req := schema.NewImageRequest("txt2img", "a cat")
	assert.Equal(uint(30), req.Steps)
	assert.Equal(7.0, req.CFGScale)
	assert.Equal(uint(1024), req.Width)
	assert.Equal(uint(1024), req.Height)
}
