package miniapp_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	miniapp "github.com/mutablelogic/go-miniapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
const pngPixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func TestAttachment(t *testing.T) {
	assert := assert.New(t)

	data, err := base64.StdEncoding.DecodeString(pngPixel)
	require.NoError(t, err)

	attachment := miniapp.NewAttachment("pixel.png", data)
	assert.Equal("pixel.png", attachment.Filename())
	assert.Equal("image/png", attachment.Type())
	assert.Equal(int64(len(data)), attachment.Size())
	assert.NoError(attachment.ValidateImage())
}

func TestAttachmentRead(t *testing.T) {
	assert := assert.New(t)

	data, err := base64.StdEncoding.DecodeString(pngPixel)
	require.NoError(t, err)

	attachment, err := miniapp.ReadAttachment(bytes.NewReader(data))
	assert.NoError(err)
	assert.Equal(data, attachment.Data())
}

func TestAttachmentInvalidType(t *testing.T) {
	assert := assert.New(t)

	attachment := miniapp.NewAttachment("notes.txt", []byte("hello, world"))
	err := attachment.ValidateImage()
	assert.ErrorIs(err, miniapp.ErrInvalidType)
}

func TestAttachmentTooLarge(t *testing.T) {
	assert := assert.New(t)

	data, err := base64.StdEncoding.DecodeString(pngPixel)
	require.NoError(t, err)

	// Pad a valid PNG header past the size limit
	padded := append(data, make([]byte, miniapp.MaxAttachmentSize)...)
	attachment := miniapp.NewAttachment("huge.png", padded)
	assert.ErrorIs(attachment.ValidateImage(), miniapp.ErrTooLarge)
}
