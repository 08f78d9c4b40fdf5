package httpclient_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

// pngPixel is a 1x1 transparent PNG.
const pngPixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func pngData(t *testing.T) []byte {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(pngPixel)
	require.NoError(t, err)
	return data
}
