package schema

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Generation request defaults, sent with every request.
const (
	DefaultSteps    = 30
	DefaultCFGScale = 7.0
	DefaultWidth    = 1024
	DefaultHeight   = 1024
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// ImageRequest is the form body for POST /api/image. The input image, when
// present, travels as a separate multipart file part.
type ImageRequest struct {
	Prompt   string  `json:"prompt"`
	Mode     string  `json:"mode"`
	Steps    uint    `json:"steps,omitempty"`
	CFGScale float64 `json:"cfg_scale,omitempty"`
	Width    uint    `json:"width,omitempty"`
	Height   uint    `json:"height,omitempty"`
	Strength float64 `json:"strength,omitempty"`
	Identity
}

// ImageResponse is the JSON body returned by POST /api/image. The server
// has used several shapes for the image reference over time; all are
// accepted and normalised through Normalize.
type ImageResponse struct {
	ImageBase64 string `json:"image_base64,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	URL         string `json:"url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ImageResult is the single internal representation of a generated image:
// either inline data with a MIME type, or a URL reference. Exactly one is
// populated.
type ImageResult struct {
	Data []byte   `json:"data,omitempty"`
	Mime string   `json:"mime,omitempty"`
	Href *url.URL `json:"url,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewImageRequest returns a request for the given mode and prompt with the
// default generation parameters applied.
func NewImageRequest(mode, prompt string) ImageRequest {
	return ImageRequest{
		Prompt:   prompt,
		Mode:     mode,
		Steps:    DefaultSteps,
		CFGScale: DefaultCFGScale,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
	}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Normalize converts the wire response into an ImageResult. Inline data is
// preferred when both inline data and a URL are present. An error is
// returned when the response carries an error code, or no usable image
// reference at all.
func (r ImageResponse) Normalize() (*ImageResult, error) {
	if r.Error != "" {
		return nil, fmt.Errorf("%s", r.Error)
	}
	if r.ImageBase64 != "" {
		return decodeInline(r.ImageBase64)
	}
	for _, ref := range []string{r.ImageURL, r.URL} {
		if ref == "" {
			continue
		}
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("invalid image url: %w", err)
		}
		return &ImageResult{Href: u}, nil
	}
	return nil, fmt.Errorf("no image data in response")
}

// Inline reports whether the result holds inline image data.
func (r ImageResult) Inline() bool {
	return len(r.Data) > 0
}

// DataURL returns the result as a data URL when inline, or the URL
// reference otherwise.
func (r ImageResult) DataURL() string {
	if r.Inline() {
		return "data:" + r.Mime + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
	}
	if r.Href != nil {
		return r.Href.String()
	}
	return ""
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// decodeInline accepts either a full data URL or bare base64 data.
func decodeInline(s string) (*ImageResult, error) {
	mimetype := ""
	if strings.HasPrefix(s, "data:") {
		rest := strings.TrimPrefix(s, "data:")
		semi := strings.IndexByte(rest, ',')
		if semi < 0 {
			return nil, fmt.Errorf("malformed data url")
		}
		mimetype = strings.TrimSuffix(rest[:semi], ";base64")
		s = rest[semi+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid image data: %w", err)
	}
	if mimetype == "" {
		mimetype = http.DetectContentType(data)
	}
	return &ImageResult{Data: data, Mime: mimetype}, nil
}
