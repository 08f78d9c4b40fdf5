package httpclient

import (
	"bytes"
	"context"
	"io"

	// Packages
	client "github.com/mutablelogic/go-client"
	gomultipart "github.com/mutablelogic/go-client/pkg/multipart"
	miniapp "github.com/mutablelogic/go-miniapp"
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// maxDiagnostic bounds the server diagnostic carried inside a classified
// error, so raw upstream bodies don't leak into user-facing messages.
const maxDiagnostic = 80

///////////////////////////////////////////////////////////////////////////////
// TYPES

// imageRequest is the multipart form for POST /api/image without an input
// image.
type imageRequest struct {
	schema.ImageRequest
}

// imageFileRequest additionally carries the input image as a file part
// named "image".
type imageFileRequest struct {
	schema.ImageRequest
	Image gomultipart.File `json:"image"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GenerateImage sends a generation request to POST /api/image as
// multipart form data, attaching the input image when present, and
// normalises the response into a single ImageResult. Failures are
// returned as taxonomy errors carrying a truncated diagnostic.
func (c *Client) GenerateImage(ctx context.Context, req schema.ImageRequest, image *miniapp.Attachment) (*schema.ImageResult, error) {
	if req.Mode == "" {
		return nil, miniapp.ErrBadParameter.With("mode is required")
	}

	// Build the multipart payload
	var payload client.Payload
	var err error
	if image != nil {
		payload, err = client.NewStreamingMultipartRequest(imageFileRequest{
			ImageRequest: req,
			Image: gomultipart.File{
				Path: image.Filename(),
				Body: io.NopCloser(bytes.NewReader(image.Data())),
			},
		}, client.ContentTypeJson)
	} else {
		payload, err = client.NewMultipartRequest(imageRequest{req}, client.ContentTypeJson)
	}
	if err != nil {
		return nil, err
	}

	// Single-shot request, no retries
	var response schema.ImageResponse
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("api", "image")); err != nil {
		return nil, classify(err.Error())
	}

	// A 2xx response can still carry a failure code
	if response.Error != "" {
		return nil, classify(response.Error)
	}

	result, err := response.Normalize()
	if err != nil {
		if response.ImageBase64 == "" && response.ImageURL == "" && response.URL == "" {
			return nil, miniapp.ErrNoImage
		}
		return nil, miniapp.ErrGenerationFailed.Withf("malformed image reference: %v", err)
	}
	return result, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// classify maps a diagnostic string onto the failure taxonomy, keeping a
// truncated copy of the diagnostic in the error chain.
func classify(diagnostic string) error {
	code := miniapp.Classify(diagnostic)
	if len(diagnostic) > maxDiagnostic {
		diagnostic = diagnostic[:maxDiagnostic]
	}
	return code.With(diagnostic)
}
