package imagegen

import (
	"net/url"
	"os"
	"sync"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Preview is a viewable handle on image data: either a temporary file
// holding inline data, or a URL reference. Callers must Release a preview
// when it leaves the view, which removes the temporary file.
type Preview struct {
	mu   sync.Mutex
	path string
	mime string
	href *url.URL
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// newFilePreview writes data to a temporary file and returns a preview
// over it.
func newFilePreview(data []byte, mime string) (*Preview, error) {
	f, err := os.CreateTemp("", "miniapp-*"+extForMime(mime))
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	return &Preview{path: f.Name(), mime: mime}, nil
}

// newLinkPreview returns a preview over a URL reference. Release is a
// no-op for link previews.
func newLinkPreview(href *url.URL) *Preview {
	return &Preview{href: href}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Path returns the temporary file path, or empty for a link preview.
func (p *Preview) Path() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

// Mime returns the MIME type of a file preview.
func (p *Preview) Mime() string {
	return p.mime
}

// Href returns the viewable reference: a URL for link previews, the file
// path otherwise.
func (p *Preview) Href() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.href != nil {
		return p.href.String()
	}
	return p.path
}

// Release removes the backing temporary file. Releasing twice, or
// releasing a link preview, is a no-op.
func (p *Preview) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.path == "" {
		return nil
	}
	path := p.path
	p.path = ""
	return os.Remove(path)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func extForMime(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ".bin"
}
