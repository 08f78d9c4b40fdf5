package miniapp

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// MaxAttachmentSize is the largest input image accepted for generation.
const MaxAttachmentSize = 10 << 20 // 10 MiB

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Attachment is a user-supplied binary blob, typically an input image for
// a generation mode.
type Attachment struct {
	meta attachmentMeta
}

type attachmentMeta struct {
	Filename string `json:"filename,omitempty"`
	Data     []byte `json:"data"`
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// ReadAttachment returns an attachment from a reader object.
// It is the responsibility of the caller to close the reader.
func ReadAttachment(r io.Reader) (*Attachment, error) {
	var filename string
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if f, ok := r.(*os.File); ok {
		filename = f.Name()
	}
	return NewAttachment(filename, data), nil
}

// NewAttachment returns an attachment from a filename and data already
// held in memory.
func NewAttachment(filename string, data []byte) *Attachment {
	return &Attachment{
		meta: attachmentMeta{
			Filename: filename,
			Data:     data,
		},
	}
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (a *Attachment) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &a.meta)
}

func (a *Attachment) MarshalJSON() ([]byte, error) {
	var j struct {
		Filename string `json:"filename,omitempty"`
		Type     string `json:"type"`
		Bytes    uint64 `json:"bytes"`
	}
	j.Filename = a.meta.Filename
	j.Type = a.Type()
	j.Bytes = uint64(len(a.meta.Data))
	return json.Marshal(j)
}

func (a *Attachment) String() string {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (a *Attachment) Filename() string {
	return a.meta.Filename
}

func (a *Attachment) Data() []byte {
	return a.meta.Data
}

func (a *Attachment) Size() int64 {
	return int64(len(a.meta.Data))
}

// Type returns the MIME type, detected from the content and falling back
// to the filename extension.
func (a *Attachment) Type() string {
	mimetype := http.DetectContentType(a.meta.Data)
	if mimetype == "application/octet-stream" && a.meta.Filename != "" {
		mimetype = mime.TypeByExtension(filepath.Ext(a.meta.Filename))
	}
	return mimetype
}

// Url returns the attachment as a data URL.
func (a *Attachment) Url() string {
	return "data:" + a.Type() + ";base64," + base64.StdEncoding.EncodeToString(a.meta.Data)
}

// ValidateImage checks that the attachment is usable as a generation
// input image. It returns ErrInvalidType when the MIME type is not an
// image type, and ErrTooLarge when the data exceeds MaxAttachmentSize.
func (a *Attachment) ValidateImage() error {
	if !strings.HasPrefix(a.Type(), "image/") {
		return ErrInvalidType.Withf("%q", a.Type())
	}
	if a.Size() > MaxAttachmentSize {
		return ErrTooLarge.Withf("%d bytes", a.Size())
	}
	return nil
}
