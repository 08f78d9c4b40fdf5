package imagegen_test

import (
	"context"
	"encoding/base64"
	"net/url"
	"os"
	"strings"
	"testing"

	miniapp "github.com/mutablelogic/go-miniapp"
	"github.com/mutablelogic/go-miniapp/pkg/imagegen"
	"github.com/mutablelogic/go-miniapp/pkg/schema"
	"github.com/mutablelogic/go-miniapp/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

///////////////////////////////////////////////////////////////////////////////
// FAKES

// 1x1 transparent PNG
const pngPixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type fakeClient struct {
	result   *schema.ImageResult
	err      error
	inflight func()
	requests []schema.ImageRequest
	images   []*miniapp.Attachment
}

func (f *fakeClient) GenerateImage(ctx context.Context, req schema.ImageRequest, image *miniapp.Attachment) (*schema.ImageResult, error) {
	f.requests = append(f.requests, req)
	f.images = append(f.images, image)
	if f.inflight != nil {
		f.inflight()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func pngAttachment(t *testing.T) *miniapp.Attachment {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(pngPixel)
	require.NoError(t, err)
	return miniapp.NewAttachment("input.png", data)
}

func inlineResult(t *testing.T) *schema.ImageResult {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(pngPixel)
	require.NoError(t, err)
	return &schema.ImageResult{Data: data, Mime: "image/png"}
}

func newController(t *testing.T, client *fakeClient, st store.Store, renderer imagegen.Renderer) *imagegen.Controller {
	t.Helper()
	controller, err := imagegen.New(client, st, nil, renderer, imagegen.DefaultCatalog())
	require.NoError(t, err)
	t.Cleanup(func() { controller.Close() })
	return controller
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func TestCatalog(t *testing.T) {
	assert := assert.New(t)

	catalog := imagegen.DefaultCatalog()
	assert.NoError(catalog.Validate())
	assert.Equal("txt2img", catalog.Default().ID)

	mode, ok := catalog.Lookup("upscale")
	assert.True(ok)
	assert.True(mode.NeedsImage)
	assert.Equal(uint(14), mode.Price)

	_, ok = catalog.Lookup("nonsense")
	assert.False(ok)

	// txt2img is the only mode without an input image
	for _, mode := range catalog {
		assert.Equal(mode.ID == "txt2img", !mode.NeedsImage, "mode %q", mode.ID)
	}
}

func TestCatalogYAML(t *testing.T) {
	assert := assert.New(t)

	catalog, err := imagegen.ReadCatalog(strings.NewReader(`
- id: sketch
  title: Sketch
  description: Pencil sketch
  price: 2
- id: restore
  title: Restore
  price: 9
  needs_image: true
  strength: 0.4
`))
	assert.NoError(err)
	assert.Len(catalog, 2)
	assert.Equal("sketch", catalog.Default().ID)

	mode, ok := catalog.Lookup("restore")
	assert.True(ok)
	assert.Equal(0.4, mode.Strength)
}

func TestCatalogInvalid(t *testing.T) {
	assert := assert.New(t)

	_, err := imagegen.ReadCatalog(strings.NewReader(`
- id: a
  title: A
  price: 1
- id: a
  title: Duplicate
  price: 2
`))
	assert.ErrorIs(err, miniapp.ErrBadParameter)

	_, err = imagegen.ReadCatalog(strings.NewReader(`
- id: free
  title: Free
  price: 0
`))
	assert.ErrorIs(err, miniapp.ErrBadParameter)
}

func TestSelectMode(t *testing.T) {
	assert := assert.New(t)

	st := store.NewMemoryStore()
	controller := newController(t, &fakeClient{}, st, nil)
	assert.Equal(imagegen.StatusIdle, controller.Status())

	controller.SelectMode("edit")
	assert.Equal(imagegen.StatusAwaitingInput, controller.Status())

	// The selection is persisted and restored
	value, ok := st.Get(store.KeyImageMode)
	assert.True(ok)
	assert.Equal("edit", value)

	restored := newController(t, &fakeClient{}, st, nil)
	assert.Equal(imagegen.StatusAwaitingInput, restored.Status())
}

func TestSelectModeUnknown(t *testing.T) {
	assert := assert.New(t)

	st := store.NewMemoryStore()
	controller := newController(t, &fakeClient{}, st, nil)

	controller.SelectMode("nonsense")
	assert.Equal(imagegen.StatusIdle, controller.Status())
	_, ok := st.Get(store.KeyImageMode)
	assert.False(ok)
}

func TestAttachFile(t *testing.T) {
	assert := assert.New(t)

	controller := newController(t, &fakeClient{}, store.NewMemoryStore(), nil)

	// No mode selected yet
	assert.ErrorIs(controller.AttachFile(pngAttachment(t)), miniapp.ErrBadParameter)

	// txt2img takes no input image
	controller.SelectMode("txt2img")
	assert.ErrorIs(controller.AttachFile(pngAttachment(t)), miniapp.ErrBadParameter)

	controller.SelectMode("edit")
	assert.NoError(controller.AttachFile(pngAttachment(t)))

	// Non-image attachments are rejected
	assert.ErrorIs(controller.AttachFile(miniapp.NewAttachment("a.txt", []byte("hello, world"))), miniapp.ErrInvalidType)
}

func TestSelectModeDropsAttachment(t *testing.T) {
	assert := assert.New(t)

	client := &fakeClient{result: inlineResult(t)}

	var attached *imagegen.Preview
	renderer := imagegen.RendererFunc(func(view imagegen.View) {
		if view.Attachment != nil {
			attached = view.Attachment
		}
	})

	controller := newController(t, client, store.NewMemoryStore(), renderer)
	controller.SelectMode("edit")
	assert.NoError(controller.AttachFile(pngAttachment(t)))
	require.NotNil(t, attached)

	path := attached.Path()
	_, err := os.Stat(path)
	assert.NoError(err)

	// A text mode takes no input image, so the attachment is dropped and
	// its preview file released
	controller.SelectMode("txt2img")
	_, err = os.Stat(path)
	assert.True(os.IsNotExist(err))

	controller.SetPrompt("a cat")
	assert.NoError(controller.Generate(context.Background()))
	assert.Nil(client.images[0])
	assert.Zero(client.requests[0].Strength)
}

func TestGeneratePreconditions(t *testing.T) {
	assert := assert.New(t)

	client := &fakeClient{result: inlineResult(t)}
	controller := newController(t, client, store.NewMemoryStore(), nil)
	ctx := context.Background()

	// No mode selected
	assert.ErrorIs(controller.Generate(ctx), miniapp.ErrBadParameter)

	// Text mode without a prompt
	controller.SelectMode("txt2img")
	assert.ErrorIs(controller.Generate(ctx), miniapp.ErrEmptyPrompt)
	assert.Equal(imagegen.StatusAwaitingInput, controller.Status())

	// Image mode without an image
	controller.SelectMode("upscale")
	assert.ErrorIs(controller.Generate(ctx), miniapp.ErrImageRequired)
	assert.Equal(imagegen.StatusAwaitingInput, controller.Status())

	assert.Empty(client.requests)
}

func TestGenerate(t *testing.T) {
	assert := assert.New(t)

	client := &fakeClient{result: inlineResult(t)}

	var statuses []imagegen.Status
	renderer := imagegen.RendererFunc(func(view imagegen.View) {
		statuses = append(statuses, view.Status)
	})

	controller := newController(t, client, store.NewMemoryStore(), renderer)
	controller.SelectMode("txt2img")
	controller.SetPrompt("a cat in a hat")
	assert.NoError(controller.Generate(context.Background()))

	assert.Equal(imagegen.StatusResultReady, controller.Status())
	assert.Equal([]imagegen.Status{
		imagegen.StatusAwaitingInput,
		imagegen.StatusAwaitingInput,
		imagegen.StatusGenerating,
		imagegen.StatusResultReady,
	}, statuses)

	// Request carries the defaults, no strength without an image
	assert.Len(client.requests, 1)
	req := client.requests[0]
	assert.Equal("txt2img", req.Mode)
	assert.Equal("a cat in a hat", req.Prompt)
	assert.Equal(uint(schema.DefaultSteps), req.Steps)
	assert.Zero(req.Strength)
	assert.Nil(client.images[0])
}

func TestGenerateWithImage(t *testing.T) {
	assert := assert.New(t)

	client := &fakeClient{result: inlineResult(t)}
	controller := newController(t, client, store.NewMemoryStore(), nil)

	controller.SelectMode("edit")
	controller.SetPrompt("make it blue")
	assert.NoError(controller.AttachFile(pngAttachment(t)))
	assert.NoError(controller.Generate(context.Background()))

	req := client.requests[0]
	assert.Equal(0.7, req.Strength)
	assert.NotNil(client.images[0])
}

func TestGenerateFailure(t *testing.T) {
	assert := assert.New(t)

	client := &fakeClient{err: miniapp.ErrInsufficientBalance.With("payment_required")}

	var failed []imagegen.View
	renderer := imagegen.RendererFunc(func(view imagegen.View) {
		if view.Status == imagegen.StatusFailed {
			failed = append(failed, view)
		}
	})

	controller := newController(t, client, store.NewMemoryStore(), renderer)
	controller.SelectMode("txt2img")
	controller.SetPrompt("a cat")
	assert.ErrorIs(controller.Generate(context.Background()), miniapp.ErrInsufficientBalance)

	// Transient failure view with a localized message, then back to input
	// with the prompt kept
	assert.Len(failed, 1)
	assert.Equal("Недостаточно средств. Пополните баланс.", failed[0].Message)
	assert.Equal(imagegen.StatusAwaitingInput, controller.Status())
	assert.Equal("a cat", failed[0].Prompt)
}

func TestGenerateWhileGenerating(t *testing.T) {
	assert := assert.New(t)

	client := &fakeClient{result: inlineResult(t)}
	controller := newController(t, client, store.NewMemoryStore(), nil)
	controller.SelectMode("txt2img")
	controller.SetPrompt("a cat")

	client.inflight = func() {
		assert.NoError(controller.Generate(context.Background()))
	}
	assert.NoError(controller.Generate(context.Background()))
	assert.Len(client.requests, 1)
}

func TestResultPreview(t *testing.T) {
	assert := assert.New(t)

	client := &fakeClient{result: inlineResult(t)}

	var result *imagegen.Preview
	renderer := imagegen.RendererFunc(func(view imagegen.View) {
		if view.Status == imagegen.StatusResultReady {
			result = view.Result
		}
	})

	controller := newController(t, client, store.NewMemoryStore(), renderer)
	controller.SelectMode("txt2img")
	controller.SetPrompt("a cat")
	assert.NoError(controller.Generate(context.Background()))

	// Inline data lands in a temporary file, removed on release
	assert.NotNil(result)
	assert.NotEmpty(result.Path())
	_, err := os.Stat(result.Path())
	assert.NoError(err)

	path := result.Path()
	controller.Reset()
	_, err = os.Stat(path)
	assert.True(os.IsNotExist(err))
}

func TestLinkResult(t *testing.T) {
	assert := assert.New(t)

	href, err := url.Parse("https://example.com/out.png")
	require.NoError(t, err)
	client := &fakeClient{result: &schema.ImageResult{Href: href}}

	var result *imagegen.Preview
	renderer := imagegen.RendererFunc(func(view imagegen.View) {
		if view.Status == imagegen.StatusResultReady {
			result = view.Result
		}
	})

	controller := newController(t, client, store.NewMemoryStore(), renderer)
	controller.SelectMode("txt2img")
	controller.SetPrompt("a cat")
	assert.NoError(controller.Generate(context.Background()))

	assert.NotNil(result)
	assert.Empty(result.Path())
	assert.Equal("https://example.com/out.png", result.Href())
}

func TestFailureMessageFallback(t *testing.T) {
	assert := assert.New(t)

	// Unknown languages fall back to the default
	assert.Equal(
		imagegen.FailureMessage("ru", miniapp.ErrBlocked),
		imagegen.FailureMessage("xx", miniapp.ErrBlocked),
	)
	// English translations exist for every taxonomy code
	assert.NotEqual(
		imagegen.FailureMessage("ru", miniapp.ErrEmptyPrompt),
		imagegen.FailureMessage("en", miniapp.ErrEmptyPrompt),
	)
}
