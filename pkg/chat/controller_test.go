package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mutablelogic/go-miniapp/pkg/chat"
	"github.com/mutablelogic/go-miniapp/pkg/schema"
	"github.com/mutablelogic/go-miniapp/pkg/store"
	"github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// FAKES

type fakeClient struct {
	reply    string
	err      error
	inflight func()
	requests []schema.ChatRequest
}

func (f *fakeClient) Chat(ctx context.Context, req schema.ChatRequest) (*schema.ChatResponse, error) {
	f.requests = append(f.requests, req)
	if f.inflight != nil {
		f.inflight()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &schema.ChatResponse{Reply: f.reply}, nil
}

type fakeHost struct {
	confirm  bool
	identity schema.Identity
	asked    []string
}

func (f *fakeHost) Identity() schema.Identity {
	return f.identity
}

func (f *fakeHost) Confirm(ctx context.Context, message string) (bool, error) {
	f.asked = append(f.asked, message)
	return f.confirm, nil
}

func (f *fakeHost) OpenLink(url string) error {
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func TestGreetingSeeded(t *testing.T) {
	assert := assert.New(t)

	st := store.NewMemoryStore()
	controller := chat.New(&fakeClient{}, st, &fakeHost{}, nil)

	history := controller.History()
	assert.Len(history, 1)
	assert.Equal(schema.RoleAssistant, history[0].Role)
	assert.Contains(history[0].Text, "👋")

	// The greeting is persisted, so a second controller does not seed again
	again := chat.New(&fakeClient{}, st, &fakeHost{}, nil)
	assert.Len(again.History(), 1)
}

func TestSendRoundTrip(t *testing.T) {
	assert := assert.New(t)

	st := store.NewMemoryStore()
	client := &fakeClient{reply: "  Hello!  "}
	controller := chat.New(client, st, &fakeHost{}, nil)

	assert.NoError(controller.Send(context.Background(), "hi there"))

	history := controller.History()
	assert.Len(history, 3)
	assert.Equal(schema.RoleUser, history[1].Role)
	assert.Equal("hi there", history[1].Text)
	assert.Equal(schema.RoleAssistant, history[2].Role)
	assert.Equal("Hello!", history[2].Text)

	// State survives a restart
	restored := chat.New(client, st, &fakeHost{}, nil)
	assert.Equal(history, restored.History())
}

func TestSendComposition(t *testing.T) {
	assert := assert.New(t)

	st := store.NewMemoryStore()
	assert.NoError(st.Set(store.KeyStyle, schema.StyleShort))
	assert.NoError(st.Set(store.KeyPersona, schema.PersonaStrict))
	assert.NoError(st.Set(store.KeyLanguage, "en"))

	client := &fakeClient{reply: "ok"}
	h := &fakeHost{identity: schema.Identity{UserID: "42", Username: "tester"}}
	controller := chat.New(client, st, h, nil)

	assert.NoError(controller.Send(context.Background(), "what time is it"))
	assert.Len(client.requests, 1)

	req := client.requests[0]
	assert.Equal("en", req.Lang)
	assert.Equal(schema.StyleShort, req.Style)
	assert.Equal(schema.PersonaStrict, req.Persona)
	assert.Equal("42", req.UserID)
	assert.Equal("tester", req.Username)
	assert.Contains(req.Text, "Reply ONLY in English.")
	assert.Contains(req.Text, "User: what time is it")
	assert.True(strings.HasSuffix(req.Text, "Assistant:"))
}

func TestSendError(t *testing.T) {
	assert := assert.New(t)

	st := store.NewMemoryStore()
	client := &fakeClient{err: errors.New("network down")}
	controller := chat.New(client, st, &fakeHost{}, nil)

	err := controller.Send(context.Background(), "hi")
	assert.Error(err)

	history := controller.History()
	last := history[len(history)-1]
	assert.Equal(schema.RoleAssistant, last.Role)
	assert.Equal("❌ Ошибка: network down", last.Text)
	assert.False(controller.Sending())
}

func TestSendEmptyText(t *testing.T) {
	assert := assert.New(t)

	client := &fakeClient{reply: "ok"}
	controller := chat.New(client, store.NewMemoryStore(), &fakeHost{}, nil)

	assert.NoError(controller.Send(context.Background(), "   \n\t"))
	assert.Empty(client.requests)
	assert.Len(controller.History(), 1)
}

func TestSendWhileSending(t *testing.T) {
	assert := assert.New(t)

	st := store.NewMemoryStore()
	client := &fakeClient{reply: "ok"}
	controller := chat.New(client, st, &fakeHost{}, nil)

	// A send issued while the first is in flight is dropped
	client.inflight = func() {
		inner := controller.Send(context.Background(), "b")
		assert.NoError(inner)
	}
	assert.NoError(controller.Send(context.Background(), "a"))

	assert.Len(client.requests, 1)
	for _, turn := range controller.History() {
		assert.NotEqual("b", turn.Text)
	}
}

func TestHistoryBound(t *testing.T) {
	assert := assert.New(t)

	st := store.NewMemoryStore()
	var seeded schema.Conversation
	for i := 0; i < schema.MaxTurns; i++ {
		seeded.Append(schema.RoleUser, "turn")
	}
	assert.NoError(store.SetJSON(st, store.KeyHistory, seeded))

	controller := chat.New(&fakeClient{reply: "ok"}, st, &fakeHost{}, nil)
	assert.NoError(controller.Send(context.Background(), "one more"))
	assert.LessOrEqual(len(controller.History()), schema.MaxTurns)
}

func TestClearConfirmed(t *testing.T) {
	assert := assert.New(t)

	st := store.NewMemoryStore()
	controller := chat.New(&fakeClient{reply: "ok"}, st, &fakeHost{confirm: true}, nil)
	assert.NoError(controller.Send(context.Background(), "hi"))

	cleared, err := controller.Clear(context.Background())
	assert.NoError(err)
	assert.True(cleared)

	// Only the reseeded greeting remains, in memory and in the store
	assert.Len(controller.History(), 1)
	restored := chat.New(&fakeClient{}, st, &fakeHost{}, nil)
	assert.Len(restored.History(), 1)
}

func TestClearDeclined(t *testing.T) {
	assert := assert.New(t)

	st := store.NewMemoryStore()
	h := &fakeHost{confirm: false}
	controller := chat.New(&fakeClient{reply: "ok"}, st, h, nil)
	assert.NoError(controller.Send(context.Background(), "hi"))

	cleared, err := controller.Clear(context.Background())
	assert.NoError(err)
	assert.False(cleared)
	assert.Len(controller.History(), 3)
	assert.Len(h.asked, 1)
}

func TestCorruptHistory(t *testing.T) {
	assert := assert.New(t)

	st := store.NewMemoryStore()
	assert.NoError(st.Set(store.KeyHistory, "{not json"))

	controller := chat.New(&fakeClient{}, st, &fakeHost{}, nil)
	assert.Len(controller.History(), 1)
}

func TestRendererSequence(t *testing.T) {
	assert := assert.New(t)

	var typing []bool
	renderer := chat.RendererFunc(func(view chat.View) {
		typing = append(typing, view.Typing)
	})

	controller := chat.New(&fakeClient{reply: "ok"}, store.NewMemoryStore(), &fakeHost{}, renderer)
	assert.NoError(controller.Send(context.Background(), "hi"))

	// Typing while in flight, settled after
	assert.Equal([]bool{true, false}, typing)
}
