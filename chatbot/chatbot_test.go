package chatbot_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-hospital-client/chatbot"
	"github.com/jrsteele09/go-hospital-client/internal/fakebackend"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	backend *fakebackend.Backend
	url     string
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	backend, srv := fakebackend.NewServer()
	t.Cleanup(srv.Close)
	return &testFixture{backend: backend, url: srv.URL}
}

func (f *testFixture) client(t *testing.T) *chatbot.Client {
	t.Helper()
	c, err := chatbot.New(f.url, chatbot.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return c
}

func TestConversation(t *testing.T) {
	f := setupTestFixture(t)
	c := f.client(t)
	ctx := context.Background()

	reply, err := c.Start(ctx)
	require.NoError(t, err)
	require.Contains(t, reply.Message, "What's your name?")
	require.True(t, c.Started())

	reply, err = c.Respond(ctx, "  Sam ")
	require.NoError(t, err)
	require.Contains(t, reply.Message, "Hello, Sam!")

	reply, err = c.Respond(ctx, "nonsense")
	require.NoError(t, err)
	require.Contains(t, reply.Message, "didn't recognize")

	reply, err = c.Respond(ctx, "high fever")
	require.NoError(t, err)
	require.Contains(t, reply.Message, "high fever")

	reply, err = c.Respond(ctx, "3")
	require.NoError(t, err)
	require.True(t, reply.Finished)
	require.Contains(t, reply.Message, "Common Cold")
	require.False(t, c.Started())

	_, err = c.Respond(ctx, "hello?")
	require.ErrorIs(t, err, chatbot.ErrNotStarted)
}

func TestRespond_BeforeStart(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.client(t).Respond(context.Background(), "hi")
	require.ErrorIs(t, err, chatbot.ErrNotStarted)
	require.Empty(t, f.backend.Requests())
}

func TestRespond_ServiceForgotConversation(t *testing.T) {
	f := setupTestFixture(t)
	c := f.client(t)
	ctx := context.Background()

	_, err := c.Start(ctx)
	require.NoError(t, err)

	f.backend.Fail(http.MethodPost, "/chatbot/respond", http.StatusBadRequest,
		map[string]string{"error": "Please start the conversation first."})
	_, err = c.Respond(ctx, "Sam")
	require.ErrorIs(t, err, chatbot.ErrNotStarted)
	require.False(t, c.Started())

	f.backend.Recover(http.MethodPost, "/chatbot/respond")
	_, err = c.Start(ctx)
	require.NoError(t, err)
	reply, err := c.Respond(ctx, "Sam")
	require.NoError(t, err)
	require.Contains(t, reply.Message, "Sam")
}

func TestClients_KeepSeparateConversations(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	a, b := f.client(t), f.client(t)

	_, err := a.Start(ctx)
	require.NoError(t, err)
	_, err = b.Start(ctx)
	require.NoError(t, err)

	_, err = a.Respond(ctx, "Alice")
	require.NoError(t, err)

	reply, err := b.Respond(ctx, "Bob")
	require.NoError(t, err)
	require.Contains(t, reply.Message, "Hello, Bob!")

	reply, err = a.Respond(ctx, "cough")
	require.NoError(t, err)
	require.Contains(t, reply.Message, "cough")
}

func TestStart_RestartsConversation(t *testing.T) {
	f := setupTestFixture(t)
	c := f.client(t)
	ctx := context.Background()

	_, err := c.Start(ctx)
	require.NoError(t, err)
	_, err = c.Respond(ctx, "Sam")
	require.NoError(t, err)

	_, err = c.Start(ctx)
	require.NoError(t, err)
	reply, err := c.Respond(ctx, "Kim")
	require.NoError(t, err)
	require.Contains(t, reply.Message, "Hello, Kim!")
}
