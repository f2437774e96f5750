package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deepgram/aireply/internal/domain/chat/models"
	"github.com/deepgram/aireply/internal/infrastructure/messagestore"
	"github.com/deepgram/aireply/internal/services/collector"
	"github.com/deepgram/aireply/internal/services/completion"
	"github.com/deepgram/aireply/internal/services/inflight"
	"github.com/deepgram/aireply/internal/services/presentation"
	"github.com/deepgram/aireply/internal/services/settings"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{
	"id": "gen-1",
	"model": "meta-llama/llama-3.1-8b-instruct:free",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "Sure, see you at 6!"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 100, "completion_tokens": 50, "total_tokens": 150}
}`

type recordingPresenter struct {
	mu        sync.Mutex
	ephemeral []presentation.EphemeralMessage
	inserted  []string
	notices   []presentation.Notice
	// ephemeralErr is returned by SendEphemeral when set
	ephemeralErr error
}

func (p *recordingPresenter) SendEphemeral(ctx context.Context, msg presentation.EphemeralMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ephemeralErr != nil {
		return p.ephemeralErr
	}
	p.ephemeral = append(p.ephemeral, msg)
	return nil
}

func (p *recordingPresenter) InsertText(ctx context.Context, channelID, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inserted = append(p.inserted, text)
	return nil
}

func (p *recordingPresenter) Notify(ctx context.Context, channelID string, notice presentation.Notice) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, notice)
	return nil
}

type staticSettings struct {
	s settings.PluginSettings
}

func (s staticSettings) Get() settings.PluginSettings {
	return s.s
}

type upstream struct {
	server *httptest.Server
	calls  int32
	mu     sync.Mutex
	bodies []completion.CompletionRequest
}

func newUpstream(t *testing.T, status int, body string) *upstream {
	t.Helper()
	u := &upstream{}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&u.calls, 1)
		var req completion.CompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		u.mu.Lock()
		u.bodies = append(u.bodies, req)
		u.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) callCount() int {
	return int(atomic.LoadInt32(&u.calls))
}

type fixture struct {
	store     *messagestore.Store
	presenter *recordingPresenter
	upstream  *upstream
	assistant *Assistant
}

func newFixture(t *testing.T, cfg settings.PluginSettings, status int, body string, guard *inflight.Guard) *fixture {
	t.Helper()
	store := messagestore.NewStore(100)
	presenter := &recordingPresenter{}
	up := newUpstream(t, status, body)

	a := New(
		staticSettings{s: cfg},
		collector.New(store),
		completion.NewClient(up.server.URL, up.server.Client()),
		presentation.NewAdapter(presenter),
		guard,
	)
	return &fixture{store: store, presenter: presenter, upstream: up, assistant: a}
}

func (f *fixture) seed(channelID string, n int) {
	base := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	msgs := make([]models.HostMessage, n)
	for i := range msgs {
		msgs[i] = models.HostMessage{
			ID:        fmt.Sprintf("m%d", i+1),
			Content:   fmt.Sprintf("message %d", i+1),
			Author:    models.HostAuthor{Username: "bob"},
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
	}
	f.store.Replace(context.Background(), channelID, msgs)
}

func baseSettings() settings.PluginSettings {
	s := settings.Defaults()
	s.APIKey = "sk-or-test"
	return s
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	original := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = original })
	return &buf
}

func TestReplyDelivered(t *testing.T) {
	cfg := baseSettings()
	cfg.ShowDebugInfo = true
	cfg.SystemInstruction = "Keep it short."
	f := newFixture(t, cfg, http.StatusOK, okBody, nil)
	f.seed("c1", 3)

	outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1"})

	assert.Equal(t, StatusDelivered, outcome.Status)
	assert.NotEmpty(t, outcome.RequestID)
	assert.Equal(t, "Sure, see you at 6!", outcome.Text)
	assert.Nil(t, outcome.Notice)
	assert.Equal(t, 1, f.upstream.callCount())

	require.Len(t, f.upstream.bodies, 1)
	sent := f.upstream.bodies[0]
	require.Len(t, sent.Messages, 4)
	assert.Equal(t, models.RoleSystem, sent.Messages[0].Role)
	assert.Equal(t, "Keep it short.", sent.Messages[0].Content)
	assert.Equal(t, "message 1", sent.Messages[1].Content)
	assert.Equal(t, "message 3", sent.Messages[3].Content)
	assert.Equal(t, cfg.Model, sent.Model)

	require.Len(t, f.presenter.ephemeral, 1)
	content := f.presenter.ephemeral[0].Content
	assert.Contains(t, content, "Sure, see you at 6!")
	assert.Contains(t, content, "$0.000020 (Free)")
	assert.Contains(t, content, "meta-llama/llama-3.1-8b-instruct:free")
	assert.Empty(t, f.presenter.inserted)
}

func TestReplyTypebar(t *testing.T) {
	cfg := baseSettings()
	cfg.OutputMode = settings.OutputTypebar
	f := newFixture(t, cfg, http.StatusOK, okBody, nil)
	f.seed("c1", 2)

	outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1"})

	assert.Equal(t, StatusDelivered, outcome.Status)
	assert.Equal(t, []string{"Sure, see you at 6!"}, f.presenter.inserted)
	assert.Empty(t, f.presenter.ephemeral)
}

func TestReplyTypebarDebugSendFails(t *testing.T) {
	cfg := baseSettings()
	cfg.OutputMode = settings.OutputTypebar
	cfg.ShowDebugInfo = true
	f := newFixture(t, cfg, http.StatusOK, okBody, nil)
	f.presenter.ephemeralErr = fmt.Errorf("no host connected")
	f.seed("c1", 2)

	outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1"})

	assert.Equal(t, StatusDelivered, outcome.Status)
	assert.Nil(t, outcome.Notice)
	assert.Equal(t, []string{"Sure, see you at 6!"}, f.presenter.inserted)
	assert.Empty(t, f.presenter.notices)
}

func TestReplyTokenEstimateOnly(t *testing.T) {
	cfg := baseSettings()
	cfg.ShowTokenEstimate = true
	f := newFixture(t, cfg, http.StatusOK, okBody, nil)
	f.store.Put(context.Background(), "c1", models.HostMessage{ID: "1", Content: "abcdefgh", Timestamp: time.Unix(1, 0)})

	outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1"})

	require.Equal(t, StatusDelivered, outcome.Status)
	require.Len(t, f.presenter.ephemeral, 1)
	assert.Contains(t, f.presenter.ephemeral[0].Content, "Estimated context tokens: ~2")
	assert.NotContains(t, f.presenter.ephemeral[0].Content, "(Free)")
}

func TestReplyScopeGate(t *testing.T) {
	cfg := baseSettings()
	cfg.ChatScope = settings.ScopeDMs
	f := newFixture(t, cfg, http.StatusOK, okBody, nil)
	f.seed("c1", 3)

	outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1", IsGuild: true})

	assert.Equal(t, StatusRejected, outcome.Status)
	require.NotNil(t, outcome.Notice)
	assert.Equal(t, NoticeScope, outcome.Notice.Message)
	assert.Equal(t, 0, f.upstream.callCount())
	assert.Len(t, f.presenter.notices, 1)
	assert.Empty(t, f.presenter.ephemeral)
	assert.Empty(t, f.presenter.inserted)
}

func TestReplyMissingAPIKey(t *testing.T) {
	cfg := baseSettings()
	cfg.APIKey = ""
	f := newFixture(t, cfg, http.StatusOK, okBody, nil)
	f.seed("c1", 3)

	outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1"})

	assert.Equal(t, StatusRejected, outcome.Status)
	require.NotNil(t, outcome.Notice)
	assert.Equal(t, NoticeMissingKey, outcome.Notice.Message)
	assert.Equal(t, 0, f.upstream.callCount())
}

func TestReplyEmptyContext(t *testing.T) {
	f := newFixture(t, baseSettings(), http.StatusOK, okBody, nil)

	outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "quiet"})

	assert.Equal(t, StatusRejected, outcome.Status)
	require.NotNil(t, outcome.Notice)
	assert.Equal(t, NoticeEmptyContext, outcome.Notice.Message)
	assert.Equal(t, 0, f.upstream.callCount())
}

func TestReplyUpstreamUnauthorized(t *testing.T) {
	body := `{"error":{"message":"User not found.","code":401}}`

	t.Run("logs status and body when logging is enabled", func(t *testing.T) {
		logs := captureLogs(t)
		cfg := baseSettings()
		cfg.EnableLogging = true
		f := newFixture(t, cfg, http.StatusUnauthorized, body, nil)
		f.seed("c1", 2)

		outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1"})

		assert.Equal(t, StatusFailed, outcome.Status)
		assert.Empty(t, outcome.Text)
		require.NotNil(t, outcome.Notice)
		assert.Equal(t, NoticeFailure, outcome.Notice.Message)
		assert.Empty(t, f.presenter.ephemeral)
		assert.Empty(t, f.presenter.inserted)
		assert.Contains(t, logs.String(), `"status":401`)
		assert.Contains(t, logs.String(), "User not found.")
	})

	t.Run("stays quiet when logging is disabled", func(t *testing.T) {
		logs := captureLogs(t)
		f := newFixture(t, baseSettings(), http.StatusUnauthorized, body, nil)
		f.seed("c1", 2)

		outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1"})

		assert.Equal(t, StatusFailed, outcome.Status)
		assert.NotContains(t, logs.String(), "User not found.")
	})
}

func TestReplyEmptyChoices(t *testing.T) {
	f := newFixture(t, baseSettings(), http.StatusOK, `{"id":"gen-2","choices":[],"usage":{}}`, nil)
	f.seed("c1", 2)

	outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1"})

	assert.Equal(t, StatusFailed, outcome.Status)
	require.NotNil(t, outcome.Notice)
	assert.Equal(t, presentation.LevelFailure, outcome.Notice.Level)
	assert.Empty(t, f.presenter.ephemeral)
}

func TestReplyMalformedResponse(t *testing.T) {
	logs := captureLogs(t)
	cfg := baseSettings()
	cfg.EnableLogging = true
	f := newFixture(t, cfg, http.StatusOK, `<html>gateway</html>`, nil)
	f.seed("c1", 2)

	outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1"})

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Contains(t, logs.String(), "malformed")
}

func TestReplyBusyChannel(t *testing.T) {
	guard := inflight.NewGuard(true)
	f := newFixture(t, baseSettings(), http.StatusOK, okBody, guard)
	f.seed("c1", 2)

	release, ok := guard.TryAcquire("c1")
	require.True(t, ok)

	outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1"})
	assert.Equal(t, StatusRejected, outcome.Status)
	require.NotNil(t, outcome.Notice)
	assert.Equal(t, NoticeBusy, outcome.Notice.Message)
	assert.Equal(t, 0, f.upstream.callCount())

	release()
	outcome = f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1"})
	assert.Equal(t, StatusDelivered, outcome.Status)
	assert.False(t, guard.Active("c1"))
}

func TestReplyConcurrentWithoutGuard(t *testing.T) {
	f := newFixture(t, baseSettings(), http.StatusOK, okBody, nil)
	f.seed("c1", 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, f.upstream.callCount())
	assert.Len(t, f.presenter.ephemeral, 2)
}

func TestReplyAnchoredContext(t *testing.T) {
	f := newFixture(t, baseSettings(), http.StatusOK, okBody, nil)
	f.seed("c1", 8)

	outcome := f.assistant.Reply(context.Background(), Invocation{ChannelID: "c1", AnchorMessageID: "m3"})

	require.Equal(t, StatusDelivered, outcome.Status)
	require.Len(t, f.upstream.bodies, 1)
	sent := f.upstream.bodies[0].Messages
	assert.Equal(t, "message 3", sent[len(sent)-1].Content)
	assert.Len(t, sent, 3)
}
