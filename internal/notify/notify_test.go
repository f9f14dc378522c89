package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-jewelry/internal/resilience"
)

func TestNormalizePhone(t *testing.T) {
	require.Equal(t, "919876543210", NormalizePhone("98765 43210"))
	require.Equal(t, "919876543210", NormalizePhone("+91-98765-43210"))
	require.Equal(t, "919876543210", NormalizePhone("098765 43210"))
	require.Equal(t, "", NormalizePhone("n/a"))
}

func newWhatsApp(t *testing.T, handler http.HandlerFunc) WhatsApp {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return WhatsApp{
		HTTP:          resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 2, BaseBackoff: time.Millisecond},
		BaseURL:       srv.URL + "/v19.0/",
		Token:         "token-1",
		PhoneNumberID: "1234",
	}
}

func TestWhatsAppSendTemplate(t *testing.T) {
	var got waRequest
	client := newWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v19.0/1234/messages", r.URL.Path)
		require.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	})

	id, err := client.SendTemplate(context.Background(), TemplateMessage{
		To: "9876543210", Template: "scheme_maturity_reminder", Language: "en", Params: []string{"Meera", "Swarna"},
	})
	require.NoError(t, err)
	require.Equal(t, "wamid.1", id)
	require.Equal(t, "919876543210", got.To)
	require.Equal(t, "scheme_maturity_reminder", got.Template.Name)
	require.Len(t, got.Template.Components[0].Parameters, 2)
}

func TestWhatsAppClientErrorIsRejected(t *testing.T) {
	client := newWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"template name does not exist","code":132001}}`))
	})

	_, err := client.SendTemplate(context.Background(), TemplateMessage{To: "9876543210", Template: "missing"})
	require.ErrorIs(t, err, ErrRejected)
	require.Contains(t, err.Error(), "template name does not exist")
}

func TestWhatsAppServerErrorIsRetryable(t *testing.T) {
	calls := 0
	client := newWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.SendTemplate(context.Background(), TemplateMessage{To: "9876543210", Template: "t"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrRejected)
	require.Equal(t, 2, calls)
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "x"}, nil
}

func samplePayload() MaturityReminderPayload {
	return MaturityReminderPayload{
		TenantID:       "t-1",
		EnrollmentID:   "e-1",
		CustomerName:   "Meera",
		CustomerPhone:  "9876543210",
		SchemeName:     "Swarna 11",
		MaturityDate:   "2025-04-02",
		ExpectedPayout: "51000",
	}
}

func TestEnqueueMaturityReminder(t *testing.T) {
	day := time.Date(2025, 3, 26, 9, 0, 0, 0, time.UTC)
	require.Equal(t, "maturity:t-1:e-1:20250326", samplePayload().TaskID(day))

	q := &fakeEnqueuer{}
	ok, err := EnqueueMaturityReminder(context.Background(), q, samplePayload(), day)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, TypeMaturityReminder, q.tasks[0].Type())

	dup := &fakeEnqueuer{err: asynq.ErrTaskIDConflict}
	ok, err = EnqueueMaturityReminder(context.Background(), dup, samplePayload(), day)
	require.NoError(t, err)
	require.False(t, ok)

	broken := &fakeEnqueuer{err: errors.New("redis down")}
	_, err = EnqueueMaturityReminder(context.Background(), broken, samplePayload(), day)
	require.Error(t, err)
}

type fakeMessenger struct {
	sent []TemplateMessage
	err  error
}

func (f *fakeMessenger) SendTemplate(_ context.Context, msg TemplateMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "wamid.x", nil
}

func newReminderHandler(t *testing.T, m Messenger) ReminderHandler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return ReminderHandler{
		Messenger: m,
		Template:  "scheme_maturity_reminder",
		Language:  "en",
		Replay:    RedisReplayGuard{Client: client},
		Logger:    zerolog.Nop(),
	}
}

func TestReminderHandlerSendsOnce(t *testing.T) {
	m := &fakeMessenger{}
	h := newReminderHandler(t, m)
	task, err := NewMaturityReminderTask(samplePayload(), time.Now())
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(context.Background(), task))
	require.NoError(t, h.ProcessTask(context.Background(), task))
	require.Len(t, m.sent, 1)
	require.Equal(t, []string{"Meera", "Swarna 11", "2025-04-02", "51000"}, m.sent[0].Params)
}

func TestReminderHandlerRejectedSkipsRetry(t *testing.T) {
	h := newReminderHandler(t, &fakeMessenger{err: ErrRejected})
	task, _ := NewMaturityReminderTask(samplePayload(), time.Now())

	err := h.ProcessTask(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestReminderHandlerTransientFailureReleasesGuard(t *testing.T) {
	m := &fakeMessenger{err: errors.New("timeout")}
	h := newReminderHandler(t, m)
	task, _ := NewMaturityReminderTask(samplePayload(), time.Now())

	err := h.ProcessTask(context.Background(), task)
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)

	m.err = nil
	require.NoError(t, h.ProcessTask(context.Background(), task))
	require.Len(t, m.sent, 1)
}

func TestReminderHandlerBadPayload(t *testing.T) {
	h := newReminderHandler(t, &fakeMessenger{})
	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeMaturityReminder, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
