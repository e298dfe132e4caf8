package stats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/student-toolkit/internal/auth"
	"github.com/gokatarajesh/student-toolkit/internal/auth/jwt"
	"github.com/gokatarajesh/student-toolkit/internal/question"
	ws "github.com/gokatarajesh/student-toolkit/pkg/http/ws"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Increment(ctx context.Context, email string, correct bool) (question.StatsRecord, error) {
	args := m.Called(ctx, email, correct)
	return args.Get(0).(question.StatsRecord), args.Error(1)
}

func (m *mockStore) Get(ctx context.Context, email string) (question.StatsRecord, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(question.StatsRecord), args.Error(1)
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return p.err
}

type recordingSender struct {
	emails []string
	msgs   []ws.Message
	err    error
}

func (s *recordingSender) SendToUser(email string, msg ws.Message) error {
	s.emails = append(s.emails, email)
	s.msgs = append(s.msgs, msg)
	return s.err
}

func TestLedger_IncrementPublishes(t *testing.T) {
	store := new(mockStore)
	pub := &recordingPublisher{}
	ledger := NewLedger(store, pub, "", zerolog.Nop())

	rec := question.StatsRecord{Email: "a@b.com", TotalAnswered: 1, Correct: 1}
	store.On("Increment", mock.Anything, "a@b.com", true).Return(rec, nil)

	got, err := ledger.Increment(context.Background(), "a@b.com", true)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	require.Len(t, pub.payloads, 1)
	assert.Equal(t, DefaultChannel, pub.channels[0])
	assert.JSONEq(t, `{"email":"a@b.com","totalAnswered":1,"correct":1,"incorrect":0}`, string(pub.payloads[0]))
}

func TestLedger_PublishFailureIsNotFatal(t *testing.T) {
	store := new(mockStore)
	pub := &recordingPublisher{err: errors.New("redis down")}
	ledger := NewLedger(store, pub, "custom", zerolog.Nop())

	rec := question.StatsRecord{Email: "a@b.com", TotalAnswered: 1, Incorrect: 1}
	store.On("Increment", mock.Anything, "a@b.com", false).Return(rec, nil)

	got, err := ledger.Increment(context.Background(), "a@b.com", false)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.Equal(t, []string{"custom"}, pub.channels)
}

func TestLedger_StoreFailureSkipsPublish(t *testing.T) {
	store := new(mockStore)
	pub := &recordingPublisher{}
	ledger := NewLedger(store, pub, "", zerolog.Nop())

	store.On("Increment", mock.Anything, "a@b.com", true).Return(question.StatsRecord{}, errors.New("db down"))

	_, err := ledger.Increment(context.Background(), "a@b.com", true)
	assert.Error(t, err)
	assert.Empty(t, pub.payloads)
}

func TestLedger_NilPublisher(t *testing.T) {
	store := new(mockStore)
	ledger := NewLedger(store, nil, "", zerolog.Nop())

	store.On("Increment", mock.Anything, "a@b.com", true).Return(question.StatsRecord{Email: "a@b.com", TotalAnswered: 1, Correct: 1}, nil)

	_, err := ledger.Increment(context.Background(), "a@b.com", true)
	assert.NoError(t, err)
}

func TestBroadcaster_Forward(t *testing.T) {
	sender := &recordingSender{}
	b := NewBroadcaster(nil, sender, "", zerolog.Nop())

	b.forward(`{"email":"a@b.com","totalAnswered":4,"correct":3,"incorrect":1}`)

	require.Len(t, sender.msgs, 1)
	assert.Equal(t, "a@b.com", sender.emails[0])
	assert.Equal(t, ws.TypeStatsUpdate, sender.msgs[0].Type)

	var payload ws.StatsUpdatePayload
	require.NoError(t, json.Unmarshal(sender.msgs[0].Payload, &payload))
	assert.Equal(t, int64(4), payload.TotalAnswered)
}

func TestBroadcaster_ForwardIgnoresGarbage(t *testing.T) {
	sender := &recordingSender{}
	b := NewBroadcaster(nil, sender, "", zerolog.Nop())

	b.forward("not json")
	b.forward(`{"totalAnswered":1}`)

	assert.Empty(t, sender.msgs)
}

func TestBroadcaster_RunWithoutRedis(t *testing.T) {
	b := NewBroadcaster(nil, &recordingSender{}, "", zerolog.Nop())
	assert.NoError(t, b.Run(context.Background()))
}

func TestHTTPHandler_GetMine(t *testing.T) {
	store := new(mockStore)
	ledger := NewLedger(store, nil, "", zerolog.Nop())
	h := NewHTTPHandler(ledger, ws.NewHub(zerolog.Nop()), nil, zerolog.Nop())

	store.On("Get", mock.Anything, "new@b.com").Return(question.StatsRecord{Email: "new@b.com"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats/me", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), &jwt.Claims{Email: "new@b.com"}))
	rec := httptest.NewRecorder()
	h.GetMine(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"new@b.com","totalAnswered":0,"correct":0,"incorrect":0}`, rec.Body.String())
}

func TestHTTPHandler_GetMineStoreError(t *testing.T) {
	store := new(mockStore)
	ledger := NewLedger(store, nil, "", zerolog.Nop())
	h := NewHTTPHandler(ledger, ws.NewHub(zerolog.Nop()), nil, zerolog.Nop())

	store.On("Get", mock.Anything, "a@b.com").Return(question.StatsRecord{}, errors.New("db down"))

	req := httptest.NewRequest(http.MethodGet, "/v1/stats/me", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), &jwt.Claims{Email: "a@b.com"}))
	rec := httptest.NewRecorder()
	h.GetMine(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "stats_fetch_failed")
}

func TestHTTPHandler_GetMineRequiresAuth(t *testing.T) {
	h := NewHTTPHandler(NewLedger(new(mockStore), nil, "", zerolog.Nop()), ws.NewHub(zerolog.Nop()), nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetMine(rec, httptest.NewRequest(http.MethodGet, "/v1/stats/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHTTPHandler_WebSocketSnapshotAndUpdates(t *testing.T) {
	tokens := jwt.NewManager(jwt.TokenConfig{Secret: []byte("test-secret")})
	token, err := tokens.Issue("a@b.com")
	require.NoError(t, err)

	store := new(mockStore)
	store.On("Get", mock.Anything, "a@b.com").Return(question.StatsRecord{Email: "a@b.com", TotalAnswered: 2, Correct: 1, Incorrect: 1}, nil)

	hub := ws.NewHub(zerolog.Nop())
	h := NewHTTPHandler(NewLedger(store, nil, "", zerolog.Nop()), hub, tokens, zerolog.Nop())

	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/stats?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snapshot ws.Message
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, ws.TypeStatsUpdate, snapshot.Type)
	assert.JSONEq(t, `{"email":"a@b.com","totalAnswered":2,"correct":1,"incorrect":1}`, string(snapshot.Payload))

	require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypePing, RequestID: "r1"}))
	var pong ws.Message
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, ws.TypePong, pong.Type)
	assert.Equal(t, "r1", pong.RequestID)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: "subscribe", RequestID: "r2"}))
	var rejected ws.Message
	require.NoError(t, conn.ReadJSON(&rejected))
	assert.Equal(t, ws.TypeError, rejected.Type)
	assert.Equal(t, "r2", rejected.RequestID)
	var payload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(rejected.Payload, &payload))
	assert.Equal(t, ws.ErrCodeUnsupportedMessage, payload.Code)

	b := NewBroadcaster(nil, hub, "", zerolog.Nop())
	b.forward(`{"email":"a@b.com","totalAnswered":3,"correct":2,"incorrect":1}`)

	var update ws.Message
	require.NoError(t, conn.ReadJSON(&update))
	assert.JSONEq(t, `{"email":"a@b.com","totalAnswered":3,"correct":2,"incorrect":1}`, string(update.Payload))
}

func TestHTTPHandler_WebSocketRejectsBadToken(t *testing.T) {
	tokens := jwt.NewManager(jwt.TokenConfig{Secret: []byte("test-secret")})
	h := NewHTTPHandler(NewLedger(new(mockStore), nil, "", zerolog.Nop()), ws.NewHub(zerolog.Nop()), tokens, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.HandleWebSocket(rec, httptest.NewRequest(http.MethodGet, "/ws/stats?token=garbage", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleWebSocket(rec, httptest.NewRequest(http.MethodGet, "/ws/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
