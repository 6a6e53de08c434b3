package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiaheng/health-linebot-go/internal/account"
	"github.com/chiaheng/health-linebot-go/internal/bot"
	"github.com/chiaheng/health-linebot-go/internal/config"
	"github.com/chiaheng/health-linebot-go/internal/logger"
	"github.com/chiaheng/health-linebot-go/internal/metrics"
	"github.com/chiaheng/health-linebot-go/internal/ratelimit"
	"github.com/chiaheng/health-linebot-go/internal/replies"
	"github.com/chiaheng/health-linebot-go/internal/state"
)

const (
	testSecret = "test-channel-secret"
	testUserID = "U0123456789abcdef"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

// fakeLine records outbound LINE API calls.
type fakeLine struct {
	mu         sync.Mutex
	replies    []*messaging_api.ReplyMessageRequest
	pushes     []*messaging_api.PushMessageRequest
	profile    *messaging_api.UserProfileResponse
	profileErr error
}

func (f *fakeLine) ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, req)
	return &messaging_api.ReplyMessageResponse{}, nil
}

func (f *fakeLine) PushMessage(req *messaging_api.PushMessageRequest, _ string) (*messaging_api.PushMessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, req)
	return &messaging_api.PushMessageResponse{}, nil
}

func (f *fakeLine) GetProfile(string) (*messaging_api.UserProfileResponse, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeLine) replyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.replies)
}

// noopAccount satisfies bot.AccountService with all-success answers.
type noopAccount struct{}

func (noopAccount) SearchMember(context.Context, string) error              { return nil }
func (noopAccount) LinkUser(context.Context, string, string) error          { return nil }
func (noopAccount) RegisterMember(context.Context, string, string, string) error { return nil }
func (noopAccount) AddPoint(context.Context, account.Counter, string) (int, error) {
	return 1, nil
}
func (noopAccount) Logout(context.Context, string) error { return nil }

type testHandler struct {
	handler *Handler
	line    *fakeLine
	store   state.Store
	router  *gin.Engine
}

func newTestHandler(t *testing.T) *testHandler {
	t.Helper()

	log := logger.NewWithWriter("error", "json", io.Discard)
	store := state.NewMemory()
	t.Cleanup(func() { store.Close() })

	dispatcher := bot.New(bot.Config{
		Store:   store,
		Account: noopAccount{},
		Replies: replies.Empty(),
		Logger:  log,
	})

	userLimiter := ratelimit.NewUserLimiter(100, 100, nil)
	t.Cleanup(userLimiter.Stop)

	line := &fakeLine{profile: &messaging_api.UserProfileResponse{DisplayName: "小美"}}

	h, err := NewHandler(HandlerConfig{
		ChannelSecret: testSecret,
		Client:        line,
		Store:         store,
		Dispatcher:    dispatcher,
		UserLimiter:   userLimiter,
		BotConfig: &config.BotConfig{
			WebhookTimeout:            5 * time.Second,
			UserRateLimitBurst:        100,
			UserRateLimitRefillPerSec: 100,
			GlobalRateRPS:             1000,
			MaxMessagesPerReply:       5,
			MaxEventsPerWebhook:       100,
			MinReplyTokenLength:       10,
			MaxPostbackDataSize:       300,
		},
		Metrics: newTestMetrics(),
		Logger:  log,
	})
	require.NoError(t, err)

	router := gin.New()
	router.POST("/callback", h.Handle)

	return &testHandler{handler: h, line: line, store: store, router: router}
}

func (th *testHandler) post(t *testing.T, body string, sign bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if sign {
		mac := hmac.New(sha256.New, []byte(testSecret))
		mac.Write([]byte(body))
		req.Header.Set("x-line-signature", base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	} else {
		req.Header.Set("x-line-signature", "bogus")
	}

	w := httptest.NewRecorder()
	th.router.ServeHTTP(w, req)
	return w
}

func (th *testHandler) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, th.handler.Shutdown(ctx))
}

func textEventBody(text string) string {
	return fmt.Sprintf(`{"destination":"Uxdest","events":[{"type":"message","mode":"active","timestamp":1700000000000,"webhookEventId":"01","deliveryContext":{"isRedelivery":false},"replyToken":"0123456789abcdef","source":{"type":"user","userId":"%s"},"message":{"type":"text","id":"100001","text":"%s"}}]}`, testUserID, text)
}

func postbackEventBody(data string) string {
	return fmt.Sprintf(`{"destination":"Uxdest","events":[{"type":"postback","mode":"active","timestamp":1700000000000,"webhookEventId":"02","deliveryContext":{"isRedelivery":false},"replyToken":"0123456789abcdef","source":{"type":"user","userId":"%s"},"postback":{"data":"%s"}}]}`, testUserID, data)
}

func TestHandleTextMessage(t *testing.T) {
	th := newTestHandler(t)

	w := th.post(t, textEventBody("新會員"), true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	th.drain(t)

	require.Equal(t, 1, th.line.replyCount())
	reply := th.line.replies[0]
	assert.Equal(t, "0123456789abcdef", reply.ReplyToken)
	require.Len(t, reply.Messages, 1)
	text := reply.Messages[0].(*messaging_api.TextMessage)
	assert.Equal(t, "請輸入姓名", text.Text)

	conv, err := th.store.Get(context.Background(), testUserID)
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, state.FlowNewMember, conv.Flow)
	assert.Equal(t, 1, conv.Step)
}

func TestInvalidSignatureStillReturnsOK(t *testing.T) {
	th := newTestHandler(t)

	w := th.post(t, textEventBody("新會員"), false)
	assert.Equal(t, http.StatusOK, w.Code)

	th.drain(t)
	assert.Zero(t, th.line.replyCount(), "unverified events are dropped")

	conv, err := th.store.Get(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Nil(t, conv)
}

func TestHandlePostback(t *testing.T) {
	th := newTestHandler(t)

	w := th.post(t, postbackEventBody("start"), true)
	assert.Equal(t, http.StatusOK, w.Code)

	th.drain(t)

	require.Equal(t, 1, th.line.replyCount())
	_, ok := th.line.replies[0].Messages[0].(*messaging_api.TemplateMessage)
	assert.True(t, ok)
}

func TestPostbackPushesFollowUpMenu(t *testing.T) {
	th := newTestHandler(t)

	th.post(t, postbackEventBody("exercise"), true)
	th.drain(t)

	require.Equal(t, 1, th.line.replyCount())
	require.Len(t, th.line.pushes, 1)
	assert.Equal(t, testUserID, th.line.pushes[0].To)
}

func TestOversizedPostbackIgnored(t *testing.T) {
	th := newTestHandler(t)

	big := make([]byte, 400)
	for i := range big {
		big[i] = 'x'
	}
	th.post(t, postbackEventBody(string(big)), true)
	th.drain(t)

	assert.Zero(t, th.line.replyCount())
}

func TestHandleFollow(t *testing.T) {
	th := newTestHandler(t)

	body := fmt.Sprintf(`{"destination":"Uxdest","events":[{"type":"follow","mode":"active","timestamp":1700000000000,"webhookEventId":"03","deliveryContext":{"isRedelivery":false},"replyToken":"0123456789abcdef","source":{"type":"user","userId":"%s"}}]}`, testUserID)
	th.post(t, body, true)
	th.drain(t)

	require.Equal(t, 1, th.line.replyCount())
	msgs := th.line.replies[0].Messages
	require.Len(t, msgs, 2)
	greeting := msgs[0].(*messaging_api.TextMessage)
	assert.Contains(t, greeting.Text, "小美")
	assert.Contains(t, greeting.Text, "歡迎使用健康小幫手")

	// A zero-value record is created on follow.
	conv, err := th.store.Get(context.Background(), testUserID)
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, state.FlowNone, conv.Flow)
}

func TestHandleUnfollowDeletesRecord(t *testing.T) {
	th := newTestHandler(t)

	require.NoError(t, th.store.Insert(context.Background(), state.New(testUserID)))

	body := fmt.Sprintf(`{"destination":"Uxdest","events":[{"type":"unfollow","mode":"active","timestamp":1700000000000,"webhookEventId":"04","deliveryContext":{"isRedelivery":false},"source":{"type":"user","userId":"%s"}}]}`, testUserID)
	th.post(t, body, true)
	th.drain(t)

	conv, err := th.store.Get(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Nil(t, conv)
}

func TestRegisteredUserSilenceOnUnknownText(t *testing.T) {
	th := newTestHandler(t)

	conv := state.New(testUserID)
	conv.Registered = true
	require.NoError(t, th.store.Insert(context.Background(), conv))

	th.post(t, textEventBody("嗨"), true)
	th.drain(t)

	assert.Zero(t, th.line.replyCount(), "unknown free text yields no reply")
}
