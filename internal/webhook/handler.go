// Package webhook receives LINE platform callbacks, verifies their
// signature, and feeds the events through the conversation dispatcher.
package webhook

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/chiaheng/health-linebot-go/internal/bot"
	"github.com/chiaheng/health-linebot-go/internal/config"
	"github.com/chiaheng/health-linebot-go/internal/logger"
	"github.com/chiaheng/health-linebot-go/internal/metrics"
	"github.com/chiaheng/health-linebot-go/internal/ratelimit"
	"github.com/chiaheng/health-linebot-go/internal/sentry"
	"github.com/chiaheng/health-linebot-go/internal/state"
)

// LineAPI is the slice of the LINE messaging client the handler uses.
// *messaging_api.MessagingApiAPI satisfies it.
type LineAPI interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
	PushMessage(req *messaging_api.PushMessageRequest, xLineRetryKey string) (*messaging_api.PushMessageResponse, error)
	GetProfile(userID string) (*messaging_api.UserProfileResponse, error)
}

// Handler handles LINE webhook events.
type Handler struct {
	channelSecret string
	client        LineAPI
	store         state.Store
	dispatcher    *bot.Dispatcher
	userLimiter   *ratelimit.UserLimiter
	apiLimiter    *ratelimit.Limiter // paces outbound LINE API calls
	metrics       *metrics.Metrics
	log           *logger.Logger
	wg            sync.WaitGroup

	webhookTimeout      time.Duration
	maxMessagesPerReply int
	maxEventsPerWebhook int
	minReplyTokenLength int
	maxPostbackDataSize int
}

// HandlerConfig holds configuration for creating a new Handler.
// Client may be left nil to build one from ChannelToken.
type HandlerConfig struct {
	ChannelSecret string
	ChannelToken  string
	Client        LineAPI
	Store         state.Store
	Dispatcher    *bot.Dispatcher
	UserLimiter   *ratelimit.UserLimiter
	BotConfig     *config.BotConfig
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	client := cfg.Client
	if client == nil {
		api, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken)
		if err != nil {
			return nil, fmt.Errorf("create messaging API client: %w", err)
		}
		client = api
	}

	return &Handler{
		channelSecret:       cfg.ChannelSecret,
		client:              client,
		store:               cfg.Store,
		dispatcher:          cfg.Dispatcher,
		userLimiter:         cfg.UserLimiter,
		apiLimiter:          ratelimit.New(cfg.BotConfig.GlobalRateRPS, cfg.BotConfig.GlobalRateRPS),
		metrics:             cfg.Metrics,
		log:                 cfg.Logger.WithModule("webhook"),
		webhookTimeout:      cfg.BotConfig.WebhookTimeout,
		maxMessagesPerReply: cfg.BotConfig.MaxMessagesPerReply,
		maxEventsPerWebhook: cfg.BotConfig.MaxEventsPerWebhook,
		minReplyTokenLength: cfg.BotConfig.MinReplyTokenLength,
		maxPostbackDataSize: cfg.BotConfig.MaxPostbackDataSize,
	}, nil
}

// Handle is the gin handler for the webhook endpoint. The platform
// always gets 200 OK: signature and processing failures are logged,
// never surfaced to LINE.
func (h *Handler) Handle(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)

	c.String(http.StatusOK, "OK")

	if err != nil {
		h.log.WithError(err).Warn("Rejected webhook request")
		h.metrics.RecordHTTPError("parse", "webhook")
		return
	}

	start := time.Now()

	if len(cb.Events) > h.maxEventsPerWebhook {
		h.log.WithField("event_count", len(cb.Events)).Warn("Too many events in webhook batch; truncating")
		cb.Events = cb.Events[:h.maxEventsPerWebhook]
	}

	// Copy events so processing never races the returned HTTP response.
	events := make([]webhook.EventInterface, len(cb.Events))
	copy(events, cb.Events)

	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.log.WithField("panic", r).Error("Panic in async event processing")
				sentry.CaptureMessage(fmt.Sprintf("webhook panic: %v", r))
			}
		}()

		for _, event := range events {
			h.processEvent(event, start)
		}
	})
}

// Shutdown waits for in-flight event processing to finish.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) processEvent(event webhook.EventInterface, batchStart time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), h.webhookTimeout)
	defer cancel()

	eventStart := time.Now()
	var eventType string
	var err error

	switch e := event.(type) {
	case webhook.MessageEvent:
		eventType = "message"
		err = h.handleMessage(ctx, e)
	case webhook.PostbackEvent:
		eventType = "postback"
		err = h.handlePostback(ctx, e)
	case webhook.FollowEvent:
		eventType = "follow"
		err = h.handleFollow(ctx, e)
	case webhook.UnfollowEvent:
		eventType = "unfollow"
		h.handleUnfollow(ctx, e)
	default:
		h.log.WithField("event_type", fmt.Sprintf("%T", e)).Debug("Unsupported event type")
		return
	}

	status := "success"
	if err != nil {
		status = "error"
		h.log.WithError(err).WithField("event_type", eventType).Error("Failed to handle event")
		sentry.CaptureException(err)
	}
	h.metrics.RecordWebhook(eventType, status, time.Since(eventStart).Seconds())

	h.log.WithField("event_type", eventType).
		WithField("event_duration_ms", time.Since(eventStart).Milliseconds()).
		WithField("batch_duration_ms", time.Since(batchStart).Milliseconds()).
		Info("Event processed")
}

func (h *Handler) handleMessage(ctx context.Context, e webhook.MessageEvent) error {
	userID := bot.GetUserID(e.Source)
	if userID == "" {
		return nil
	}

	textMsg, ok := e.Message.(webhook.TextMessageContent)
	if !ok {
		return nil // only text messages drive the conversation
	}

	if !h.userLimiter.Allow(userID) {
		h.log.WithUserID(shortID(userID)).Warn("User rate limit exceeded, dropping event")
		return nil
	}

	return h.dispatch(ctx, userID, bot.TextInput{Text: textMsg.Text}, e.ReplyToken)
}

func (h *Handler) handlePostback(ctx context.Context, e webhook.PostbackEvent) error {
	userID := bot.GetUserID(e.Source)
	if userID == "" {
		return nil
	}

	data := e.Postback.Data
	if data == "" || len(data) > h.maxPostbackDataSize {
		h.log.WithUserID(shortID(userID)).WithField("size", len(data)).Warn("Postback data out of bounds")
		return nil
	}

	if !h.userLimiter.Allow(userID) {
		h.log.WithUserID(shortID(userID)).Warn("User rate limit exceeded, dropping event")
		return nil
	}

	return h.dispatch(ctx, userID, bot.ButtonInput{Data: data}, e.ReplyToken)
}

// dispatch runs one event through the state machine and delivers the
// resulting messages.
func (h *Handler) dispatch(ctx context.Context, userID string, input bot.Input, replyToken string) error {
	conv, err := h.loadOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	res, dispatchErr := h.dispatcher.Dispatch(ctx, conv, input)
	if res != nil {
		if err := h.sendReply(ctx, replyToken, res.Reply); err != nil {
			h.log.WithError(err).WithUserID(shortID(userID)).Error("Failed to send reply")
		}
		h.sendPushes(ctx, userID, res.Pushes)
	}
	return dispatchErr
}

func (h *Handler) handleFollow(ctx context.Context, e webhook.FollowEvent) error {
	userID := bot.GetUserID(e.Source)
	if userID == "" {
		return nil
	}

	h.log.WithUserID(shortID(userID)).Info("New follower")

	if _, err := h.loadOrCreate(ctx, userID); err != nil {
		h.log.WithError(err).Warn("Failed to create conversation record on follow")
	}

	var displayName string
	if profile, err := h.client.GetProfile(userID); err != nil {
		h.log.WithError(err).Warn("Failed to fetch profile")
	} else if profile != nil {
		displayName = profile.DisplayName
	}

	return h.sendReply(ctx, e.ReplyToken, bot.WelcomeMessages(displayName))
}

// handleUnfollow deletes the conversation record, best effort.
func (h *Handler) handleUnfollow(ctx context.Context, e webhook.UnfollowEvent) {
	userID := bot.GetUserID(e.Source)
	if userID == "" {
		return
	}

	h.log.WithUserID(shortID(userID)).Info("User unfollowed")
	if err := h.store.Delete(ctx, userID); err != nil {
		h.log.WithError(err).Warn("Failed to delete conversation record")
	}
}

// loadOrCreate returns the user's conversation record, creating the
// zero-value record on first contact.
func (h *Handler) loadOrCreate(ctx context.Context, userID string) (*state.Conversation, error) {
	conv, err := h.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv != nil {
		return conv, nil
	}

	conv = state.New(userID)
	if err := h.store.Insert(ctx, conv); err != nil {
		// A concurrent event may have created the record first.
		if existing, getErr := h.store.Get(ctx, userID); getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (h *Handler) sendReply(ctx context.Context, replyToken string, messages []messaging_api.MessageInterface) error {
	if len(messages) == 0 {
		return nil
	}

	if len(replyToken) < h.minReplyTokenLength {
		h.log.WithField("token_length", len(replyToken)).Debug("Invalid reply token, skipping reply")
		return nil
	}

	if len(messages) > h.maxMessagesPerReply {
		h.log.WithField("message_count", len(messages)).Warn("Message count exceeds reply limit; truncating")
		messages = messages[:h.maxMessagesPerReply]
	}

	if err := h.apiLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if _, err := h.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	}); err != nil {
		if strings.Contains(err.Error(), "Invalid reply token") {
			h.log.WithError(err).Debug("Reply token already used or expired")
			return nil
		}
		h.metrics.RecordMessageSent("reply", "error")
		return fmt.Errorf("reply message: %w", err)
	}
	h.metrics.RecordMessageSent("reply", "success")
	return nil
}

func (h *Handler) sendPushes(ctx context.Context, userID string, batches [][]messaging_api.MessageInterface) {
	for _, batch := range batches {
		if len(batch) == 0 {
			continue
		}
		if len(batch) > h.maxMessagesPerReply {
			batch = batch[:h.maxMessagesPerReply]
		}

		if err := h.apiLimiter.Wait(ctx); err != nil {
			h.log.WithError(err).Warn("Dropped push batch on rate limit wait")
			return
		}

		if _, err := h.client.PushMessage(&messaging_api.PushMessageRequest{
			To:       userID,
			Messages: batch,
		}, ""); err != nil {
			h.metrics.RecordMessageSent("push", "error")
			h.log.WithError(err).WithUserID(shortID(userID)).Error("Failed to push messages")
			continue
		}
		h.metrics.RecordMessageSent("push", "success")
	}
}

// shortID truncates a user ID for logging.
func shortID(userID string) string {
	if len(userID) > 8 {
		return userID[:8] + "..."
	}
	return userID
}
