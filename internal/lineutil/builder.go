// Package lineutil provides utility functions for building LINE messages and actions.
package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// QuickReplyItem represents an item in a quick reply.
type QuickReplyItem struct {
	ImageURL string
	Action   messaging_api.ActionInterface
}

// Action is an alias for the LINE SDK action interface for convenience.
type Action = messaging_api.ActionInterface

// NewTextMessage creates a simple text message without sender information.
// LINE API limits: max 5000 characters per text message
func NewTextMessage(text string) *messaging_api.TextMessage {
	// Validate and truncate if necessary (LINE API limit: 5000 chars)
	if len(text) > MaxTextMessageLength {
		text = TruncateRunes(text, MaxTextMessageLength)
	}

	return &messaging_api.TextMessage{
		Text: text,
	}
}

// NewTextMessageWithSender creates a text message using a pre-created sender.
func NewTextMessageWithSender(text string, sender *messaging_api.Sender) *messaging_api.TextMessage {
	msg := NewTextMessage(text)
	msg.Sender = sender
	return msg
}

// NewButtonsTemplate creates a buttons template message.
// The altText is displayed in push notifications and chat lists.
// The title is the template title, text is the message content, and actions are the buttons.
// LINE API limits: max 4 actions, title max 40 chars, text max 160 chars
func NewButtonsTemplate(altText, title, text string, actions []Action) messaging_api.MessageInterface {
	// Validate action count (LINE API limit: max 4 actions)
	if len(actions) > MaxTemplateActionCount {
		actions = actions[:MaxTemplateActionCount]
	}

	if len(text) > MaxTemplateTextNoImage {
		text = TruncateRunes(text, MaxTemplateTextNoImage)
	}

	if len(title) > MaxTemplateTitleLength {
		title = TruncateRunes(title, MaxTemplateTitleLength)
	}

	if len(altText) > MaxAltTextLength {
		altText = TruncateRunes(altText, MaxAltTextLength)
	}

	template := &messaging_api.ButtonsTemplate{
		Text:    text,
		Actions: actions,
	}

	if title != "" {
		template.Title = title
	}

	return &messaging_api.TemplateMessage{
		AltText:  altText,
		Template: template,
	}
}

// NewConfirmTemplate creates a confirmation template with Yes/No buttons.
// The text is the confirmation question, yesAction and noAction are the button actions.
func NewConfirmTemplate(altText, text string, yesAction, noAction Action) messaging_api.MessageInterface {
	return &messaging_api.TemplateMessage{
		AltText: altText,
		Template: &messaging_api.ConfirmTemplate{
			Text:    text,
			Actions: []messaging_api.ActionInterface{yesAction, noAction},
		},
	}
}

// NewQuickReply creates a quick reply message component.
// Returns a QuickReply object that can be attached to text or template messages.
// LINE API limits: max 13 items
func NewQuickReply(items []QuickReplyItem) *messaging_api.QuickReply {
	// Validate item count (LINE API limit: max 13 items)
	if len(items) > MaxQuickReplyItemCount {
		items = items[:MaxQuickReplyItemCount]
	}

	quickReplyItems := make([]messaging_api.QuickReplyItem, len(items))

	for i, item := range items {
		qrItem := messaging_api.QuickReplyItem{
			Action: item.Action,
		}

		if item.ImageURL != "" {
			qrItem.ImageUrl = item.ImageURL
		}

		quickReplyItems[i] = qrItem
	}

	return &messaging_api.QuickReply{
		Items: quickReplyItems,
	}
}

// NewMessageAction creates a message action that sends a message when clicked.
// The label is displayed on the button, and text is the message that will be sent.
func NewMessageAction(label, text string) Action {
	return &messaging_api.MessageAction{
		Label: label,
		Text:  text,
	}
}

// NewPostbackAction creates a postback action that sends data to the bot when clicked.
// The label is displayed on the button, and data is sent as postback data.
func NewPostbackAction(label, data string) Action {
	return &messaging_api.PostbackAction{
		Label: label,
		Data:  data,
	}
}

// NewFlexMessage creates a flex message with the given alt text and flex container.
func NewFlexMessage(altText string, contents messaging_api.FlexContainerInterface) *messaging_api.FlexMessage {
	return &messaging_api.FlexMessage{
		AltText:  altText,
		Contents: contents,
	}
}

// SetSender sets the Sender field on a message.
// Returns the same message for method chaining.
// Supports: TextMessage, FlexMessage, TemplateMessage
func SetSender(msg messaging_api.MessageInterface, sender *messaging_api.Sender) messaging_api.MessageInterface {
	if sender == nil {
		return msg
	}

	switch m := msg.(type) {
	case *messaging_api.TextMessage:
		m.Sender = sender
	case *messaging_api.FlexMessage:
		m.Sender = sender
	case *messaging_api.TemplateMessage:
		m.Sender = sender
	}

	return msg
}

// GetSender returns the bot's display persona attached to outgoing messages.
func GetSender(name string) *messaging_api.Sender {
	return &messaging_api.Sender{
		Name: name,
	}
}
