package bot

import "github.com/line/line-bot-sdk-go/v8/linebot/webhook"

// GetUserID extracts the user ID from a LINE event source.
// Returns empty string if the source type is unknown.
func GetUserID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	}
	return ""
}

// IsPersonalChat checks if the source is a personal (1-on-1) chat.
func IsPersonalChat(source webhook.SourceInterface) bool {
	_, ok := source.(webhook.UserSource)
	return ok
}
