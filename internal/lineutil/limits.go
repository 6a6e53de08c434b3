package lineutil

// LINE API Character Limits (Rune count)
// References: https://developers.line.biz/en/reference/messaging-api/
const (
	MaxTextMessageLength = 5000 // Text message max content length
	MaxAltTextLength     = 400  // Template/Flex message alt text length
	MaxPostbackData      = 300  // Postback action data length

	// Template Message Limits
	MaxTemplateTitleLength = 40  // Buttons template title
	MaxTemplateTextNoImage = 160 // Buttons template text without image
	MaxTemplateActionCount = 4   // Max actions per template

	// Flex Message Limits
	MaxFlexCarouselBubbleCount = 12 // Max bubbles in a Flex carousel

	// Quick Reply Limits
	MaxQuickReplyItemCount = 13 // Max items in a quick reply
)
