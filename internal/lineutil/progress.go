package lineutil

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// ProgressPercent converts current/target into a 0-100 bar width.
// Values past the target are capped so the bar never overflows its track.
func ProgressPercent(current, target int) int {
	if target <= 0 {
		return 0
	}
	percent := int(float64(current) / float64(target) * 100)
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}

// NewProgressBubble renders one collection card: a teal header with the
// counter title, a current/target line and a proportional bar, plus a gray
// caption body.
func NewProgressBubble(title, caption string, current, target int) *FlexBubble {
	percent := ProgressPercent(current, target)

	bar := NewFlexBox("vertical",
		NewFlexBox("vertical", NewFlexFiller()).
			WithWidth(fmt.Sprintf("%d%%", percent)).
			WithBackgroundColor(ColorProgressBarFill).
			WithHeight("8px").FlexBox,
	).
		WithBackgroundColor(ColorProgressBarTrack).
		WithHeight("8px").
		WithMargin("sm")

	header := NewFlexBox("vertical",
		NewFlexText(title).
			WithColor(ColorWhite).
			WithSize("md").
			WithAlign("start").
			WithGravity("center").FlexText,
		NewFlexText(fmt.Sprintf("%d/%d", current, target)).
			WithColor(ColorWhite).
			WithSize("xs").
			WithAlign("start").
			WithGravity("center").
			WithMargin("lg").FlexText,
		bar.FlexBox,
	).
		WithBackgroundColor(ColorProgressHeaderBg).
		WithPaddingAll("12px").
		WithPaddingTop("19px").
		WithPaddingBottom("16px")

	body := NewFlexBox("vertical",
		NewFlexText(caption).
			WithColor(ColorProgressBody).
			WithSize("sm").
			WithWrap(true).FlexText,
	).WithFlex(1)

	return NewFlexBubble(header, nil, body, nil).WithSize("kilo")
}

// NewProgressMessage wraps a single progress bubble in a carousel flex
// message, matching the card layout users see on their collection sheet.
func NewProgressMessage(altText, title, caption string, current, target int) *messaging_api.FlexMessage {
	bubble := NewProgressBubble(title, caption, current, target)
	carousel := NewFlexCarousel([]messaging_api.FlexBubble{*bubble.FlexBubble})
	return NewFlexMessage(altText, carousel)
}
