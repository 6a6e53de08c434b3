package lineutil

import (
	"math"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// FlexBubble wrapper
type FlexBubble struct {
	*messaging_api.FlexBubble
}

// NewFlexBubble creates a new Flex Bubble container
// Note: header, body, footer must be FlexBox or nil
func NewFlexBubble(header *FlexBox, hero messaging_api.FlexComponentInterface, body *FlexBox, footer *FlexBox) *FlexBubble {
	bubble := &messaging_api.FlexBubble{}
	if header != nil {
		bubble.Header = header.FlexBox
	}
	if hero != nil {
		bubble.Hero = hero
	}
	if body != nil {
		bubble.Body = body.FlexBox
	}
	if footer != nil {
		bubble.Footer = footer.FlexBox
	}
	return &FlexBubble{bubble}
}

// WithSize sets the bubble size (nano/micro/kilo/mega/giga).
func (b *FlexBubble) WithSize(size string) *FlexBubble {
	b.Size = messaging_api.FlexBubbleSIZE(size)
	return b
}

// MaxBubblesPerCarousel is the LINE API limit for Flex Carousel
const MaxBubblesPerCarousel = 10

// NewFlexCarousel creates a Flex Carousel from a slice of bubbles.
// LINE API limits carousels to 10 bubbles maximum.
func NewFlexCarousel(bubbles []messaging_api.FlexBubble) *messaging_api.FlexCarousel {
	if len(bubbles) > MaxBubblesPerCarousel {
		bubbles = bubbles[:MaxBubblesPerCarousel]
	}
	return &messaging_api.FlexCarousel{
		Contents: bubbles,
	}
}

// FlexBox wrapper for messaging_api.FlexBox with fluent API.
type FlexBox struct {
	*messaging_api.FlexBox
}

// NewFlexBox creates a new FlexBox with the specified layout and contents.
func NewFlexBox(layout string, contents ...messaging_api.FlexComponentInterface) *FlexBox {
	return &FlexBox{&messaging_api.FlexBox{
		Layout:   messaging_api.FlexBoxLAYOUT(layout),
		Contents: contents,
	}}
}

// WithSpacing sets the spacing between components.
func (b *FlexBox) WithSpacing(spacing string) *FlexBox {
	b.Spacing = spacing
	return b
}

// WithMargin sets the margin of the box.
func (b *FlexBox) WithMargin(margin string) *FlexBox {
	b.Margin = margin
	return b
}

// WithPaddingTop sets the top padding of the box.
func (b *FlexBox) WithPaddingTop(padding string) *FlexBox {
	b.PaddingTop = padding
	return b
}

// WithPaddingBottom sets the bottom padding of the box.
func (b *FlexBox) WithPaddingBottom(padding string) *FlexBox {
	b.PaddingBottom = padding
	return b
}

// WithPaddingAll sets the padding for all sides of the box.
func (b *FlexBox) WithPaddingAll(padding string) *FlexBox {
	b.PaddingAll = padding
	return b
}

// WithBackgroundColor sets the background color of the box.
func (b *FlexBox) WithBackgroundColor(color string) *FlexBox {
	b.BackgroundColor = color
	return b
}

// WithWidth sets an explicit width (px or percentage of the parent).
func (b *FlexBox) WithWidth(width string) *FlexBox {
	b.Width = width
	return b
}

// WithHeight sets an explicit height (px or percentage of the parent).
func (b *FlexBox) WithHeight(height string) *FlexBox {
	b.Height = height
	return b
}

// WithFlex sets the flex factor for the box.
func (b *FlexBox) WithFlex(flex int) *FlexBox {
	if flex < 0 {
		flex = 0
	}
	if flex > math.MaxInt32 {
		flex = math.MaxInt32
	}
	b.Flex = int32(flex)
	return b
}

// FlexText wrapper for messaging_api.FlexText with fluent API.
type FlexText struct {
	*messaging_api.FlexText
}

// NewFlexText creates a new FlexText with the specified text.
func NewFlexText(text string) *FlexText {
	return &FlexText{&messaging_api.FlexText{
		Text: text,
	}}
}

// WithWeight sets the font weight (regular/bold).
func (t *FlexText) WithWeight(weight string) *FlexText {
	t.Weight = messaging_api.FlexTextWEIGHT(weight)
	return t
}

// WithSize sets the font size.
func (t *FlexText) WithSize(size string) *FlexText {
	t.Size = size
	return t
}

// WithColor sets the text color.
func (t *FlexText) WithColor(color string) *FlexText {
	t.Color = color
	return t
}

// WithWrap enables or disables text wrapping.
func (t *FlexText) WithWrap(wrap bool) *FlexText {
	t.Wrap = wrap
	return t
}

// WithAlign sets the text alignment (start/end/center).
func (t *FlexText) WithAlign(align string) *FlexText {
	t.Align = messaging_api.FlexTextALIGN(align)
	return t
}

// WithGravity sets the vertical placement (top/bottom/center).
func (t *FlexText) WithGravity(gravity string) *FlexText {
	t.Gravity = messaging_api.FlexTextGRAVITY(gravity)
	return t
}

// WithMargin sets the margin of the text component.
func (t *FlexText) WithMargin(margin string) *FlexText {
	t.Margin = margin
	return t
}

// FlexSeparator wrapper for messaging_api.FlexSeparator with fluent API.
type FlexSeparator struct {
	*messaging_api.FlexSeparator
}

// NewFlexSeparator creates a new FlexSeparator.
func NewFlexSeparator() *FlexSeparator {
	return &FlexSeparator{&messaging_api.FlexSeparator{}}
}

// WithMargin sets the margin of the separator.
func (s *FlexSeparator) WithMargin(margin string) *FlexSeparator {
	s.Margin = margin
	return s
}

// NewFlexFiller creates an empty filler component used to stretch boxes.
func NewFlexFiller() *messaging_api.FlexFiller {
	return &messaging_api.FlexFiller{}
}

// TruncateRunes truncates text by rune count (not byte count) to properly handle UTF-8.
// Returns truncated string with "..." if exceeds maxRunes.
func TruncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
