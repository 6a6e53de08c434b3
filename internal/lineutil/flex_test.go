package lineutil

import (
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlexBubble(t *testing.T) {
	header := NewFlexBox("vertical", NewFlexText("h").FlexText)
	body := NewFlexBox("vertical", NewFlexText("b").FlexText)

	bubble := NewFlexBubble(header, nil, body, nil).WithSize("kilo")

	assert.Equal(t, messaging_api.FlexBubbleSIZE("kilo"), bubble.Size)
	assert.Same(t, header.FlexBox, bubble.Header)
	assert.Same(t, body.FlexBox, bubble.Body)
	assert.Nil(t, bubble.Footer)
}

func TestNewFlexCarouselCapsBubbles(t *testing.T) {
	bubbles := make([]messaging_api.FlexBubble, MaxBubblesPerCarousel+3)
	carousel := NewFlexCarousel(bubbles)
	assert.Len(t, carousel.Contents, MaxBubblesPerCarousel)
}

func TestFlexBoxFluent(t *testing.T) {
	box := NewFlexBox("vertical").
		WithSpacing("sm").
		WithMargin("md").
		WithBackgroundColor(ColorProgressBarTrack).
		WithWidth("42%").
		WithHeight("8px").
		WithPaddingAll("12px").
		WithPaddingTop("19px").
		WithPaddingBottom("16px").
		WithFlex(1)

	assert.Equal(t, "sm", box.Spacing)
	assert.Equal(t, "md", box.Margin)
	assert.Equal(t, ColorProgressBarTrack, box.BackgroundColor)
	assert.Equal(t, "42%", box.Width)
	assert.Equal(t, "8px", box.Height)
	assert.Equal(t, int32(1), box.Flex)
}

func TestFlexTextFluent(t *testing.T) {
	text := NewFlexText("7/15").
		WithColor(ColorWhite).
		WithSize("xs").
		WithAlign("start").
		WithGravity("center").
		WithMargin("lg").
		WithWrap(true).
		WithWeight("bold")

	assert.Equal(t, "7/15", text.Text)
	assert.Equal(t, ColorWhite, text.Color)
	assert.Equal(t, messaging_api.FlexTextALIGN("start"), text.Align)
	assert.Equal(t, messaging_api.FlexTextGRAVITY("center"), text.Gravity)
	assert.True(t, text.Wrap)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxRunes int
		want     string
	}{
		{"under limit", "hello", 10, "hello"},
		{"at limit", "hello", 5, "hello"},
		{"over limit", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"cjk runes counted not bytes", "量血壓次數統計", 5, "量血..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TruncateRunes(tt.text, tt.maxRunes))
		})
	}
}

func TestNewProgressBubbleLayout(t *testing.T) {
	bubble := NewProgressBubble("量血壓次數", "目前集點進度", 7, 15)

	require.NotNil(t, bubble.Header)
	assert.Equal(t, ColorProgressHeaderBg, bubble.Header.BackgroundColor)
	require.Len(t, bubble.Header.Contents, 3)

	title, ok := bubble.Header.Contents[0].(*messaging_api.FlexText)
	require.True(t, ok)
	assert.Equal(t, "量血壓次數", title.Text)

	ratio, ok := bubble.Header.Contents[1].(*messaging_api.FlexText)
	require.True(t, ok)
	assert.Equal(t, "7/15", ratio.Text)

	track, ok := bubble.Header.Contents[2].(*messaging_api.FlexBox)
	require.True(t, ok)
	assert.Equal(t, ColorProgressBarTrack, track.BackgroundColor)
	require.Len(t, track.Contents, 1)

	fill, ok := track.Contents[0].(*messaging_api.FlexBox)
	require.True(t, ok)
	assert.Equal(t, "46%", fill.Width)
	assert.Equal(t, ColorProgressBarFill, fill.BackgroundColor)
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name    string
		current int
		target  int
		want    int
	}{
		{"zero", 0, 15, 0},
		{"partial", 7, 15, 46},
		{"complete", 15, 15, 100},
		{"above target capped", 20, 15, 100},
		{"small target", 1, 2, 50},
		{"zero target", 3, 0, 0},
		{"negative current", -1, 15, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ProgressPercent(tt.current, tt.target))
		})
	}
}

func TestNewProgressMessage(t *testing.T) {
	msg := NewProgressMessage("集點進度", "集點券", "目前集點進度", 15, 15)

	assert.Equal(t, "集點進度", msg.AltText)
	carousel, ok := msg.Contents.(*messaging_api.FlexCarousel)
	require.True(t, ok)
	require.Len(t, carousel.Contents, 1)
	assert.Equal(t, messaging_api.FlexBubbleSIZE("kilo"), carousel.Contents[0].Size)
}
