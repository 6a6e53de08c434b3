// Package lineutil provides LINE message building utilities.
package lineutil

// 4-Point Grid Spacing System
// All spacing values follow the 4-point grid for consistent visual rhythm.
const (
	SpacingNone = "none" // 0px
	SpacingXS   = "4px"  // Extra small
	SpacingS    = "8px"  // Small
	SpacingM    = "12px" // Medium
	SpacingL    = "16px" // Large
	SpacingXL   = "20px" // Extra large
	SpacingXXL  = "24px" // 2X large
)

// Color palette for message rendering.
// The teal progress colors match the clinic's printed collection card.
const (
	ColorWhite = "#FFFFFF" // Pure white
	ColorText  = "#111111" // Primary text (highest contrast)
	ColorLabel = "#666666" // Labels, captions (WCAG AA compliant)

	// Progress bar colors
	ColorProgressHeaderBg = "#27ACB2" // Header background teal
	ColorProgressBarFill  = "#0D8186" // Filled portion of the bar
	ColorProgressBarTrack = "#9FD8E3A0" // Unfilled track (translucent)
	ColorProgressBody     = "#8C8C8C" // Body caption gray
)
