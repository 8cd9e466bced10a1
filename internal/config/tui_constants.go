package config

// Board layout constants.
const (
	// QuarterColumnWidth is the width of one quarter cell on the board.
	QuarterColumnWidth = 12

	// MinQuarterColumnWidth is the narrowest a quarter cell may shrink to.
	MinQuarterColumnWidth = 6

	// TeamColumnWidth is the width of the team label gutter.
	TeamColumnWidth = 16

	// CompactModeThreshold triggers compact rendering below this width.
	CompactModeThreshold = 60
)

// Display limits.
const (
	// MaxTimelineTabs limits timeline tabs shown in the header.
	MaxTimelineTabs = 8

	// TruncationSuffix appended to truncated strings.
	TruncationSuffix = "…"
)

// Input constraints.
const (
	// MaxNameLength is the maximum timeline, team or task name length.
	MaxNameLength = 80
)
