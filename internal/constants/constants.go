package constants

const (
	// Traffic constants
	BytesInGB = 1024 * 1024 * 1024

	// Panel API constants
	PanelRequestTimeout = 15 // seconds
	UsersPageSize       = 100

	// Node operation constants
	NodeLogsTimeout    = 10 // seconds
	NodeRestartTimeout = 90 // seconds
	NodeSidecarPort    = 5555

	// Session cache constants
	SessionExpiration      = 30 // minutes
	SessionCleanupInterval = 10 // minutes

	// Message constraints
	MaxLogLength     = 3800
	MaxCaptionLength = 1024
	MaxReportLength  = 4000

	// Legacy fallback expiry anchor, kept bit-for-bit compatible
	FallbackExpireHourUTC   = 18
	FallbackExpireMinuteUTC = 30

	// Formatting constants
	DateFormat     = "2006/01/02"
	DateTimeFormat = "2006-01-02 15:04"
)
