package models

// ConversationState represents the state of the operator's conversation
type ConversationState int

const (
	// MainMenu is the initial state and the universal reset target
	MainMenu ConversationState = iota
	SelectingLanguage
	AwaitingUsername
	UserMenu
	AwaitingLimit
	AwaitingExpire
	NodeList
	ViewingLogs
	QRView
	SelectNodeRestart
	ConfirmDelete
	AwaitingNewUsername
	AwaitingDataLimit
	AwaitingExpireDays
	SelectingHwidOption
	AwaitingHwidValue
	SelectingSquads
	EditAllUsersMenu
	AwaitingBulkValue
	ConfirmBulkAction
	AwaitingHoursForUpdatedList
	SelectBulkHwidAction
	AwaitingBulkHwidValue
	AwaitingTimezoneSetting
	ExpiringUsersMenu
	AwaitingHwidEdit
	UserCreatedMenu
)

// EditField identifies which user-card field an edit prompt targets
type EditField int

const (
	EditNone EditField = iota
	EditLimit
	EditExpire
	EditHwid
)

// BulkKind identifies a bulk edit operation
type BulkKind string

const (
	BulkVolume BulkKind = "volume"
	BulkDate   BulkKind = "date"
	BulkHwid   BulkKind = "hwid"
)

// NewUserDraft accumulates the add-user flow input across turns
type NewUserDraft struct {
	Username          string
	TrafficLimitBytes int64
	ExpireAt          string
	HwidDeviceLimit   int
	AvailableSquads   []Squad
	SelectedSquads    map[string]bool
}

// BulkDraft accumulates the bulk-edit flow input across turns. Users is the
// frozen snapshot handed to the job runner on confirmation.
type BulkDraft struct {
	Kind  BulkKind
	Delta float64
	Users []User
}

// Session is the per-chat conversation state. Scratch fields are only valid
// within the states that declare them; Reset clears everything but the
// language override.
type Session struct {
	State ConversationState
	Lang  string

	NewUser     *NewUserDraft
	Bulk        *BulkDraft
	Username    string
	UserUUID    string
	UserRecord  *User
	CreatedUser *User
	Editing     EditField

	PromptMessageID     int
	EditPromptMessageID int
}

// Reset clears all scratch state and returns the session to the main menu
func (s *Session) Reset() {
	lang := s.Lang
	*s = Session{State: MainMenu, Lang: lang}
}
