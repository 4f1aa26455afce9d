package shared

// User-facing messages shown by the web and terminal views.
const (
	MsgEmptyQuery   = "Please enter a search term."
	MsgSearchFailed = "Search failed."
	MsgInvalidID    = "Invalid ID."
	MsgLoadFailed   = "Could not load song."
	MsgSaveFailed   = "Could not save favorites."
	MsgSendFailed   = "Could not send your message. Please try again."
)
