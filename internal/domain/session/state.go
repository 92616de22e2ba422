package session

// Kind tags what input the conversation expects next from a user.
type Kind int

const (
	Idle Kind = iota
	AwaitingNote
	AwaitingAdminSecret
	AwaitingAdminQuery
	AwaitingBroadcastRecipients
	AwaitingBroadcastBody
)

// QueryKind distinguishes the admin sub-inputs that expect a user id.
type QueryKind int

const (
	QueryNone QueryKind = iota
	QueryGrantRole
	QueryRevokeRole
	QueryExportReports
	QueryExportNotes
	QuerySummaryStats
)

// State is the transient per-user conversation state. It lives only in
// process memory: a restart drops every pending exchange and users simply
// restart the action.
type State struct {
	Kind Kind

	// Query is set while Kind == AwaitingAdminQuery.
	Query QueryKind

	// Recipients carries the parsed id list between the two steps of the
	// broadcast-to flow (AwaitingBroadcastRecipients -> AwaitingBroadcastBody).
	// Empty while broadcasting to all users.
	Recipients []int64
}
