package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mood_checkin_bot/internal/domain/checkin"
	"mood_checkin_bot/internal/domain/gateway"
	"mood_checkin_bot/internal/domain/schedule"
	"mood_checkin_bot/internal/domain/session"
	idb "mood_checkin_bot/internal/infra/database"
)

// Renderer turns a trend series into an image. Chart drawing is a
// collaborator concern; the conversation only ships the bytes.
type Renderer interface {
	RenderTrend(title string, points []TrendPoint) ([]byte, error)
}

// Keyboard triggers. These are presentation strings, not state markers:
// the state machine itself is the tagged session.State.
const (
	cmdWeekly  = "Weekly report"
	cmdMonthly = "Monthly report"
	cmdNote    = "Clear my mind"
	cmdAdmin   = "/admin"
	cmdCancel  = "/cancel"

	menuListUsers     = "List users"
	menuStats         = "User stats"
	menuBroadcastAll  = "Broadcast to everyone"
	menuBroadcastSome = "Broadcast to selected"
	menuGrant         = "Grant role"
	menuRevoke        = "Revoke role"
	menuExportReports = "Export reports"
	menuExportNotes   = "Export notes"
)

var mainMenu = gateway.Menu{
	{cmdWeekly, cmdMonthly},
	{cmdNote},
}

var adminMenu = gateway.Menu{
	{menuListUsers, menuStats},
	{menuBroadcastAll, menuBroadcastSome},
	{menuGrant, menuRevoke},
	{menuExportReports, menuExportNotes},
}

// ConversationService is the per-user finite-state machine. Every inbound
// message runs under the user's exclusive session lock, so transitions for
// one user never interleave; the store commit always happens before the
// outbound reply is attempted.
type ConversationService struct {
	checkins    *CheckinService
	admins      *AdminService
	sessions    *session.Store
	sched       *schedule.Schedule
	gw          gateway.Client
	renderer    Renderer
	chartWindow int
	logger      *logrus.Entry
	now         func() time.Time
}

func NewConversationService(
	checkins *CheckinService,
	admins *AdminService,
	sessions *session.Store,
	sched *schedule.Schedule,
	gw gateway.Client,
	renderer Renderer,
	chartWindow int,
	logger *logrus.Entry,
) *ConversationService {
	return &ConversationService{
		checkins:    checkins,
		admins:      admins,
		sessions:    sessions,
		sched:       sched,
		gw:          gw,
		renderer:    renderer,
		chartWindow: chartWindow,
		logger:      logger,
		now:         time.Now,
	}
}

// HandleStart registers the user (first contact sets the immutable join
// date) and shows the main keyboard.
func (c *ConversationService) HandleStart(ctx context.Context, telegramID int64, displayName string) {
	release := c.sessions.Acquire(telegramID)
	defer release()

	if _, err := c.checkins.EnsureUser(ctx, telegramID, displayName, c.now()); err != nil {
		c.logger.WithError(err).WithField("user_id", telegramID).Error("Failed to ensure user on /start")
		c.reply(telegramID, "Something went wrong, please try again later.")
		return
	}
	c.sessions.Reset(telegramID)
	c.sendMenu(telegramID, "Hi! I will ping you at the configured times of day; answer each ping with a score from 1 to 10.", mainMenu)
}

// HandleText routes one inbound message through the state machine.
func (c *ConversationService) HandleText(ctx context.Context, telegramID int64, displayName, text string) {
	release := c.sessions.Acquire(telegramID)
	defer release()

	now := c.now()
	text = strings.TrimSpace(text)

	if _, err := c.checkins.EnsureUser(ctx, telegramID, displayName, now); err != nil {
		c.logger.WithError(err).WithField("user_id", telegramID).Error("Failed to ensure user")
		c.reply(telegramID, "Something went wrong, please try again later.")
		return
	}

	st := c.sessions.Get(telegramID)
	switch st.Kind {
	case session.AwaitingNote:
		c.finishNote(ctx, telegramID, now, text)
	case session.AwaitingAdminSecret:
		c.finishElevation(telegramID, displayName, text)
	case session.AwaitingAdminQuery:
		c.finishAdminQuery(ctx, telegramID, st.Query, text)
	case session.AwaitingBroadcastRecipients:
		c.collectBroadcastRecipients(telegramID, text)
	case session.AwaitingBroadcastBody:
		c.finishBroadcast(ctx, telegramID, st.Recipients, text)
	default:
		c.handleIdle(ctx, telegramID, now, text)
	}
}

func (c *ConversationService) handleIdle(ctx context.Context, telegramID int64, now time.Time, text string) {
	switch text {
	case cmdCancel:
		c.sessions.Reset(telegramID)
		c.reply(telegramID, "Nothing pending.")
		return
	case cmdWeekly:
		c.sendTrend(ctx, telegramID, WeeklyRequiredDays, "Weekly mood")
		return
	case cmdMonthly:
		c.sendTrend(ctx, telegramID, MonthlyRequiredDays, "Monthly mood")
		return
	case cmdNote:
		c.sessions.Set(telegramID, session.State{Kind: session.AwaitingNote})
		c.reply(telegramID, "Go ahead, write whatever is on your mind. It stays private.")
		return
	case cmdAdmin:
		if c.admins.IsAdmin(telegramID) {
			c.sendMenu(telegramID, "Operator menu:", adminMenu)
			return
		}
		c.sessions.Set(telegramID, session.State{Kind: session.AwaitingAdminSecret})
		c.reply(telegramID, "Enter the operator secret.")
		return
	}

	if c.admins.IsAdmin(telegramID) && c.handleAdminMenu(ctx, telegramID, text) {
		return
	}

	if score, err := strconv.Atoi(text); err == nil {
		c.submitScore(ctx, telegramID, now, score)
		return
	}

	c.reply(telegramID, "Send a score from 1 to 10 during a check-in slot, or pick an option from the keyboard.")
}

// handleAdminMenu branches an operator's menu selection. Returns false
// when the text is not a menu item so Idle handling can continue.
func (c *ConversationService) handleAdminMenu(ctx context.Context, telegramID int64, text string) bool {
	switch text {
	case menuListUsers:
		c.sendUserList(ctx, telegramID)
	case menuStats:
		c.sessions.Set(telegramID, session.State{Kind: session.AwaitingAdminQuery, Query: session.QuerySummaryStats})
		c.reply(telegramID, "Send the user id.")
	case menuGrant:
		c.sessions.Set(telegramID, session.State{Kind: session.AwaitingAdminQuery, Query: session.QueryGrantRole})
		c.reply(telegramID, "Send the user id to grant the operator role to.")
	case menuRevoke:
		c.sessions.Set(telegramID, session.State{Kind: session.AwaitingAdminQuery, Query: session.QueryRevokeRole})
		c.reply(telegramID, "Send the user id to revoke the operator role from.")
	case menuExportReports:
		c.sessions.Set(telegramID, session.State{Kind: session.AwaitingAdminQuery, Query: session.QueryExportReports})
		c.reply(telegramID, "Send the user id.")
	case menuExportNotes:
		c.sessions.Set(telegramID, session.State{Kind: session.AwaitingAdminQuery, Query: session.QueryExportNotes})
		c.reply(telegramID, "Send the user id.")
	case menuBroadcastAll:
		c.sessions.Set(telegramID, session.State{Kind: session.AwaitingBroadcastBody})
		c.reply(telegramID, "Send the message to broadcast to every user.")
	case menuBroadcastSome:
		c.sessions.Set(telegramID, session.State{Kind: session.AwaitingBroadcastRecipients})
		c.reply(telegramID, "Send the recipient ids, separated by spaces or commas.")
	default:
		return false
	}
	return true
}

// submitScore enforces the chronological gate: an overdue earlier slot
// blocks recording a later one, and outside any slot hour numeric input
// is rejected outright.
func (c *ConversationService) submitScore(ctx context.Context, telegramID int64, now time.Time, score int) {
	day := now.Format(checkin.DayFormat)

	recorded, err := c.checkins.ScoresForDay(ctx, telegramID, day)
	if err != nil {
		c.logger.WithError(err).WithField("user_id", telegramID).Error("Failed to read day scores")
		c.reply(telegramID, "Something went wrong, please try again later.")
		return
	}

	pending := c.sched.PendingSlot(now, recorded)
	current := c.sched.SlotAt(now)

	if pending != nil && (current == nil || pending.Name != current.Name) {
		c.reply(telegramID, fmt.Sprintf("You still owe a score for %q. Record that one first.", pending.Name))
		return
	}
	if current == nil {
		c.reply(telegramID, "It is not check-in time right now. Wait for the next ping.")
		return
	}

	err = c.checkins.SubmitReport(ctx, telegramID, day, current.Name, score)
	switch err {
	case nil:
		c.reply(telegramID, "Recorded! See you at the next slot.")
	case ErrInvalidScore:
		c.reply(telegramID, "Scores go from 1 to 10.")
	case idb.ErrDuplicateSlot:
		c.reply(telegramID, fmt.Sprintf("You already recorded %q today.", current.Name))
	default:
		c.logger.WithError(err).WithField("user_id", telegramID).Error("Failed to record score")
		c.reply(telegramID, "Something went wrong, please try again later.")
	}
}

func (c *ConversationService) finishNote(ctx context.Context, telegramID int64, now time.Time, text string) {
	c.sessions.Reset(telegramID)
	if err := c.checkins.AppendNote(ctx, telegramID, now, text); err != nil {
		c.logger.WithError(err).WithField("user_id", telegramID).Error("Failed to append note")
		c.reply(telegramID, "Could not save that, please try again later.")
		return
	}
	c.reply(telegramID, "Saved. Mind cleared.")
}

func (c *ConversationService) finishElevation(telegramID int64, displayName, secret string) {
	c.sessions.Reset(telegramID)
	if err := c.admins.RequestElevation(telegramID, displayName, secret); err != nil {
		c.reply(telegramID, "That secret is not recognized.")
		return
	}
	c.reply(telegramID, "Request received. You will be notified once an operator approves it.")
}

func (c *ConversationService) finishAdminQuery(ctx context.Context, telegramID int64, query session.QueryKind, text string) {
	c.sessions.Reset(telegramID)

	targetID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		// Malformed operator input degrades to an empty result.
		c.reply(telegramID, "That is not a valid user id; nothing done.")
		return
	}

	switch query {
	case session.QueryGrantRole:
		if err := c.admins.Grant(telegramID, targetID); err != nil {
			c.replyAdminError(telegramID, err)
			return
		}
		c.reply(telegramID, fmt.Sprintf("Operator role granted to %d.", targetID))
		// Best effort; the grant itself already took effect.
		_ = c.gw.SendText(targetID, "You now hold the operator role. Use /admin for the menu.")
	case session.QueryRevokeRole:
		if err := c.admins.Revoke(telegramID, targetID); err != nil {
			c.replyAdminError(telegramID, err)
			return
		}
		c.reply(telegramID, fmt.Sprintf("Operator role revoked from %d.", targetID))
	case session.QueryExportReports:
		reports, err := c.admins.ExportReports(ctx, telegramID, targetID)
		if err != nil {
			c.replyAdminError(telegramID, err)
			return
		}
		c.reply(telegramID, formatReports(targetID, reports))
	case session.QueryExportNotes:
		notes, err := c.admins.ExportNotes(ctx, telegramID, targetID)
		if err != nil {
			c.replyAdminError(telegramID, err)
			return
		}
		c.reply(telegramID, formatNotes(targetID, notes))
	case session.QuerySummaryStats:
		stats, err := c.admins.Stats(ctx, telegramID, targetID)
		if err != nil {
			c.replyAdminError(telegramID, err)
			return
		}
		c.reply(telegramID, formatStats(stats))
	default:
		c.reply(telegramID, "Unknown query; nothing done.")
	}
}

func (c *ConversationService) collectBroadcastRecipients(telegramID int64, text string) {
	ids := parseIDList(text)
	if len(ids) == 0 {
		c.sessions.Reset(telegramID)
		c.reply(telegramID, "No valid recipient ids found; broadcast cancelled.")
		return
	}
	c.sessions.Set(telegramID, session.State{Kind: session.AwaitingBroadcastBody, Recipients: ids})
	c.reply(telegramID, fmt.Sprintf("Got %d recipients. Now send the message body.", len(ids)))
}

func (c *ConversationService) finishBroadcast(ctx context.Context, telegramID int64, recipients []int64, body string) {
	c.sessions.Reset(telegramID)
	result, err := c.admins.Broadcast(ctx, telegramID, recipients, body)
	if err != nil {
		c.replyAdminError(telegramID, err)
		return
	}
	c.reply(telegramID, fmt.Sprintf("Broadcast %s done: %d sent, %d failed out of %d.",
		result.BatchID, result.Sent, result.Failed, result.Attempted))
}

func (c *ConversationService) sendTrend(ctx context.Context, telegramID int64, requiredDays int, title string) {
	ok, remaining, err := c.checkins.Completeness(ctx, telegramID, requiredDays)
	if err != nil {
		c.logger.WithError(err).WithField("user_id", telegramID).Error("Failed to check completeness")
		c.reply(telegramID, "Something went wrong, please try again later.")
		return
	}
	if !ok {
		c.reply(telegramID, fmt.Sprintf("You need %d days of history for this report; %d more to go.", requiredDays, remaining))
		return
	}

	series, err := c.checkins.TrendSeries(ctx, telegramID, c.chartWindow)
	if err == ErrNoTrendData {
		c.reply(telegramID, "No scores recorded yet, nothing to chart.")
		return
	}
	if err != nil {
		c.logger.WithError(err).WithField("user_id", telegramID).Error("Failed to build trend series")
		c.reply(telegramID, "Something went wrong, please try again later.")
		return
	}

	img, err := c.renderer.RenderTrend(title, series)
	if err != nil {
		c.logger.WithError(err).WithField("user_id", telegramID).Error("Failed to render trend chart")
		c.reply(telegramID, "Could not draw the chart, please try again later.")
		return
	}
	if err := c.gw.SendImage(telegramID, img, title); err != nil {
		c.logger.WithError(err).WithField("user_id", telegramID).Error("Failed to send trend chart")
	}
}

func (c *ConversationService) sendUserList(ctx context.Context, telegramID int64) {
	users, err := c.admins.ListUsers(ctx, telegramID)
	if err != nil {
		c.replyAdminError(telegramID, err)
		return
	}
	if len(users) == 0 {
		c.reply(telegramID, "No users yet.")
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d users:\n", len(users)))
	for _, u := range users {
		sb.WriteString(fmt.Sprintf("%d  %s  joined %s\n", u.TelegramID, u.DisplayName, u.JoinedAt.Format(checkin.DayFormat)))
	}
	c.reply(telegramID, sb.String())
}

func (c *ConversationService) replyAdminError(telegramID int64, err error) {
	switch err {
	case ErrNotAuthorized:
		c.reply(telegramID, "You do not hold the operator role.")
	case idb.ErrUserNotFound:
		c.reply(telegramID, "No user with that id.")
	default:
		c.logger.WithError(err).WithField("user_id", telegramID).Error("Admin operation failed")
		c.reply(telegramID, "Something went wrong, please try again later.")
	}
}

func (c *ConversationService) reply(telegramID int64, text string) {
	if err := c.gw.SendText(telegramID, text); err != nil {
		c.logger.WithError(err).WithField("user_id", telegramID).Warn("Failed to send reply")
	}
}

func (c *ConversationService) sendMenu(telegramID int64, text string, menu gateway.Menu) {
	if err := c.gw.SendMenu(telegramID, text, menu); err != nil {
		c.logger.WithError(err).WithField("user_id", telegramID).Warn("Failed to send menu")
	}
}

func parseIDList(text string) []int64 {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	var ids []int64
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			continue // skip malformed entries rather than failing the batch
		}
		ids = append(ids, id)
	}
	return ids
}

func formatReports(telegramID int64, reports []checkin.Report) string {
	if len(reports) == 0 {
		return fmt.Sprintf("User %d has no recorded scores.", telegramID)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scores for %d:\n", telegramID))
	for _, r := range reports {
		sb.WriteString(fmt.Sprintf("%s %s: %d\n", r.Day, r.Slot, r.Score))
	}
	return sb.String()
}

func formatNotes(telegramID int64, notes []checkin.Note) string {
	if len(notes) == 0 {
		return fmt.Sprintf("User %d has no notes.", telegramID)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Notes for %d:\n", telegramID))
	for _, n := range notes {
		// One line per entry: [timestamp] text
		sb.WriteString(fmt.Sprintf("[%s] %s\n", n.CreatedAt.Format("2006-01-02 15:04"), n.Body))
	}
	return sb.String()
}

func formatStats(stats *SummaryStats) string {
	return fmt.Sprintf("%s (id %d)\njoined: %s\ndays tracked: %d\nscores: %d\nmean score: %.1f\nnotes: %d",
		stats.User.DisplayName,
		stats.User.TelegramID,
		stats.User.JoinedAt.Format(checkin.DayFormat),
		stats.DayCount,
		stats.ScoreCount,
		stats.MeanScore,
		stats.NoteCount,
	)
}
