package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mood_checkin_bot/internal/domain/checkin"
	"mood_checkin_bot/internal/domain/gateway"
)

// Custom application-level errors for admin operations
var ErrNotAuthorized = fmt.Errorf("performing user does not hold the operator role")
var ErrUnknownSecret = fmt.Errorf("supplied secret does not match")

// SummaryStats is the per-user usage digest an operator can request.
type SummaryStats struct {
	User       *checkin.User
	DayCount   int
	ScoreCount int
	MeanScore  float64
	NoteCount  int
}

// BroadcastResult tallies one broadcast batch. Individual send failures
// never abort the batch; they are counted and reported once at the end.
type BroadcastResult struct {
	BatchID   string
	Attempted int
	Sent      int
	Failed    int
}

// AdminService manages the privileged operator role and the operations
// gated on it. Role membership is process-lifetime only: the fixed
// super-admin always holds it, everyone else loses it on restart.
type AdminService struct {
	repo         checkin.Repository
	gw           gateway.Client
	superAdminID int64
	secret       string
	logger       *logrus.Entry

	mu     sync.Mutex
	admins map[int64]bool
}

func NewAdminService(repo checkin.Repository, gw gateway.Client, superAdminID int64, secret string, logger *logrus.Entry) *AdminService {
	return &AdminService{
		repo:         repo,
		gw:           gw,
		superAdminID: superAdminID,
		secret:       secret,
		logger:       logger,
		admins:       make(map[int64]bool),
	}
}

// IsAdmin reports whether a user currently holds the operator role.
func (s *AdminService) IsAdmin(telegramID int64) bool {
	if telegramID == s.superAdminID {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admins[telegramID]
}

// SuperAdminID returns the fixed super-admin identifier.
func (s *AdminService) SuperAdminID() int64 {
	return s.superAdminID
}

// RequestElevation handles a self-service elevation attempt. A correct
// secret only notifies the super-admin with a grant hint; the role is NOT
// granted until the super-admin (or another operator) issues the grant. A
// wrong secret is rejected with no side effect.
func (s *AdminService) RequestElevation(telegramID int64, displayName, secret string) error {
	if secret != s.secret {
		s.logger.WithField("user_id", telegramID).Warn("Elevation attempt with wrong secret")
		return ErrUnknownSecret
	}

	notice := fmt.Sprintf("%s (id %d) entered the operator secret and requests elevation. Use the admin menu (grant role) with id %d to approve.",
		displayName, telegramID, telegramID)
	if err := s.gw.SendText(s.superAdminID, notice); err != nil {
		// The request is still considered received; delivery is best effort.
		s.logger.WithError(err).Error("Failed to notify super-admin of elevation request")
	}
	s.logger.WithField("user_id", telegramID).Info("Elevation requested, awaiting grant")
	return nil
}

// Grant adds a user to the operator role. Idempotent.
func (s *AdminService) Grant(performingID, telegramID int64) error {
	if !s.IsAdmin(performingID) {
		return ErrNotAuthorized
	}
	s.mu.Lock()
	s.admins[telegramID] = true
	s.mu.Unlock()
	s.logger.WithFields(logrus.Fields{
		"granted_by": performingID,
		"user_id":    telegramID,
	}).Info("Operator role granted")
	return nil
}

// Revoke removes a user from the operator role. Idempotent.
func (s *AdminService) Revoke(performingID, telegramID int64) error {
	if !s.IsAdmin(performingID) {
		return ErrNotAuthorized
	}
	s.mu.Lock()
	delete(s.admins, telegramID)
	s.mu.Unlock()
	s.logger.WithFields(logrus.Fields{
		"revoked_by": performingID,
		"user_id":    telegramID,
	}).Info("Operator role revoked")
	return nil
}

// ListUsers returns every known user for operator inspection.
func (s *AdminService) ListUsers(ctx context.Context, performingID int64) ([]*checkin.User, error) {
	if !s.IsAdmin(performingID) {
		return nil, ErrNotAuthorized
	}
	return s.repo.ListUsers(ctx)
}

// Broadcast sends text to the given recipients, or to every known user
// when recipients is empty. It attempts all recipients regardless of
// individual failures and returns the tally.
func (s *AdminService) Broadcast(ctx context.Context, performingID int64, recipients []int64, text string) (*BroadcastResult, error) {
	if !s.IsAdmin(performingID) {
		return nil, ErrNotAuthorized
	}

	if len(recipients) == 0 {
		users, err := s.repo.ListUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list broadcast recipients: %w", err)
		}
		for _, u := range users {
			recipients = append(recipients, u.TelegramID)
		}
	}

	result := &BroadcastResult{BatchID: uuid.NewString(), Attempted: len(recipients)}
	batchLogger := s.logger.WithField("batch_id", result.BatchID)
	batchLogger.WithField("recipients", len(recipients)).Info("Broadcast started")

	for _, id := range recipients {
		if err := s.gw.SendText(id, text); err != nil {
			result.Failed++
			batchLogger.WithError(err).WithField("user_id", id).Warn("Broadcast send failed")
			continue
		}
		result.Sent++
	}

	batchLogger.WithFields(logrus.Fields{
		"sent":   result.Sent,
		"failed": result.Failed,
	}).Info("Broadcast finished")
	return result, nil
}

// ExportReports returns a user's full score history.
func (s *AdminService) ExportReports(ctx context.Context, performingID, telegramID int64) ([]checkin.Report, error) {
	if !s.IsAdmin(performingID) {
		return nil, ErrNotAuthorized
	}
	if _, err := s.repo.GetByTelegramID(ctx, telegramID); err != nil {
		return nil, err
	}
	return s.repo.ListReports(ctx, telegramID)
}

// ExportNotes returns a user's full note log.
func (s *AdminService) ExportNotes(ctx context.Context, performingID, telegramID int64) ([]checkin.Note, error) {
	if !s.IsAdmin(performingID) {
		return nil, ErrNotAuthorized
	}
	if _, err := s.repo.GetByTelegramID(ctx, telegramID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, telegramID)
}

// Stats computes the usage digest for one user.
func (s *AdminService) Stats(ctx context.Context, performingID, telegramID int64) (*SummaryStats, error) {
	if !s.IsAdmin(performingID) {
		return nil, ErrNotAuthorized
	}
	u, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	days, err := s.repo.CountDays(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to count days: %w", err)
	}
	reports, err := s.repo.ListReports(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	notes, err := s.repo.ListNotes(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	stats := &SummaryStats{User: u, DayCount: days, ScoreCount: len(reports), NoteCount: len(notes)}
	if len(reports) > 0 {
		sum := 0
		for _, r := range reports {
			sum += r.Score
		}
		stats.MeanScore = float64(sum) / float64(len(reports))
	}
	return stats, nil
}
