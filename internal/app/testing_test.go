package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mood_checkin_bot/internal/domain/checkin"
	"mood_checkin_bot/internal/domain/gateway"
	idb "mood_checkin_bot/internal/infra/database"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// memRepo is an in-memory checkin.Repository for tests. It mirrors the
// Postgres repository's semantics, including its sentinel errors.
type memRepo struct {
	mu     sync.Mutex
	users  map[int64]*checkin.User
	days   map[int64]map[string]bool
	scores map[int64]map[string]map[string]int // user -> day -> slot -> score
	notes  map[int64][]checkin.Note
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:  make(map[int64]*checkin.User),
		days:   make(map[int64]map[string]bool),
		scores: make(map[int64]map[string]map[string]int),
		notes:  make(map[int64][]checkin.Note),
	}
}

func (r *memRepo) CreateUser(_ context.Context, u *checkin.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.users[u.TelegramID]; ok {
		*u = *existing
		return nil
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = u.JoinedAt
	stored := *u
	r.users[u.TelegramID] = &stored
	return nil
}

func (r *memRepo) GetByTelegramID(_ context.Context, telegramID int64) (*checkin.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[telegramID]
	if !ok {
		return nil, idb.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memRepo) ListUsers(_ context.Context) ([]*checkin.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []*checkin.User
	for _, u := range r.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *memRepo) EnsureDays(_ context.Context, telegramID int64, days []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.days[telegramID] == nil {
		r.days[telegramID] = make(map[string]bool)
	}
	for _, d := range days {
		r.days[telegramID][d] = true
	}
	return nil
}

func (r *memRepo) CountDays(_ context.Context, telegramID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.days[telegramID]), nil
}

func (r *memRepo) InsertScore(_ context.Context, telegramID int64, day, slot string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.days[telegramID] == nil {
		r.days[telegramID] = make(map[string]bool)
	}
	r.days[telegramID][day] = true
	if r.scores[telegramID] == nil {
		r.scores[telegramID] = make(map[string]map[string]int)
	}
	if r.scores[telegramID][day] == nil {
		r.scores[telegramID][day] = make(map[string]int)
	}
	if _, ok := r.scores[telegramID][day][slot]; ok {
		return idb.ErrDuplicateSlot
	}
	r.scores[telegramID][day][slot] = score
	return nil
}

func (r *memRepo) HasScore(_ context.Context, telegramID int64, day, slot string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.scores[telegramID][day][slot]
	return ok, nil
}

func (r *memRepo) ScoresForDay(_ context.Context, telegramID int64, day string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int)
	for slot, score := range r.scores[telegramID][day] {
		out[slot] = score
	}
	return out, nil
}

func (r *memRepo) RecentDays(_ context.Context, telegramID int64, limit int) ([]checkin.DayScores, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var days []string
	for d := range r.days[telegramID] {
		days = append(days, d)
	}
	sort.Strings(days)
	if len(days) > limit {
		days = days[len(days)-limit:]
	}
	var out []checkin.DayScores
	for _, d := range days {
		ds := checkin.DayScores{Day: d, Scores: make(map[string]int)}
		for slot, score := range r.scores[telegramID][d] {
			ds.Scores[slot] = score
		}
		out = append(out, ds)
	}
	return out, nil
}

func (r *memRepo) ListReports(_ context.Context, telegramID int64) ([]checkin.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reports []checkin.Report
	for day, slots := range r.scores[telegramID] {
		for slot, score := range slots {
			reports = append(reports, checkin.Report{Day: day, Slot: slot, Score: score})
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Day != reports[j].Day {
			return reports[i].Day < reports[j].Day
		}
		return reports[i].Slot < reports[j].Slot
	})
	return reports, nil
}

func (r *memRepo) AppendNote(_ context.Context, telegramID int64, at time.Time, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[telegramID] = append(r.notes[telegramID], checkin.Note{
		ID:         int64(len(r.notes[telegramID]) + 1),
		TelegramID: telegramID,
		CreatedAt:  at,
		Body:       body,
	})
	return nil
}

func (r *memRepo) ListNotes(_ context.Context, telegramID int64) ([]checkin.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]checkin.Note(nil), r.notes[telegramID]...), nil
}

// fakeGateway records outbound commands and can simulate transport
// failures for chosen recipients.
type sentText struct {
	To   int64
	Text string
}

type fakeGateway struct {
	mu      sync.Mutex
	texts   []sentText
	images  []sentText // Text carries the caption
	menus   []sentText
	failFor map[int64]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failFor: make(map[int64]bool)}
}

func (g *fakeGateway) SendText(recipientID int64, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFor[recipientID] {
		return fmt.Errorf("transport down for %d", recipientID)
	}
	g.texts = append(g.texts, sentText{To: recipientID, Text: text})
	return nil
}

func (g *fakeGateway) SendImage(recipientID int64, _ []byte, caption string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFor[recipientID] {
		return fmt.Errorf("transport down for %d", recipientID)
	}
	g.images = append(g.images, sentText{To: recipientID, Text: caption})
	return nil
}

func (g *fakeGateway) SendMenu(recipientID int64, text string, _ gateway.Menu) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFor[recipientID] {
		return fmt.Errorf("transport down for %d", recipientID)
	}
	g.menus = append(g.menus, sentText{To: recipientID, Text: text})
	return nil
}

func (g *fakeGateway) textsTo(recipientID int64) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, t := range g.texts {
		if t.To == recipientID {
			out = append(out, t.Text)
		}
	}
	return out
}

func (g *fakeGateway) lastTextTo(recipientID int64) string {
	texts := g.textsTo(recipientID)
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// stubRenderer returns a fixed payload so conversation tests do not pull
// in the real chart drawing.
type stubRenderer struct{}

func (stubRenderer) RenderTrend(_ string, _ []TrendPoint) ([]byte, error) {
	return []byte("png-bytes"), nil
}
