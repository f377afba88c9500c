// Package memory implements every repository port in process memory. It
// backs STORE_DRIVER=memory and the service tests.
package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// Store holds all collections behind a single lock.
type Store struct {
	mu            sync.RWMutex
	accounts      map[string]domain.Account
	projects      map[string]domain.Project
	tasks         map[string]domain.Task
	notifications map[string]domain.Notification
	activity      []domain.ActivityEntry
	settings      *domain.Settings

	// failActivity makes activity appends fail; used to exercise best-effort logging.
	failActivity error
}

func NewStore() *Store {
	return &Store{
		accounts:      make(map[string]domain.Account),
		projects:      make(map[string]domain.Project),
		tasks:         make(map[string]domain.Task),
		notifications: make(map[string]domain.Notification),
	}
}

func (s *Store) Accounts() *AccountRepository           { return &AccountRepository{s: s} }
func (s *Store) Projects() *ProjectRepository           { return &ProjectRepository{s: s} }
func (s *Store) Tasks() *TaskRepository                 { return &TaskRepository{s: s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s: s} }
func (s *Store) Activity() *ActivityRepository          { return &ActivityRepository{s: s} }
func (s *Store) Settings() *SettingsRepository          { return &SettingsRepository{s: s} }

// FailActivityWith makes every subsequent activity append return err.
// Pass nil to restore normal behaviour.
func (s *Store) FailActivityWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failActivity = err
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func cloneMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// page slices items for a 1-based page. limit <= 0 returns everything.
func page[T any](items []T, pageNum, limit int) []T {
	if limit <= 0 {
		return items
	}
	if pageNum < 1 {
		pageNum = 1
	}
	start := (pageNum - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortNewestFirst[T any](items []T, created func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]) > created(items[j])
	})
}
