package services

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"deskbridge/internal/infrastructure/errors"
	"deskbridge/internal/repository"
	"deskbridge/internal/types"
)

// MockRepository implements CapabilityRepository in memory for testing
type MockRepository struct {
	mu         sync.Mutex
	recent     []int64 // newest first
	stars      []int64 // newest first
	shortcuts  []types.Shortcut
	options    map[string]types.Option
	nextID     int64
	readCalls  int
	writeCalls int
	failRead   bool
	failWrite  bool
}

var _ repository.CapabilityRepository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{options: make(map[string]types.Option)}
}

// SetFailureModes configures the mock to simulate busy reads or writes
func (m *MockRepository) SetFailureModes(read, write bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRead = read
	m.failWrite = write
}

// GetCallCounts returns the number of read and write calls
func (m *MockRepository) GetCallCounts() (reads, writes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readCalls, m.writeCalls
}

func (m *MockRepository) read(op string) error {
	m.readCalls++
	if m.failRead {
		return errors.NewRepositoryError(op, fmt.Errorf("mock read failure"), errors.ErrCodeBusy)
	}
	return nil
}

func (m *MockRepository) write(op string) error {
	m.writeCalls++
	if m.failWrite {
		return errors.NewRepositoryError(op, fmt.Errorf("mock write failure"), errors.ErrCodeBusy)
	}
	return nil
}

func (m *MockRepository) RecordRecent(ctx context.Context, capabilityID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write("RecordRecent"); err != nil {
		return err
	}
	m.recent = prepend(capabilityID, m.recent)
	return nil
}

func (m *MockRepository) ListRecent(ctx context.Context, limit int) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.read("ListRecent"); err != nil {
		return nil, err
	}
	return head(m.recent, limit), nil
}

func (m *MockRepository) AddStar(ctx context.Context, capabilityID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write("AddStar"); err != nil {
		return err
	}
	if !slices.Contains(m.stars, capabilityID) {
		m.stars = prepend(capabilityID, m.stars)
	}
	return nil
}

func (m *MockRepository) RemoveStar(ctx context.Context, capabilityID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write("RemoveStar"); err != nil {
		return err
	}
	i := slices.Index(m.stars, capabilityID)
	if i < 0 {
		return errors.HandleNotFound("RemoveStar", "star", fmt.Sprintf("%d", capabilityID))
	}
	m.stars = slices.Delete(m.stars, i, i+1)
	return nil
}

func (m *MockRepository) ListStarred(ctx context.Context, limit int) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.read("ListStarred"); err != nil {
		return nil, err
	}
	return head(m.stars, limit), nil
}

func (m *MockRepository) ListShortcuts(ctx context.Context) ([]types.Shortcut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.read("ListShortcuts"); err != nil {
		return nil, err
	}
	return append([]types.Shortcut{}, m.shortcuts...), nil
}

func (m *MockRepository) SaveShortcut(ctx context.Context, capabilityID int64, key string) (*types.Shortcut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write("SaveShortcut"); err != nil {
		return nil, err
	}
	for _, s := range m.shortcuts {
		if s.Key == key && s.CapabilityID != capabilityID {
			return nil, errors.HandleDuplicateError("SaveShortcut", "shortcut", "key", key)
		}
	}
	for i := range m.shortcuts {
		if m.shortcuts[i].CapabilityID == capabilityID {
			m.shortcuts[i].Key = key
			saved := m.shortcuts[i]
			return &saved, nil
		}
	}
	m.nextID++
	saved := types.Shortcut{ID: m.nextID, CapabilityID: capabilityID, Key: key}
	m.shortcuts = append(m.shortcuts, saved)
	return &saved, nil
}

func (m *MockRepository) ListOptions(ctx context.Context) ([]types.Option, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.read("ListOptions"); err != nil {
		return nil, err
	}
	out := make([]types.Option, 0, len(m.options))
	for _, o := range m.options {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRepository) SaveOptions(ctx context.Context, capabilityID int64, remark string, values map[string]string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	failures := make([]string, 0)
	for key, val := range values {
		if err := m.write("SaveOptions"); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		if o, ok := m.options[key]; ok {
			o.Val = val
			m.options[key] = o
			continue
		}
		m.nextID++
		m.options[key] = types.Option{ID: m.nextID, CapabilityID: capabilityID, Key: key, Val: val, Remark: remark}
	}
	sort.Strings(failures)
	return failures
}

func (m *MockRepository) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read("HealthCheck")
}

func prepend(id int64, ids []int64) []int64 {
	ids = slices.DeleteFunc(ids, func(v int64) bool { return v == id })
	return append([]int64{id}, ids...)
}

func head(ids []int64, limit int) []int64 {
	if limit <= 0 {
		limit = repository.DefaultListLimit
	}
	return append(make([]int64, 0, limit), ids[:min(limit, len(ids))]...)
}
