package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"plan-it/backend/internal/model"
	"plan-it/backend/internal/repository"
	pkgerrors "plan-it/backend/pkg/errors"
)

// ── Mock UserRepository ──
// 以副本读写，模拟真实存储：调用方修改返回值不会影响已保存的数据

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User

	// beforeUpdateVerification 在条件写入前调用，用于模拟并发修改
	beforeUpdateVerification func(stored *model.User)
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.EnsureDefaults(time.Now())
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) UpdateVerification(_ context.Context, id string, expectedVersion int, upd repository.VerificationUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return pkgerrors.ErrOptimisticLock
	}
	if m.beforeUpdateVerification != nil {
		m.beforeUpdateVerification(u)
	}
	if u.Version != expectedVersion {
		return pkgerrors.ErrOptimisticLock
	}
	verifiedBy := upd.VerifiedBy
	verifiedAt := upd.VerifiedAt
	u.VerificationStatus = upd.Status
	u.VerificationReason = upd.Reason
	u.VerifiedBy = &verifiedBy
	u.VerifiedAt = &verifiedAt
	u.Version++
	return nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id string, role model.Role, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	u.UpdatedBy = &updatedBy
	u.Version++
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, mustChange bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.MustChangePassword = mustChange
	return nil
}

func (m *mockUserRepo) MarkEmailVerified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsEmailVerified = true
	return nil
}

func (m *mockUserRepo) ListWithFilters(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []model.User
	for _, u := range m.users {
		if filters != nil {
			if filters.UserType != "" && u.UserType != filters.UserType {
				continue
			}
			if filters.Status != "" && u.VerificationStatus != filters.Status {
				continue
			}
			if kw := strings.ToLower(filters.Keyword); kw != "" &&
				!strings.Contains(strings.ToLower(u.Name), kw) &&
				!strings.Contains(u.Email, kw) &&
				!strings.Contains(strings.ToLower(u.VitapID), kw) {
				continue
			}
		}
		matched = append(matched, *u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Email < matched[j].Email })

	total := int64(len(matched))
	if offset >= len(matched) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockUserRepo) CountByTypeAndStatus(_ context.Context) ([]repository.UserTypeStatusCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type key struct {
		t model.UserType
		s model.VerificationStatus
	}
	counts := make(map[key]int64)
	for _, u := range m.users {
		counts[key{u.UserType, u.VerificationStatus}]++
	}
	var result []repository.UserTypeStatusCount
	for k, n := range counts {
		result = append(result, repository.UserTypeStatusCount{UserType: k.t, Status: k.s, Count: n})
	}
	return result, nil
}

func (m *mockUserRepo) CountAdmins(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Role.IsAdmin() || u.UserType == model.UserTypeAdmin {
			n++
		}
	}
	return n, nil
}

// ── Mock EmailVerificationRepository ──

type mockEmailVerificationRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.EmailVerification
}

func newMockEmailVerificationRepo() *mockEmailVerificationRepo {
	return &mockEmailVerificationRepo{tokens: make(map[string]*model.EmailVerification)}
}

func (m *mockEmailVerificationRepo) Create(_ context.Context, v *model.EmailVerification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.tokens[v.Token] = &cp
	return nil
}

func (m *mockEmailVerificationRepo) GetByToken(_ context.Context, token string) (*model.EmailVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.tokens[token]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockEmailVerificationRepo) MarkConsumed(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.tokens[token]
	if !ok || v.Consumed {
		return repository.ErrNotFound
	}
	v.Consumed = true
	return nil
}

func (m *mockEmailVerificationRepo) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.tokens {
		if v.UserID == userID && !v.Consumed {
			delete(m.tokens, k)
		}
	}
	return nil
}

// tokenFor 返回用户最近一个未使用的令牌
func (m *mockEmailVerificationRepo) tokenFor(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.tokens {
		if v.UserID == userID && !v.Consumed {
			return k
		}
	}
	return ""
}

// ── Mock InviteCodeRepository ──

type mockInviteCodeRepo struct {
	codes map[string]*model.InviteCode
}

func newMockInviteCodeRepo() *mockInviteCodeRepo {
	return &mockInviteCodeRepo{codes: make(map[string]*model.InviteCode)}
}

func (m *mockInviteCodeRepo) Create(_ context.Context, code *model.InviteCode) error {
	if code.InviteCodeID == "" {
		code.InviteCodeID = "inv-" + code.Code
	}
	cp := *code
	m.codes[code.Code] = &cp
	return nil
}

func (m *mockInviteCodeRepo) GetByCode(_ context.Context, code string) (*model.InviteCode, error) {
	if c, ok := m.codes[code]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockInviteCodeRepo) Claim(_ context.Context, code, usedBy string, now time.Time) (*model.InviteCode, error) {
	c, ok := m.codes[code]
	if !ok || !c.Usable(now) {
		return nil, repository.ErrNotFound
	}
	c.UsedAt = &now
	c.UsedBy = &usedBy
	cp := *c
	return &cp, nil
}

func (m *mockInviteCodeRepo) Release(_ context.Context, inviteCodeID string) error {
	for _, c := range m.codes {
		if c.InviteCodeID == inviteCodeID {
			c.UsedAt = nil
			c.UsedBy = nil
		}
	}
	return nil
}

// ── Mock StatsRepository ──

type mockStatsRepo struct {
	places   map[string]int64 // owner -> count
	vehicles map[string]int64
	reviews  int64
}

func newMockStatsRepo() *mockStatsRepo {
	return &mockStatsRepo{places: map[string]int64{}, vehicles: map[string]int64{}}
}

func sum(m map[string]int64) int64 {
	var n int64
	for _, v := range m {
		n += v
	}
	return n
}

func pick(m map[string]int64, ids []string) map[string]int64 {
	result := make(map[string]int64)
	for _, id := range ids {
		if n, ok := m[id]; ok {
			result[id] = n
		}
	}
	return result
}

func (m *mockStatsRepo) CountPlaces(context.Context) (int64, error)   { return sum(m.places), nil }
func (m *mockStatsRepo) CountVehicles(context.Context) (int64, error) { return sum(m.vehicles), nil }
func (m *mockStatsRepo) CountReviews(context.Context) (int64, error)  { return m.reviews, nil }

func (m *mockStatsRepo) CountPlacesByOwners(_ context.Context, ids []string) (map[string]int64, error) {
	return pick(m.places, ids), nil
}

func (m *mockStatsRepo) CountVehiclesByOwners(_ context.Context, ids []string) (map[string]int64, error) {
	return pick(m.vehicles, ids), nil
}

// ── Mock Mailer / Publisher ──

type sentMail struct {
	to, subject, body string
}

type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *mockMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type publishedEvent struct {
	routingKey string
	event      interface{}
}

type mockPublisher struct {
	events []publishedEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, routingKey string, event interface{}) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, publishedEvent{routingKey, event})
	return nil
}

func (m *mockPublisher) Close() error { return nil }
