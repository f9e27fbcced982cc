package session

import (
	"sync"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient   Role = "patient"
	RoleDoctor    Role = "doctor"
	RoleSupporter Role = "supporter"
)

type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// Provider is the injected session source the route guards consult. The slot
// logic never touches it directly.
type Provider interface {
	Login(userID string, role Role) Session
	Logout(token string)
	Current(token string) (Session, bool)
}

// Memory is an in-process token registry guarded for concurrent handlers.
type Memory struct {
	mu      sync.RWMutex
	byToken map[string]Session
}

func NewMemory() *Memory {
	return &Memory{byToken: make(map[string]Session)}
}

func (m *Memory) Login(userID string, role Role) Session {
	s := Session{
		Token:  uuid.NewString(),
		UserID: userID,
		Role:   role,
	}

	m.mu.Lock()
	m.byToken[s.Token] = s
	m.mu.Unlock()

	return s
}

func (m *Memory) Logout(token string) {
	m.mu.Lock()
	delete(m.byToken, token)
	m.mu.Unlock()
}

func (m *Memory) Current(token string) (Session, bool) {
	m.mu.RLock()
	s, ok := m.byToken[token]
	m.mu.RUnlock()

	return s, ok
}
