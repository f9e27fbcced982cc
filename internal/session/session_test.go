package session

import "testing"

func TestMemoryLoginCurrent(t *testing.T) {
	m := NewMemory()

	s := m.Login("doc-1", RoleDoctor)
	if s.Token == "" {
		t.Fatal("Login() returned an empty token")
	}

	got, ok := m.Current(s.Token)
	if !ok {
		t.Fatal("Current() did not find the session")
	}
	if got.UserID != "doc-1" || got.Role != RoleDoctor {
		t.Errorf("Current() = %+v, want doc-1/doctor", got)
	}
}

func TestMemoryLogout(t *testing.T) {
	m := NewMemory()

	s := m.Login("sup-1", RoleSupporter)
	m.Logout(s.Token)

	if _, ok := m.Current(s.Token); ok {
		t.Error("session still resolvable after Logout")
	}

	// Logging out an unknown token is a no-op.
	m.Logout("no-such-token")
}

func TestMemoryTokensAreUnique(t *testing.T) {
	m := NewMemory()

	a := m.Login("p-1", RolePatient)
	b := m.Login("p-1", RolePatient)

	if a.Token == b.Token {
		t.Error("two logins produced the same token")
	}
}
