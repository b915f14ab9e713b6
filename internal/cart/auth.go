package cart

import "sync"

// AuthContext est injecté dans le Store ; Subscribe remplace les écouteurs
// globaux : le Store est prévenu explicitement des connexions/déconnexions.
type AuthContext interface {
	IsAuthenticated() bool
	Subscribe(fn func(authenticated bool)) (unsubscribe func())
}

// SessionAuth est un AuthContext modifiable qui notifie ses abonnés
type SessionAuth struct {
	mu            sync.Mutex
	authenticated bool
	subscribers   map[int]func(bool)
	nextID        int
}

func NewSessionAuth(authenticated bool) *SessionAuth {
	return &SessionAuth{authenticated: authenticated, subscribers: map[int]func(bool){}}
}

func (a *SessionAuth) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authenticated
}

func (a *SessionAuth) Subscribe(fn func(bool)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	a.subscribers[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subscribers, id)
	}
}

func (a *SessionAuth) SignIn()  { a.set(true) }
func (a *SessionAuth) SignOut() { a.set(false) }

func (a *SessionAuth) set(authenticated bool) {
	a.mu.Lock()
	if a.authenticated == authenticated {
		a.mu.Unlock()
		return
	}
	a.authenticated = authenticated
	subs := make([]func(bool), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		subs = append(subs, fn)
	}
	a.mu.Unlock()

	// appelés hors verrou : un abonné peut relire IsAuthenticated
	for _, fn := range subs {
		fn(authenticated)
	}
}
