package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/ferdian3456/snapgram/internal/model"

	"github.com/bytedance/sonic"
)

var ErrNoSession = errors.New("client: no stored session")

type storedSession struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session owns the signed-in state of one client. Init restores it from the
// session file on start; SignOut tears it down and clears cached queries.
type Session struct {
	Queries *Queries
	Path    string

	mu   sync.RWMutex
	user *model.CurrentUserResponse
}

// NewSession keeps its token in the file at path.
func NewSession(queries *Queries, path string) *Session {
	return &Session{Queries: queries, Path: path}
}

// RequiresSignIn reports whether no session was stored, in which case the
// caller should show the sign-in screen without trying Init.
func (session *Session) RequiresSignIn() bool {
	stored, err := session.read()
	return err != nil || stored.AccessToken == ""
}

// Init restores the stored session and loads the current user. A token the
// server rejects is discarded.
func (session *Session) Init(ctx context.Context) error {
	stored, err := session.read()
	if err != nil || stored.AccessToken == "" {
		return ErrNoSession
	}

	session.Queries.Client.SetAccessToken(stored.AccessToken)

	err = session.loadUser(ctx)
	if err != nil {
		if IsUnauthorized(err) {
			session.clear()
		}
		return err
	}

	return nil
}

func (session *Session) SignUp(ctx context.Context, payload model.UserSignUpRequest) error {
	token, err := session.Queries.Client.SignUp(ctx, payload)
	if err != nil {
		return err
	}

	return session.start(ctx, token)
}

func (session *Session) SignIn(ctx context.Context, payload model.UserSignInRequest) error {
	token, err := session.Queries.Client.SignIn(ctx, payload)
	if err != nil {
		return err
	}

	return session.start(ctx, token)
}

// SignOut ends the server session and always clears local state, returning the
// server error if there was one.
func (session *Session) SignOut(ctx context.Context) error {
	err := session.Queries.Client.SignOut(ctx)
	session.clear()
	return err
}

func (session *Session) User() (model.CurrentUserResponse, bool) {
	session.mu.RLock()
	defer session.mu.RUnlock()

	if session.user == nil {
		return model.CurrentUserResponse{}, false
	}
	return *session.user, true
}

func (session *Session) IsAuthenticated() bool {
	_, ok := session.User()
	return ok
}

func (session *Session) start(ctx context.Context, token model.TokenResponse) error {
	session.Queries.Cache.Clear()

	err := session.write(storedSession{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken})
	if err != nil {
		return err
	}

	return session.loadUser(ctx)
}

func (session *Session) loadUser(ctx context.Context) error {
	user, err := session.Queries.GetCurrentUser(ctx)
	if err != nil {
		return err
	}

	session.mu.Lock()
	session.user = &user
	session.mu.Unlock()

	return nil
}

func (session *Session) clear() {
	session.Queries.Client.SetAccessToken("")
	session.Queries.Cache.Clear()
	_ = os.Remove(session.Path)

	session.mu.Lock()
	session.user = nil
	session.mu.Unlock()
}

func (session *Session) read() (storedSession, error) {
	var stored storedSession

	data, err := os.ReadFile(session.Path)
	if err != nil {
		return stored, err
	}

	err = sonic.Unmarshal(data, &stored)
	return stored, err
}

func (session *Session) write(stored storedSession) error {
	data, err := sonic.Marshal(stored)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(session.Path), 0o700)
	if err != nil {
		return err
	}

	return os.WriteFile(session.Path, data, 0o600)
}
