package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/angelmondragon/parkinglot-manager/api/views"
	"github.com/angelmondragon/parkinglot-manager/internal/auth"
	"github.com/angelmondragon/parkinglot-manager/internal/parkinglots"
	"github.com/angelmondragon/parkinglot-manager/internal/users"
	pkgAuth "github.com/angelmondragon/parkinglot-manager/pkg/auth"
	"github.com/angelmondragon/parkinglot-manager/pkg/config"
	"github.com/angelmondragon/parkinglot-manager/pkg/db"
	"github.com/angelmondragon/parkinglot-manager/pkg/db/models"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	"github.com/angelmondragon/parkinglot-manager/pkg/flash"
	"github.com/angelmondragon/parkinglot-manager/pkg/migrate"
	"github.com/angelmondragon/parkinglot-manager/pkg/security"
)

// recordingFlasher keeps queued messages in memory and never shows them.
type recordingFlasher struct {
	mu   sync.Mutex
	msgs []flash.Message
}

func (f *recordingFlasher) Add(w http.ResponseWriter, r *http.Request, msgs ...flash.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *recordingFlasher) Pop(w http.ResponseWriter, r *http.Request) ([]flash.Message, error) {
	return nil, nil
}

func (f *recordingFlasher) last() flash.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.msgs) == 0 {
		return flash.Message{}
	}
	return f.msgs[len(f.msgs)-1]
}

type countingMetrics struct {
	counts map[string]int
}

func (m *countingMetrics) IncMutation(op, outcome string) {
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[op+":"+outcome]++
}

type stubAuthService struct {
	result  *auth.LoginResult
	err     error
	revoked []string
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResult, error) {
	return s.result, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type testEnv struct {
	pages   Pages
	flasher *recordingFlasher
	users   users.Service
	lots    parkinglots.Service
	hasher  *security.PasswordHasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.Open(sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	require.NoError(t, migrate.AutoMigrate(context.Background(), conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	hasher := security.NewPasswordHasher(config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	userSvc, err := users.NewService(users.NewRepository(conn), hasher)
	require.NoError(t, err)
	lotSvc, err := parkinglots.NewService(parkinglots.ServiceParams{Repo: parkinglots.NewRepository(conn)})
	require.NoError(t, err)

	flasher := &recordingFlasher{}
	renderer, err := views.New(flasher, nil)
	require.NoError(t, err)

	return &testEnv{
		pages: Pages{
			Views:   renderer,
			Flash:   flasher,
			Session: config.SessionConfig{CookieName: "parking_session"},
		},
		flasher: flasher,
		users:   userSvc,
		lots:    lotSvc,
		hasher:  hasher,
	}
}

func (e *testEnv) registerUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.users.RegisterUser(context.Background(), users.RegisterInput{
		Username:  username,
		Password:  "secret1",
		Email:     username + "@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createLot(t *testing.T, name string, capacity int) *models.ParkingLot {
	t.Helper()
	lot, err := e.lots.CreateParkingLot(context.Background(), parkinglots.LotInput{
		LotName:  name,
		Location: "North",
		Capacity: capacity,
	})
	require.NoError(t, err)
	return lot
}

func asPrincipal(r *http.Request, user *models.User) *http.Request {
	if user == nil {
		return r
	}
	ctx := pkgAuth.WithPrincipal(r.Context(), pkgAuth.Principal{UserID: user.ID, Username: user.Username, Role: user.Role})
	return r.WithContext(ctx)
}

func lotManagerPrincipal(r *http.Request) *http.Request {
	ctx := pkgAuth.WithPrincipal(r.Context(), pkgAuth.Principal{UserID: 99, Username: "lotm", Role: enums.UserRoleLotManager})
	return r.WithContext(ctx)
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
