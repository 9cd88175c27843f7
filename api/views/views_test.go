package views

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/parkinglot-manager/api/validators"
	pkgAuth "github.com/angelmondragon/parkinglot-manager/pkg/auth"
	"github.com/angelmondragon/parkinglot-manager/pkg/db/models"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	"github.com/angelmondragon/parkinglot-manager/pkg/flash"
	"github.com/stretchr/testify/require"
)

type stubFlasher struct {
	pending []flash.Message
}

func (s *stubFlasher) Add(_ http.ResponseWriter, _ *http.Request, msgs ...flash.Message) error {
	s.pending = append(s.pending, msgs...)
	return nil
}

func (s *stubFlasher) Pop(_ http.ResponseWriter, _ *http.Request) ([]flash.Message, error) {
	out := s.pending
	s.pending = nil
	return out, nil
}

func sampleLot() models.ParkingLot {
	lot := models.NewParkingLot("Lot A", "North", nil, 10, time.Now())
	lot.ID = 3
	return lot.WithOccupancy(7, time.Now())
}

func TestRenderEveryPage(t *testing.T) {
	r, err := New(nil, nil)
	require.NoError(t, err)

	user := &models.User{ID: 1, Username: "jdoe", FirstName: "John", LastName: "Doe", Email: "j@d.com", Role: enums.UserRoleUser}
	lot := sampleLot()
	lots := []models.ParkingLot{lot}

	pages := map[string]Page{
		PageIndex:            {},
		PageLogin:            {Form: validators.LoginForm{}},
		PageRegister:         {Form: validators.RegisterForm{}, Errors: map[string]string{"username": "Username is required"}},
		PageDashboard:        {Data: map[string]any{"user": user, "parkingLots": lots, "totalAvailableLots": 1}},
		PageForbidden:        {},
		PageError:            {Title: "Internal Server Error"},
		PageLotDashboard:     {Data: map[string]any{"parkingLots": lots, "totalLots": 1, "availableLots": 1, "maintenanceLots": 0, "closedLots": 0, "currentUser": "lotm"}},
		PageLotList:          {Data: map[string]any{"parkingLots": lots}},
		PageLotForm:          {Form: validators.LotForm{Status: "AVAILABLE"}, Data: map[string]any{"action": "/lot-manager/create-lot"}},
		PageLotDeleteConfirm: {Data: map[string]any{"parkingLot": lot}},
		PageLotDetails:       {Data: map[string]any{"parkingLot": lot}},
		PageProfile:          {Data: map[string]any{"user": user}},
		PageProfileEdit:      {Form: validators.ProfileForm{}, Data: map[string]any{"username": "jdoe"}},
		PageChangePassword:   {},
		PageProfileDelete:    {},
	}
	for name, page := range pages {
		rec := httptest.NewRecorder()
		r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, name, page)
		require.Equal(t, http.StatusOK, rec.Code, name)
		require.Contains(t, rec.Header().Get("Content-Type"), "text/html", name)
	}
}

func TestRenderShowsFlashAndPrincipal(t *testing.T) {
	flasher := &stubFlasher{pending: []flash.Message{flash.Success("Parking lot created successfully!")}}
	r, err := New(flasher, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(pkgAuth.WithPrincipal(req.Context(), pkgAuth.Principal{UserID: 2, Username: "lotm", Role: enums.UserRoleLotManager}))
	rec := httptest.NewRecorder()
	r.Render(rec, req, http.StatusOK, PageLotList, Page{
		Messages: []flash.Message{flash.Error("inline")},
		Data:     map[string]any{"parkingLots": []models.ParkingLot{sampleLot()}},
	})

	body := rec.Body.String()
	require.Contains(t, body, "Parking lot created successfully!")
	require.Contains(t, body, "msg-error")
	require.Contains(t, body, "/lot-manager/dashboard")
	require.Contains(t, body, "70.0%")
	require.Empty(t, flasher.pending)
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New(nil, nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "missing", Page{})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestForbiddenStatus(t *testing.T) {
	r, err := New(nil, nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	r.Forbidden(rec, httptest.NewRequest(http.MethodGet, "/lot-manager/lots", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "Access denied")
}

func TestPercent(t *testing.T) {
	require.Equal(t, "70.0%", percent(70))
	require.Equal(t, "33.3%", percent(100.0/3))
	require.Equal(t, "0.0%", percent(0))
}
