package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/service"
)

func TestUserHandlers_UpdateProfile(t *testing.T) {
	var got models.ProfileUpdate
	svc := &mockUserService{updateFn: func(_ context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
		got = upd
		if upd.Name != nil && *upd.Name == "" {
			return nil, service.ErrInvalidProfile
		}
		return &models.User{ID: userID, Name: *upd.Name}, nil
	}}
	h := NewUserHandlers(svc, zap.NewNop())

	body := `{"name":"Asha","evDetails":{"model":"Nexon EV","batteryCapacity":40.5}}`
	w := serve(h.UpdateProfile, withCaller(newRequest(http.MethodPut, "/api/users/profile", body), "u-1", ""))
	decode(t, w, http.StatusOK)
	if got.Name == nil || *got.Name != "Asha" || got.EVDetails == nil || got.EVDetails.BatteryCapacity != 40.5 || got.Email != nil {
		t.Errorf("update = %+v", got)
	}

	w = serve(h.UpdateProfile, withCaller(newRequest(http.MethodPut, "/api/users/profile", `{"name":""}`), "u-1", ""))
	wantErrorCode(t, w, http.StatusBadRequest, response.CodeInvalidInput)
}

func TestUserHandlers_SavedChargers(t *testing.T) {
	saved := []string{}
	svc := &mockUserService{
		saveFn: func(_ context.Context, _, chargerID string) ([]string, error) {
			if chargerID == "CB-404" {
				return nil, service.ErrChargerNotFound
			}
			saved = append(saved, chargerID)
			return saved, nil
		},
		unsaveFn: func(context.Context, string, string) ([]string, error) {
			saved = saved[:0]
			return saved, nil
		},
		listFn: func(context.Context, string) ([]string, error) { return saved, nil },
	}
	h := NewUserHandlers(svc, zap.NewNop())

	req := withURLParam(withCaller(newRequest(http.MethodPost, "/api/users/saved-chargers/CB-1", ""), "u-1", ""), "chargerId", "CB-1")
	env := decode(t, serve(h.SaveCharger, req), http.StatusOK)
	var data struct {
		SavedChargers []string `json:"savedChargers"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || !reflect.DeepEqual(data.SavedChargers, []string{"CB-1"}) {
		t.Errorf("saved = %v, %v", data.SavedChargers, err)
	}

	req = withURLParam(withCaller(newRequest(http.MethodPost, "/", ""), "u-1", ""), "chargerId", "CB-404")
	wantErrorCode(t, serve(h.SaveCharger, req), http.StatusNotFound, response.CodeChargerNotFound)

	req = withURLParam(withCaller(newRequest(http.MethodDelete, "/", ""), "u-1", ""), "chargerId", "CB-1")
	env = decode(t, serve(h.UnsaveCharger, req), http.StatusOK)
	if err := json.Unmarshal(env.Data, &data); err != nil || len(data.SavedChargers) != 0 {
		t.Errorf("after unsave = %s", env.Data)
	}

	decode(t, serve(h.SavedChargers, withCaller(newRequest(http.MethodGet, "/", ""), "u-1", "")), http.StatusOK)
}
