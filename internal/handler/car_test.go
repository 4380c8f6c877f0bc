package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// invokeParam is invoke with a single path parameter set, for the routes
// that carry one (:id, :brand_id).
func invokeParam(t *testing.T, h echo.HandlerFunc, method, target, body string, userID uint64, name, value string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(name)
	c.SetParamValues(value)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	require.NoError(t, h(c))
	return rec
}

const carBody = `{
	"brand_id": 1, "model_id": 2,
	"registrationNumber": "WA12345",
	"firstRegistrationDate": "2019-05-20",
	"icon": "sedan"
}`

func TestAddCar(t *testing.T) {
	cars := newFakeCarStore()
	h := NewCarHandler(cars, nil)

	rec := invoke(t, h.Add, http.MethodPost, "/api/cars", carBody, 5)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"message":"Car added successfully"}`, rec.Body.String())

	stored := cars.cars[1]
	require.Equal(t, uint64(5), stored.UserID)
	require.Equal(t, "WA12345", stored.RegistrationNumber)
	require.Equal(t, time.Date(2019, 5, 20, 0, 0, 0, 0, time.UTC), stored.FirstRegistrationDate)
}

func TestAddCar_TimestampDateNormalized(t *testing.T) {
	cars := newFakeCarStore()
	h := NewCarHandler(cars, nil)

	body := strings.Replace(carBody, "2019-05-20", "2019-05-20T14:30:00Z", 1)
	rec := invoke(t, h.Add, http.MethodPost, "/api/cars", body, 5)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = invoke(t, h.List, http.MethodGet, "/api/cars", "", 5)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"firstRegistrationDate":"2019-05-20"`)
}

func TestAddCar_InvalidDate(t *testing.T) {
	h := NewCarHandler(newFakeCarStore(), nil)

	body := strings.Replace(carBody, "2019-05-20", "20/05/2019", 1)
	rec := invoke(t, h.Add, http.MethodPost, "/api/cars", body, 5)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"message":"invalid firstRegistrationDate"}`, rec.Body.String())
}

func TestUpdateCar_OwnershipScoped(t *testing.T) {
	cars := newFakeCarStore()
	h := NewCarHandler(cars, nil)
	invoke(t, h.Add, http.MethodPost, "/api/cars", carBody, 5)

	update := `{
		"id": 1, "brand_id": 2, "model_id": 3,
		"registrationNumber": "KR99999",
		"firstRegistrationDate": "2021-01-01"
	}`

	// A different user gets the same 404 as a missing car, and the row
	// stays untouched.
	rec := invoke(t, h.Update, http.MethodPut, "/api/cars", update, 6)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"message":"Car not found or not authorized"}`, rec.Body.String())
	require.Equal(t, "WA12345", cars.cars[1].RegistrationNumber)

	// The owner succeeds.
	rec = invoke(t, h.Update, http.MethodPut, "/api/cars", update, 5)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Car updated successfully"}`, rec.Body.String())
	require.Equal(t, "KR99999", cars.cars[1].RegistrationNumber)
}

// Submitting the edit form without touching a field is a no-op update; the
// owner must still get a 200, not a 404.
func TestUpdateCar_UnchangedValues(t *testing.T) {
	cars := newFakeCarStore()
	h := NewCarHandler(cars, nil)
	invoke(t, h.Add, http.MethodPost, "/api/cars", carBody, 5)

	same := `{
		"id": 1, "brand_id": 1, "model_id": 2,
		"registrationNumber": "WA12345",
		"firstRegistrationDate": "2019-05-20",
		"icon": "sedan"
	}`
	rec := invoke(t, h.Update, http.MethodPut, "/api/cars", same, 5)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Car updated successfully"}`, rec.Body.String())
}

func TestDeleteCar(t *testing.T) {
	cars := newFakeCarStore()
	h := NewCarHandler(cars, nil)
	invoke(t, h.Add, http.MethodPost, "/api/cars", carBody, 5)

	// Foreign owner and nonexistent id both read as 404.
	rec := invokeParam(t, h.Delete, http.MethodDelete, "/api/cars/1", "", 6, "id", "1")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"message":"Car not found or not authorized"}`, rec.Body.String())

	rec = invokeParam(t, h.Delete, http.MethodDelete, "/api/cars/999", "", 5, "id", "999")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = invokeParam(t, h.Delete, http.MethodDelete, "/api/cars/1", "", 5, "id", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Car deleted successfully"}`, rec.Body.String())
	require.Empty(t, cars.cars)
}

func TestDeleteCar_BadID(t *testing.T) {
	h := NewCarHandler(newFakeCarStore(), nil)

	rec := invokeParam(t, h.Delete, http.MethodDelete, "/api/cars/abc", "", 5, "id", "abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"message":"invalid id"}`, rec.Body.String())
}

func TestListCars_PerUser(t *testing.T) {
	cars := newFakeCarStore()
	h := NewCarHandler(cars, nil)
	invoke(t, h.Add, http.MethodPost, "/api/cars", carBody, 5)
	other := strings.Replace(carBody, "WA12345", "GD55555", 1)
	invoke(t, h.Add, http.MethodPost, "/api/cars", other, 6)

	rec := invoke(t, h.List, http.MethodGet, "/api/cars", "", 5)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "WA12345")
	require.NotContains(t, body, "GD55555")
	// Brand and model ids come back resolved to names.
	require.Contains(t, body, `"brand":"Audi"`)
	require.Contains(t, body, `"model":"A4"`)
}

func TestListCars_EmptyIsArray(t *testing.T) {
	h := NewCarHandler(newFakeCarStore(), nil)

	rec := invoke(t, h.List, http.MethodGet, "/api/cars", "", 5)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestBrandsAndModels(t *testing.T) {
	h := NewCarHandler(newFakeCarStore(), nil)

	rec := invoke(t, h.Brands, http.MethodGet, "/api/cars/brands", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"id":1,"name":"Audi"},{"id":2,"name":"BMW"}]`, rec.Body.String())

	rec = invokeParam(t, h.Models, http.MethodGet, "/api/cars/models/1", "", 0, "brand_id", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"id":1,"brand_id":1,"name":"A3"},{"id":2,"brand_id":1,"name":"A4"}]`, rec.Body.String())

	// A brand with no models still yields an array.
	rec = invokeParam(t, h.Models, http.MethodGet, "/api/cars/models/42", "", 0, "brand_id", "42")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestParseRegistrationDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2019-05-20", want: time.Date(2019, 5, 20, 0, 0, 0, 0, time.UTC)},
		{in: "2019-05-20T14:30:00Z", want: time.Date(2019, 5, 20, 0, 0, 0, 0, time.UTC)},
		{in: "2019-05-20T23:59:59+00:00", want: time.Date(2019, 5, 20, 0, 0, 0, 0, time.UTC)},
		{in: "20/05/2019", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseRegistrationDate(tt.in)
		if tt.wantErr {
			require.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		require.True(t, got.Equal(tt.want), "input %q: got %v, want %v", tt.in, got, tt.want)
	}
}
