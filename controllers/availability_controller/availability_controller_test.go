package availability_controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("2025-03-10"))
	assert.ErrorIs(t, ValidateDate("10-03-2025"), ErrInvalidDate)
	assert.ErrorIs(t, ValidateDate("2025-3-10"), ErrInvalidDate)
	assert.ErrorIs(t, ValidateDate("2025-02-30"), ErrInvalidDate)
	assert.ErrorIs(t, ValidateDate("not-a-date"), ErrInvalidDate)
	assert.ErrorIs(t, ValidateDate(""), ErrInvalidDate)
}

func TestSubtractBooked(t *testing.T) {
	tests := []struct {
		name     string
		offered  []string
		booked   []string
		expected []string
	}{
		{
			name:     "removes booked slot",
			offered:  []string{"10:00", "11:00"},
			booked:   []string{"10:00"},
			expected: []string{"11:00"},
		},
		{
			name:     "nothing booked",
			offered:  []string{"10:00", "11:00"},
			booked:   nil,
			expected: []string{"10:00", "11:00"},
		},
		{
			name:     "everything booked",
			offered:  []string{"10:00", "11:00"},
			booked:   []string{"11:00", "10:00"},
			expected: []string{},
		},
		{
			name:     "booked slot not offered is ignored",
			offered:  []string{"10:00"},
			booked:   []string{"14:00"},
			expected: []string{"10:00"},
		},
		{
			name:     "ordering preserved",
			offered:  []string{"09:00", "14:00", "10:00"},
			booked:   []string{"14:00"},
			expected: []string{"09:00", "10:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SubtractBooked(tt.offered, tt.booked))
		})
	}
}

func performRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetAvailableSlotsMissingDate(t *testing.T) {
	ac := NewAvailabilityController(nil)
	r := gin.New()
	r.GET("/slots/available", ac.GetAvailableSlots)

	w := performRequest(r, http.MethodGet, "/slots/available", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAvailableSlotsBadDate(t *testing.T) {
	ac := NewAvailabilityController(nil)
	r := gin.New()
	r.GET("/slots/available", ac.GetAvailableSlots)

	w := performRequest(r, http.MethodGet, "/slots/available?date=03-10-2025", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveAvailabilityRejectsBadPayloads(t *testing.T) {
	ac := NewAvailabilityController(nil)
	r := gin.New()
	r.PUT("/admin/availability", ac.SaveAvailability)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "not-json"},
		{"empty object", `{}`},
		{"bad date key", `{"03-10-2025": ["10:00"]}`},
		{"duplicate slots", `{"2025-03-10": ["10:00", "10:00"]}`},
		{"empty slot label", `{"2025-03-10": [""]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(r, http.MethodPut, "/admin/availability", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
