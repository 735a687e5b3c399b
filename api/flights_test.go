package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights", nil)

	flights := []domain.Flight{{ID: 1, Code: "AI101", Origin: "DEL", Destination: "BOM", Capacity: 120, AvailableSeats: 80}}
	mockService.On("List", c.Request.Context()).Return(flights, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []domain.Flight
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 1)
	assert.Equal(t, "AI101", response[0].Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_get_NotFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "code", Value: "ZZ1"}}
	c.Request = httptest.NewRequest("GET", "/flights/ZZ1", nil)

	mockService.On("GetByCode", c.Request.Context(), "ZZ1").Return(nil, domain.ErrFlightNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func newFlightRouter(svc *MockFlightUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewFlightHandler(svc)
	h.Register(router.Group("/flights"))
	h.RegisterSearch(router)
	h.RegisterProviderFeed(router)
	return router
}

func TestFlightHandler_priceAndFares(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService)

	mockService.On("Quote", mock.Anything, "AI101").Return(&domain.Quote{FlightCode: "AI101", BaseFareCents: 10000, DynamicPriceCents: 13250}, nil).Once()
	mockService.On("FareHistory", mock.Anything, "AI101", 5).Return([]domain.FareChange{{ID: 1, NewPriceCents: 13250}}, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/flights/AI101/price", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dynamic_price_cents":13250`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/flights/AI101/fares?limit=5", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/flights/AI101/fares?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService)

	date := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	q := domain.FlightSearch{Origin: "DEL", Destination: "BOM", Date: date, Sort: domain.SortPrice}
	mockService.On("Search", mock.Anything, q).Return([]domain.FlightOffer{{Flight: domain.Flight{Code: "AI101"}, DynamicPriceCents: 9000}}, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/search?origin=DEL&destination=BOM&date=2030-01-02&sort=price", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dynamic_price_cents":9000`)

	empty := domain.FlightSearch{Origin: "DEL", Destination: "GOI"}
	mockService.On("Search", mock.Anything, empty).Return([]domain.FlightOffer{}, nil).Once()
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/search?origin=DEL&destination=GOI", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/search?date=02-01-2030", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_providerSchedule(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService)
	dep := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)

	mockService.On("GetByCode", mock.Anything, "ai101").Return(&domain.Flight{
		Code: "AI101", Origin: "DEL", Destination: "BOM", DepartureTime: dep, BaseFareCents: 450000, AvailableSeats: 17,
	}, nil).Once()
	mockService.On("GetByCode", mock.Anything, "ZZ9").Return(nil, domain.ErrFlightNotFound).Once()
	mockService.On("GetByCode", mock.Anything, "BAD1").Return(nil, errors.New("db down")).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/external_api/skyfeed/flights/ai101", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got providerScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "skyfeed", got.Provider)
	assert.Equal(t, "AI101", got.FlightCode)
	assert.Equal(t, "scheduled", got.Status)
	assert.Equal(t, 17, got.SeatsLeft)
	require.NotNil(t, got.DepartureTime)
	assert.True(t, dep.Equal(*got.DepartureTime))
	assert.Nil(t, got.ArrivalTime)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/external_api/skyfeed/flights/ZZ9", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"not_found"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/external_api/skyfeed/flights/BAD1", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	mockService.AssertExpectations(t)
}
