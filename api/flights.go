package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/Domenick1991/airfare/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:code", h.get)
	router.GET("/:code/price", h.price)
	router.GET("/:code/fares", h.fares)
}

// RegisterSearch mounts the offer search, which lives outside /flights.
func (h *FlightHandler) RegisterSearch(router gin.IRoutes) {
	router.GET("/search", h.search)
}

// RegisterProviderFeed mounts the schedule view handed to partner providers.
func (h *FlightHandler) RegisterProviderFeed(router gin.IRoutes) {
	router.GET("/external_api/:provider/flights/:code", h.providerSchedule)
}

type providerScheduleResponse struct {
	Provider      string     `json:"provider"`
	FlightCode    string     `json:"flight_code"`
	Status        string     `json:"status"`
	Origin        string     `json:"origin,omitempty"`
	Destination   string     `json:"destination,omitempty"`
	DepartureTime *time.Time `json:"departure_time,omitempty"`
	ArrivalTime   *time.Time `json:"arrival_time,omitempty"`
	BaseFareCents int64      `json:"base_fare_cents,omitempty"`
	SeatsLeft     int        `json:"seats_left"`
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

// providerSchedule answers 200 with status not_found for unknown codes so
// partners can poll without treating misses as failures.
func (h *FlightHandler) providerSchedule(c *gin.Context) {
	resp := providerScheduleResponse{
		Provider:   c.Param("provider"),
		FlightCode: strings.ToUpper(c.Param("code")),
	}

	flight, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if errors.Is(err, domain.ErrFlightNotFound) {
		resp.Status = "not_found"
		c.JSON(http.StatusOK, resp)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	resp.Status = "scheduled"
	resp.Origin = flight.Origin
	resp.Destination = flight.Destination
	if !flight.DepartureTime.IsZero() {
		resp.DepartureTime = &flight.DepartureTime
	}
	if !flight.ArrivalTime.IsZero() {
		resp.ArrivalTime = &flight.ArrivalTime
	}
	resp.BaseFareCents = flight.BaseFareCents
	resp.SeatsLeft = flight.AvailableSeats
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) price(c *gin.Context) {
	quote, err := h.service.Quote(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *FlightHandler) fares(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	history, err := h.service.FareHistory(c.Request.Context(), c.Param("code"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *FlightHandler) search(c *gin.Context) {
	q := domain.FlightSearch{
		Origin:      strings.TrimSpace(c.Query("origin")),
		Destination: strings.TrimSpace(c.Query("destination")),
		Sort:        domain.FlightSort(c.Query("sort")),
	}
	if v := c.Query("date"); v != "" {
		date, err := time.Parse(time.DateOnly, v)
		if err != nil {
			badRequest(c, "date must be YYYY-MM-DD")
			return
		}
		q.Date = date
	}

	offers, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(offers) == 0 {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no flights match the search", Kind: domain.KindNotFound.String()})
		return
	}
	c.JSON(http.StatusOK, offers)
}
