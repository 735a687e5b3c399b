package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/Domenick1991/airfare/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightCode    string `json:"flight_code"`
	PassengerName string `json:"passenger_name"`
	Contact       string `json:"contact"`
	SeatNumber    int    `json:"seat_number"`
}

type bookingResponse struct {
	ID            int64  `json:"id"`
	Locator       string `json:"locator,omitempty"`
	Status        string `json:"status"`
	FlightCode    string `json:"flight_code"`
	PassengerName string `json:"passenger_name"`
	Contact       string `json:"contact,omitempty"`
	SeatNumber    int    `json:"seat_number"`
	PriceCents    int64  `json:"price_cents"`
	CreatedAt     string `json:"created_at,omitempty"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:            b.ID,
		Locator:       b.Locator,
		Status:        string(b.Status),
		FlightCode:    b.FlightCode,
		PassengerName: b.PassengerName,
		Contact:       b.Contact,
		SeatNumber:    b.SeatNumber,
		PriceCents:    b.PriceCents,
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:ref", h.get)
	router.POST("/:ref/pay", h.pay)
	router.POST("/:ref/confirm", h.confirm)
	router.POST("/:ref/cancel", h.cancel)
}

// RegisterLegacy mounts the read-only view of the old reservations table.
func (h *BookingHandler) RegisterLegacy(router *gin.RouterGroup) {
	router.GET("/reservations", h.listLegacy)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightCode:    req.FlightCode,
		PassengerName: req.PassengerName,
		Contact:       req.Contact,
		SeatNumber:    req.SeatNumber,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) pay(c *gin.Context) {
	h.transition(c, h.service.PayBooking)
}

func (h *BookingHandler) confirm(c *gin.Context) {
	h.transition(c, h.service.ConfirmBooking)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	h.transition(c, h.service.CancelBooking)
}

func (h *BookingHandler) transition(c *gin.Context, op func(ctx context.Context, locator string) (*domain.Booking, error)) {
	b, err := op(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) list(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	bookings, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) listLegacy(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	reservations, err := h.service.ListLegacyReservations(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	if reservations == nil {
		reservations = []domain.LegacyReservation{}
	}
	c.JSON(http.StatusOK, reservations)
}

func bindFilter(c *gin.Context) (domain.BookingFilter, bool) {
	filter := domain.BookingFilter{
		Locator:       c.Query("locator"),
		PassengerName: c.Query("passenger_name"),
		FlightCode:    strings.ToUpper(strings.TrimSpace(c.Query("flight_code"))),
		Origin:        c.Query("origin"),
		Destination:   c.Query("destination"),
	}
	if v := c.Query("id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badRequest(c, "invalid id")
			return filter, false
		}
		filter.ID = id
	}
	return filter, true
}
