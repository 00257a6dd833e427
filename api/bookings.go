package api

import (
	"net/http"

	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/Domenick1991/astrobookings/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	PassengerName  string `json:"passengerName"`
	PassengerEmail string `json:"passengerEmail"`
}

type bookingResponse struct {
	ID             string  `json:"id"`
	FlightID       string  `json:"flightId"`
	PassengerName  string  `json:"passengerName"`
	PassengerEmail string  `json:"passengerEmail"`
	FinalPrice     float64 `json:"finalPrice"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts the booking routes under the flights group.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/:id/bookings", h.create)
	router.GET("/:id/bookings", h.list)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightID:       c.Param("id"),
		PassengerName:  req.PassengerName,
		PassengerEmail: req.PassengerEmail,
	})
	if res.OK() {
		c.Header("Location", "/flights/"+res.Value.FlightID+"/bookings/"+res.Value.ID)
	}
	writeResult(c, res, http.StatusCreated, toBookingResponse)
}

func (h *BookingHandler) list(c *gin.Context) {
	res := h.service.ListBookings(c.Request.Context(), c.Param("id"))
	writeResult(c, res, http.StatusOK, func(bs []domain.Booking) []bookingResponse {
		return mapAll(bs, toBookingResponse)
	})
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:             b.ID,
		FlightID:       b.FlightID,
		PassengerName:  b.PassengerName,
		PassengerEmail: b.PassengerEmail,
		FinalPrice:     b.FinalPrice,
	}
}
