package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/Domenick1991/astrobookings/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type createFlightRequest struct {
	RocketID          string    `json:"rocketId"`
	LaunchDate        time.Time `json:"launchDate"`
	BasePrice         float64   `json:"basePrice"`
	MinimumPassengers *int      `json:"minimumPassengers"`
}

type flightResponse struct {
	ID                string  `json:"id"`
	RocketID          string  `json:"rocketId"`
	LaunchDate        string  `json:"launchDate"`
	BasePrice         float64 `json:"basePrice"`
	MinimumPassengers int     `json:"minimumPassengers"`
	State             string  `json:"state"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("/:id/cancel", h.cancel)
	router.POST("/:id/perform", h.perform)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res := h.service.CreateFlight(c.Request.Context(), flights.CreateFlightInput{
		RocketID:          req.RocketID,
		LaunchDate:        req.LaunchDate,
		BasePrice:         req.BasePrice,
		MinimumPassengers: req.MinimumPassengers,
	})
	if res.OK() {
		c.Header("Location", "/flights/"+res.Value.ID)
	}
	writeResult(c, res, http.StatusCreated, toFlightResponse)
}

// list serves GET /flights. The state query parameter is optional; when it is
// present but empty the request is rejected.
func (h *FlightHandler) list(c *gin.Context) {
	var state *string
	if v, ok := c.GetQuery("state"); ok {
		state = &v
	}

	res := h.service.ListFutureFlights(c.Request.Context(), state)
	writeResult(c, res, http.StatusOK, func(fs []domain.Flight) []flightResponse {
		return mapAll(fs, toFlightResponse)
	})
}

func (h *FlightHandler) get(c *gin.Context) {
	writeResult(c, h.service.GetFlight(c.Request.Context(), c.Param("id")), http.StatusOK, toFlightResponse)
}

func (h *FlightHandler) cancel(c *gin.Context) {
	writeResult(c, h.service.Cancel(c.Request.Context(), c.Param("id")), http.StatusOK, toFlightResponse)
}

func (h *FlightHandler) perform(c *gin.Context) {
	writeResult(c, h.service.Perform(c.Request.Context(), c.Param("id")), http.StatusOK, toFlightResponse)
}

func toFlightResponse(f domain.Flight) flightResponse {
	return flightResponse{
		ID:                f.ID,
		RocketID:          f.RocketID,
		LaunchDate:        f.LaunchDate.UTC().Format(time.RFC3339Nano),
		BasePrice:         f.BasePrice,
		MinimumPassengers: f.MinimumPassengers,
		State:             string(f.State),
	}
}
