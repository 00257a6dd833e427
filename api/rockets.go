package api

import (
	"net/http"

	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/Domenick1991/astrobookings/internal/service/rockets"
	"github.com/gin-gonic/gin"
)

type RocketHandler struct {
	service rockets.RocketUseCase
}

type createRocketRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Speed    *int   `json:"speed"`
	Range    string `json:"range"`
}

type rocketResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Speed    *int   `json:"speed,omitempty"`
	Range    string `json:"range"`
}

func NewRocketHandler(service rockets.RocketUseCase) *RocketHandler {
	return &RocketHandler{service: service}
}

func (h *RocketHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *RocketHandler) create(c *gin.Context) {
	var req createRocketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res := h.service.CreateRocket(c.Request.Context(), rockets.CreateRocketInput{
		Name:     req.Name,
		Capacity: req.Capacity,
		Speed:    req.Speed,
		Range:    req.Range,
	})
	if res.OK() {
		c.Header("Location", "/rockets/"+res.Value.ID)
	}
	writeResult(c, res, http.StatusCreated, toRocketResponse)
}

func (h *RocketHandler) list(c *gin.Context) {
	res := h.service.ListRockets(c.Request.Context())
	writeResult(c, res, http.StatusOK, func(rs []domain.Rocket) []rocketResponse {
		return mapAll(rs, toRocketResponse)
	})
}

func (h *RocketHandler) get(c *gin.Context) {
	writeResult(c, h.service.GetRocket(c.Request.Context(), c.Param("id")), http.StatusOK, toRocketResponse)
}

func toRocketResponse(r domain.Rocket) rocketResponse {
	return rocketResponse{ID: r.ID, Name: r.Name, Capacity: r.Capacity, Speed: r.Speed, Range: string(r.Range)}
}
