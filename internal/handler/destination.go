package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zuru/internal/domain"
	"zuru/internal/service"
)

// DestinationHandler serves the destination catalogue.
type DestinationHandler struct {
	destinationService *service.DestinationService
}

// NewDestinationHandler creates a new DestinationHandler.
func NewDestinationHandler(destinationService *service.DestinationService) *DestinationHandler {
	return &DestinationHandler{destinationService: destinationService}
}

// DestinationResponse is the HTTP response for a catalogue entry.
type DestinationResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

func toDestinationResponse(d *domain.Destination) DestinationResponse {
	return DestinationResponse{
		ID:          d.ID,
		Name:        d.Name,
		Location:    d.Location,
		Description: d.Description,
		Price:       d.Price,
		ImageURL:    d.ImageURL,
		Lat:         d.Coordinate.Lat,
		Lng:         d.Coordinate.Lng,
	}
}

// GetAll handles GET /v1/destinations
func (h *DestinationHandler) GetAll(c *gin.Context) {
	list, err := h.destinationService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DestinationResponse, 0, len(list))
	for _, d := range list {
		response = append(response, toDestinationResponse(d))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetDestination handles GET /v1/destinations/:id
func (h *DestinationHandler) GetDestination(c *gin.Context) {
	d, err := h.destinationService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDestinationResponse(d))
}
