package identity

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes owner registry endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	TaxID     string `json:"tax_id"`
	Address   string `json:"address"`
}

type ownerResponse struct {
	TaxID     string    `json:"tax_id"`
	Name      string    `json:"name"`
	BirthDate string    `json:"birth_date"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(p Person) ownerResponse {
	return ownerResponse{TaxID: p.TaxID, Name: p.DisplayName, BirthDate: p.BirthDate, Address: p.Address, CreatedAt: p.CreatedAt}
}

// Register handles owner onboarding.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	person, err := h.service.Register(c.UserContext(), Registration{Name: req.Name, BirthDate: req.BirthDate, TaxID: req.TaxID, Address: req.Address})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateOwner):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(toResponse(person))
}

// Find looks an owner up by tax id.
func (h *Handler) Find(c *fiber.Ctx) error {
	person, err := h.service.Find(c.UserContext(), c.Params("taxId"))
	if err != nil {
		if errors.Is(err, ErrOwnerNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(person))
}
