package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/congo-pay/banco/internal/bank"
    "github.com/congo-pay/banco/internal/identity"
)

// RegisterOwnerRoutes wires the owner registry endpoints.
func RegisterOwnerRoutes(r fiber.Router, owners *identity.Handler, accounts *bank.Handler) {
    r.Post("/owners", owners.Register)
    r.Get("/owners/:taxId", owners.Find)
    r.Get("/owners/:taxId/accounts", accounts.OwnerAccounts)
}
