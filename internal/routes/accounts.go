package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/congo-pay/banco/internal/bank"
)

// RegisterAccountRoutes wires account endpoints. The guards run in front of
// the money-moving routes only.
func RegisterAccountRoutes(r fiber.Router, h *bank.Handler, guards ...fiber.Handler) {
    r.Post("/accounts", h.CreateAccount)
    r.Get("/accounts", h.ListAccounts)
    r.Get("/accounts/:number", h.GetAccount)
    r.Get("/accounts/:number/statement", h.Statement)

    tx := r.Group("/accounts/:number", guards...)
    tx.Post("/deposits", h.Deposit)
    tx.Post("/withdrawals", h.Withdraw)
}
