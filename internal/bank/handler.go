package bank

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/banco/internal/account"
	"github.com/congo-pay/banco/internal/identity"
	"github.com/congo-pay/banco/internal/ledger"
)

// Handler exposes account HTTP endpoints.
type Handler struct {
	session *Session
}

// NewHandler builds an account HTTP handler.
func NewHandler(session *Session) *Handler {
	return &Handler{session: session}
}

type createAccountRequest struct {
	TaxID  string `json:"tax_id"`
	Number int    `json:"number"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type accountResponse struct {
	Branch          string `json:"branch"`
	Number          int    `json:"number"`
	Owner           string `json:"owner"`
	OwnerTaxID      string `json:"owner_tax_id"`
	Balance         string `json:"balance"`
	WithdrawalCount int    `json:"withdrawal_count"`
}

type resultResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Balance string `json:"balance,omitempty"`
}

type entryResponse struct {
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

func toAccountResponse(acc *account.Account) accountResponse {
	return accountResponse{
		Branch:          acc.BranchCode(),
		Number:          acc.Number(),
		Owner:           acc.Owner().DisplayName,
		OwnerTaxID:      acc.Owner().TaxID,
		Balance:         acc.Balance().StringFixed(2),
		WithdrawalCount: acc.WithdrawalCount(),
	}
}

// CreateAccount opens an account for an existing owner.
func (h *Handler) CreateAccount(c *fiber.Ctx) error {
	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acc, err := h.session.CreateAccount(c.UserContext(), req.TaxID, req.Number)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrOwnerNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrDuplicateAccount):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(toAccountResponse(acc))
}

// ListAccounts returns every account in creation order.
func (h *Handler) ListAccounts(c *fiber.Ctx) error {
	out := []accountResponse{}
	for acc := range h.session.Accounts() {
		out = append(out, toAccountResponse(acc))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// OwnerAccounts lists the accounts of one owner.
func (h *Handler) OwnerAccounts(c *fiber.Ctx) error {
	owner, err := h.session.FindOwner(c.UserContext(), c.Params("taxId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	out := []accountResponse{}
	for _, acc := range h.session.AccountsOf(owner.TaxID) {
		out = append(out, toAccountResponse(acc))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// GetAccount returns a single account.
func (h *Handler) GetAccount(c *fiber.Ctx) error {
	acc, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toAccountResponse(acc))
}

// Deposit credits an account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	return h.transact(c, ledger.KindDeposit)
}

// Withdraw debits an account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	return h.transact(c, ledger.KindWithdrawal)
}

func (h *Handler) transact(c *fiber.Ctx, kind ledger.Kind) error {
	acc, err := h.lookup(c)
	if err != nil {
		return err
	}
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	tx, err := account.NewTransaction(kind, req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res := h.session.Perform(c.UserContext(), acc.Owner(), acc, tx)
	if !res.OK {
		return c.Status(http.StatusUnprocessableEntity).JSON(resultResponse{
			OK:      false,
			Message: res.Message,
			Code:    account.Code(res.Err),
		})
	}
	return c.Status(http.StatusOK).JSON(resultResponse{
		OK:      true,
		Message: res.Message,
		Balance: acc.Balance().StringFixed(2),
	})
}

// Statement lists ledger entries, optionally filtered by ?kind=.
func (h *Handler) Statement(c *fiber.Ctx) error {
	acc, err := h.lookup(c)
	if err != nil {
		return err
	}
	filter := c.Query("kind")
	if filter != "" {
		if _, err := ledger.ParseKind(filter); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	entries := []entryResponse{}
	for entry := range acc.Ledger().Entries(filter) {
		entries = append(entries, entryResponse{Kind: string(entry.Kind), Amount: entry.Amount.StringFixed(2), Timestamp: entry.Timestamp})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account": acc.String(),
		"balance": acc.Balance().StringFixed(2),
		"entries": entries,
	})
}

func (h *Handler) lookup(c *fiber.Ctx) (*account.Account, error) {
	number, err := c.ParamsInt("number")
	if err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "account number must be an integer")
	}
	acc, err := h.session.Account(number)
	if err != nil {
		return nil, fiber.NewError(http.StatusNotFound, err.Error())
	}
	return acc, nil
}
