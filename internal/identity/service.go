package identity

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"
)

// ErrIncompleteRegistration is returned when a required owner field is blank.
var ErrIncompleteRegistration = errors.New("all owner fields are required")

// Service manages the owner registry.
type Service struct {
    repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
    return &Service{repo: repo}
}

// Register creates a new owner. The tax id must not be registered yet.
func (s *Service) Register(ctx context.Context, reg Registration) (Person, error) {
    reg = Registration{
        Name:      strings.TrimSpace(reg.Name),
        BirthDate: strings.TrimSpace(reg.BirthDate),
        TaxID:     strings.TrimSpace(reg.TaxID),
        Address:   strings.TrimSpace(reg.Address),
    }
    if reg.TaxID == "" {
        return Person{}, fmt.Errorf("%w: tax id", ErrIncompleteRegistration)
    }
    if _, err := s.repo.FindByTaxID(ctx, reg.TaxID); err == nil {
        return Person{}, ErrDuplicateOwner
    } else if !errors.Is(err, ErrOwnerNotFound) {
        return Person{}, err
    }
    if reg.Name == "" || reg.BirthDate == "" || reg.Address == "" {
        return Person{}, ErrIncompleteRegistration
    }

    person := Person{
        TaxID:       reg.TaxID,
        DisplayName: reg.Name,
        BirthDate:   reg.BirthDate,
        Address:     reg.Address,
        CreatedAt:   time.Now().UTC(),
    }
    if err := s.repo.Create(ctx, person); err != nil {
        return Person{}, err
    }
    return person, nil
}

// Find resolves an owner by tax id.
func (s *Service) Find(ctx context.Context, taxID string) (Person, error) {
    return s.repo.FindByTaxID(ctx, strings.TrimSpace(taxID))
}

// List returns every owner in registration order.
func (s *Service) List(ctx context.Context) ([]Person, error) {
    return s.repo.List(ctx)
}
