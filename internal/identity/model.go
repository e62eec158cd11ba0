package identity

import "time"

// Person is an account owner. It is immutable once registered.
type Person struct {
    TaxID       string
    DisplayName string
    BirthDate   string
    Address     string
    CreatedAt   time.Time
}

// Registration carries the data collected when onboarding an owner.
type Registration struct {
    Name      string
    BirthDate string
    TaxID     string
    Address   string
}
