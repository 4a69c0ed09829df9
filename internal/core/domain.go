package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrIntegrity     = errors.New("integrity violation")
	ErrInvalidAmount = errors.New("invalid amount")
)

type (
	// User is an account row. ID is the stable external identifier
	// (e.g. a chat id) and never changes after registration.
	User struct {
		ID         int64
		Username   string
		Password   string // Argon2id PHC string, never the clear text
		IsAdmin    bool
		IsActive   bool
		LastActive time.Time
	}

	// Category is a seeded, read-only catalog entry. Codename is the
	// stable ASCII key; Name is the localized label shown to users and
	// may carry emoji.
	Category struct {
		Name     string
		Codename string
	}

	// Expense is one immutable recorded fact.
	Expense struct {
		Ref      int64 // storage row reference
		OwnerID  int64
		Amount   float64
		Category string // category codename
		Created  time.Time
	}

	// CategoryAmount is an aggregated sum labelled with the category's
	// display name.
	CategoryAmount struct {
		Category string
		Amount   float64
	}

	// OwnerRef identifies a user either by id or by username. The
	// username form is resolved to an id before any ledger operation.
	OwnerRef struct {
		ID       int64
		Username string
	}
)

// OwnerID references a user by stable id.
func OwnerID(id int64) OwnerRef { return OwnerRef{ID: id} }

// OwnerName references a user by username.
func OwnerName(username string) OwnerRef { return OwnerRef{Username: username} }

func (o OwnerRef) Validate() error {
	if o.ID == 0 && strings.TrimSpace(o.Username) == "" {
		return errors.New("owner reference is empty")
	}
	return nil
}

func (e Expense) Validate() error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return errors.New("empty category codename")
	}
	if e.OwnerID == 0 {
		return errors.New("empty owner id")
	}
	return nil
}
