// Package services orchestrates the ledger operations the adapters
// call: registration and credential checks, expense recording with the
// export event stream, and windowed sum reports.
package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"time"

	"kopilka/internal/amqp"
	"kopilka/internal/cache"
	"kopilka/internal/core"
	"kopilka/internal/password"
	"kopilka/internal/storage"
)

// LedgerService wires the storage handle to the optional export event
// stream. A nil events client disables export publishing.
type LedgerService struct {
	store  *storage.Store
	events *amqp.Client
	labels *cache.LRU[string]
}

func NewLedgerService(store *storage.Store, events *amqp.Client) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
		// The catalog is read-only after seeding; the TTL only bounds
		// staleness after a manual wipe-and-reseed.
		labels: cache.NewLRU[string](64, time.Hour),
	}
}

// RegisterUser creates an account with a salted Argon2id password hash.
// A taken id or username reports core.ErrAlreadyExists; no partial row
// is ever written.
func (s *LedgerService) RegisterUser(ctx context.Context, id int64, isAdmin bool, username, pass string) error {
	hash, err := password.Hash(pass)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.store.CreateUser(ctx, core.User{
		ID:       id,
		Username: username,
		Password: hash,
		IsAdmin:  isAdmin,
		IsActive: true,
	})
}

// UserExists reports whether an account with the given id exists.
func (s *LedgerService) UserExists(ctx context.Context, id int64) (bool, error) {
	return s.store.UserExists(ctx, id)
}

// UserExistsByName reports whether an account with the given username
// exists.
func (s *LedgerService) UserExistsByName(ctx context.Context, username string) (bool, error) {
	return s.store.UserExistsByName(ctx, username)
}

// VerifyCredentials reports whether username and password match a
// stored account. Unknown usernames, wrong passwords and lookup
// failures all come back false; failures are logged, not returned.
func (s *LedgerService) VerifyCredentials(ctx context.Context, username, pass string) bool {
	u, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Credential lookup failed",
				"username", username, "error", err)
		}
		return false
	}

	ok, err := password.Verify(pass, u.Password)
	if err != nil {
		slog.WarnContext(ctx, "Stored password hash is unusable",
			"user_id", u.ID, "error", err)
		return false
	}
	return ok
}

// TouchActivity stamps the user's last_active with now; false when the
// user does not exist.
func (s *LedgerService) TouchActivity(ctx context.Context, id int64) (bool, error) {
	return s.store.TouchActivity(ctx, id)
}

// ResolveOwner turns an owner reference into a stable user id,
// core.ErrNotFound when a username reference is unknown.
func (s *LedgerService) ResolveOwner(ctx context.Context, owner core.OwnerRef) (int64, error) {
	if err := owner.Validate(); err != nil {
		return 0, err
	}
	if owner.ID != 0 {
		return owner.ID, nil
	}
	return s.store.UserIDByUsername(ctx, owner.Username)
}

// Categories lists the catalog in seeded order.
func (s *LedgerService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.store.Categories(ctx)
}

// ResolveCategory maps user input to a codename: an exact codename is
// accepted as-is, anything else is matched as a trailing substring of
// the localized display names.
func (s *LedgerService) ResolveCategory(ctx context.Context, text string) (string, error) {
	if _, err := s.store.CategoryName(ctx, text); err == nil {
		return text, nil
	}
	return s.store.CategoryBySuffix(ctx, text)
}

// CategoryLabel returns the display name for a codename, served from a
// small in-process cache.
func (s *LedgerService) CategoryLabel(ctx context.Context, codename string) (string, error) {
	if name, ok := s.labels.Get(codename); ok {
		return name, nil
	}
	name, err := s.store.CategoryName(ctx, codename)
	if err != nil {
		return "", err
	}
	s.labels.Set(codename, name)
	return name, nil
}

// RecordExpense validates the amount, resolves the owner reference and
// appends one row. An unresolvable owner or category fails the whole
// call; nothing partial is recorded. On success a recorded-expense
// event is published best-effort for the export worker.
func (s *LedgerService) RecordExpense(ctx context.Context, owner core.OwnerRef, amount float64, codename string) (int64, error) {
	if amount <= 0 {
		return 0, core.ErrInvalidAmount
	}

	ownerID, err := s.ResolveOwner(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("resolve owner: %w", err)
	}

	ref, err := s.store.InsertExpense(ctx, ownerID, amount, codename)
	if err != nil {
		return 0, err
	}

	s.publishRecorded(ctx, ref, ownerID, owner.Username, amount, codename)

	return ref, nil
}

func (s *LedgerService) publishRecorded(ctx context.Context, ref, ownerID int64, username string, amount float64, codename string) {
	if s.events == nil {
		return
	}

	label, err := s.CategoryLabel(ctx, codename)
	if err != nil {
		label = codename
	}
	if username == "" {
		username = strconv.FormatInt(ownerID, 10)
	}

	msg := &amqp.ExpenseRecordedMessage{
		Ref:       ref,
		OwnerID:   ownerID,
		Username:  username,
		Amount:    amount,
		Codename:  codename,
		Category:  label,
		Created:   time.Now(),
		Timestamp: time.Now(),
	}
	if err := s.events.PublishExpenseRecorded(ctx, msg); err != nil {
		// The expense is already durable locally; the worker's queue
		// just misses one event.
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"ref", ref, "error", err)
	}
}

// SumExpenses reports per-category sums for one owner over a window.
//
// Without a filter it walks the catalog in seeded order, computing each
// sum on demand with its own query, and skips categories with no
// matching rows. With a filter it emits exactly one entry for that
// codename, zero-valued when nothing matched. Labels are display names.
//
// The sequence is lazy and finite but not restartable: a second range
// over it yields nothing. Errors end the sequence as the final element.
func (s *LedgerService) SumExpenses(ctx context.Context, owner core.OwnerRef, w core.Window, categoryFilter string) iter.Seq2[core.CategoryAmount, error] {
	var done bool
	return func(yield func(core.CategoryAmount, error) bool) {
		if done {
			return
		}
		done = true

		ownerID, err := s.ResolveOwner(ctx, owner)
		if err != nil {
			yield(core.CategoryAmount{}, fmt.Errorf("resolve owner: %w", err))
			return
		}

		if categoryFilter != "" {
			label, err := s.CategoryLabel(ctx, categoryFilter)
			if err != nil {
				yield(core.CategoryAmount{}, err)
				return
			}
			sum, err := s.store.SumInWindow(ctx, ownerID, categoryFilter, w)
			if err != nil {
				yield(core.CategoryAmount{}, err)
				return
			}
			yield(core.CategoryAmount{Category: label, Amount: sum.Float64}, nil)
			return
		}

		cats, err := s.store.Categories(ctx)
		if err != nil {
			yield(core.CategoryAmount{}, err)
			return
		}

		for _, c := range cats {
			sum, err := s.store.SumInWindow(ctx, ownerID, c.Codename, w)
			if err != nil {
				yield(core.CategoryAmount{}, err)
				return
			}
			if !sum.Valid || sum.Float64 == 0 {
				continue
			}
			if !yield(core.CategoryAmount{Category: c.Name, Amount: sum.Float64}, nil) {
				return
			}
		}
	}
}

// Close closes the storage handle and, when configured, the event
// stream connection.
func (s *LedgerService) Close() error {
	var errs []error

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
