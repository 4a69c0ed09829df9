package storage

import (
	"context"
	"fmt"
	"strings"

	"kopilka/internal/core"
)

// Categories returns the catalog in seeded order. Every call runs a
// fresh query, so the result is always restartable and never shared.
func (s *Store) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, codename FROM categories ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.Name, &c.Codename); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// CategoryName returns the localized display name for a codename,
// core.ErrNotFound when the codename is unknown.
func (s *Store) CategoryName(ctx context.Context, codename string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM categories WHERE codename = ?", codename).Scan(&name)
	if err != nil {
		return "", fmt.Errorf("category %q: %w", codename, mapNotFound(err))
	}
	return name, nil
}

// CategoryBySuffix resolves user-typed text to a codename by matching
// display names that end with the text, case-insensitively. Menu labels
// prefix an emoji before the category word, which is why the suffix and
// not the whole label is compared. When several labels qualify the
// first one in catalog order wins.
func (s *Store) CategoryBySuffix(ctx context.Context, text string) (string, error) {
	want := strings.ToLower(strings.TrimSpace(text))
	if want == "" {
		return "", fmt.Errorf("category by suffix: %w", core.ErrNotFound)
	}

	cats, err := s.Categories(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range cats {
		if strings.HasSuffix(strings.ToLower(c.Name), want) {
			return c.Codename, nil
		}
	}
	return "", fmt.Errorf("category matching %q: %w", text, core.ErrNotFound)
}
