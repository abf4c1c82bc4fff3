package core

import (
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
)

// ValidateEmail checks an email address against RFC 5322.
func ValidateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

// pagination carries the resolved limit/offset of a list request.
type pagination struct {
	Size int
	Page int // 1-based
}

func (p pagination) Limit() int {
	return p.Size
}

func (p pagination) Offset() int {
	return (p.Page - 1) * p.Size
}

// paginationFromRequest reads the size and page query parameters, clamping
// size to the configured bounds. Malformed or missing values fall back to
// the defaults rather than erroring, list endpoints always answer.
func (a *App) paginationFromRequest(r *http.Request) pagination {
	cfg := a.Config()

	size := cfg.Api.DefaultPageSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			size = n
		}
	}
	if size > cfg.Api.MaxPageSize {
		size = cfg.Api.MaxPageSize
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	return pagination{Size: size, Page: page}
}

// totalPages computes the page count for a listing, never less than 1.
func totalPages(total, size int) int {
	if total <= 0 {
		return 1
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}
