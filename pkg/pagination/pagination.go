// Package pagination reads the page/limit query parameters shared by the
// list endpoints and clamps them to sane bounds.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a validated page request. Offset is precomputed so repositories
// can pass it straight into a query.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse reads page and limit from the request query. Missing or malformed
// values fall back to the defaults, and limit is capped at MaxLimit.
func Parse(c *gin.Context) Params {
	page := atoiOr(c.Query("page"), DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := atoiOr(c.Query("limit"), DefaultLimit)
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func atoiOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
