package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tracker/internal/repository"
	"tracker/internal/validate"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type listParams struct {
	page     int
	pageSize int
	search   string
	ordering []repository.Order
}

func (p listParams) window() repository.Page {
	return repository.Page{Limit: p.pageSize, Offset: (p.page - 1) * p.pageSize}
}

// parseListParams reads search, ordering and pagination. An unusable page
// number writes a 404 and returns false.
func parseListParams(c *gin.Context) (listParams, bool) {
	p := listParams{
		page:     1,
		pageSize: defaultPageSize,
		search:   strings.TrimSpace(c.Query("search")),
		ordering: parseOrdering(c.Query("ordering")),
	}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid page"})
			return p, false
		}
		p.page = n
	}
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.pageSize = min(n, maxPageSize)
		}
	}
	return p, true
}

// outOfRange reports a page past the last one. The first page always
// exists, even when there are no results. It writes the 404 itself.
func (p listParams) outOfRange(c *gin.Context, total int64) bool {
	if p.page == 1 || int64(p.window().Offset) < total {
		return false
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "invalid page"})
	return true
}

// parseOrdering turns "a,-b" into sort keys. Field names are checked
// against a whitelist by the store.
func parseOrdering(raw string) []repository.Order {
	var out []repository.Order
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		part = strings.TrimPrefix(part, "-")
		if part == "" {
			continue
		}
		out = append(out, repository.Order{Field: part, Desc: desc})
	}
	return out
}

// queryID parses an optional numeric filter, recording a field error when
// it is malformed.
func queryID(c *gin.Context, name string, fields validate.FieldErrors) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fields.Addf(name, "Select a valid choice. That choice is not one of the available choices.")
		return nil
	}
	return &id
}
