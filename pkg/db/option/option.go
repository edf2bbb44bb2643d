package option

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hireloop/hireloop/pkg/db/pagination"
)

// QueryOption mutates a gorm query before execution.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type queryOptionFunc func(*gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB {
	return f(db)
}

// WithLimit caps the number of returned rows.
func WithLimit(limit int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

// WithOffset skips rows before the first returned one.
func WithOffset(offset int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if offset <= 0 {
			return db
		}
		return db.Offset(offset)
	})
}

// WithSortBy orders results by a column. Direction defaults to ascending.
func WithSortBy(column, direction string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		column = strings.TrimSpace(column)
		if column == "" {
			return db
		}
		dir := "ASC"
		if strings.EqualFold(strings.TrimSpace(direction), "desc") {
			dir = "DESC"
		}
		return db.Order(column + " " + dir)
	})
}

// WithQuerySortBy orders by a caller-supplied column, restricted to an allow list.
// Falls back to created_at when the column is unknown.
func WithQuerySortBy(sortBy, orderBy string, allowed map[string]bool) QueryOption {
	column := strings.TrimSpace(sortBy)
	if column == "" || !allowed[column] {
		column = "created_at"
	}
	return WithSortBy(column, orderBy)
}

// WithPagination applies the decoded cursor bound and a normalized page size
// plus one row for has-more detection. Rows must be ordered by
// created_at DESC, id DESC for the bound to be stable. A malformed token is
// ignored and the first page is served.
func WithPagination(p pagination.Pagination) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if ts, id, ok := cursorBound(p.PageToken); ok {
			db = db.Where("created_at < ? OR (created_at = ? AND id < ?)", ts, ts, id)
		}
		return db.Limit(p.Limit() + 1)
	})
}

func cursorBound(token string) (time.Time, int64, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, 0, false
	}
	cursor, err := pagination.DecodeCursor(token)
	if err != nil {
		return time.Time{}, 0, false
	}
	ts, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
	if err != nil {
		return time.Time{}, 0, false
	}
	id, err := strconv.ParseInt(cursor.ID, 10, 64)
	if err != nil {
		return time.Time{}, 0, false
	}
	return ts, id, true
}
