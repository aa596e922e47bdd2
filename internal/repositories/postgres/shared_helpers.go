package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/DPU-COL/learner-assist-service/internal/repositories"
)

// translateNotFound maps gorm's sentinel onto the repository-level one so
// services never import gorm for error checks.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}

// applyPagination applies limit/offset with a bounded default page size.
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
