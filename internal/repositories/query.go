package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// takeOne runs q for a single row. A missing row is (nil, nil) so services
// can tell "not found" from storage failures.
func takeOne[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.Limit(1).Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}
