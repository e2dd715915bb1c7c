package repo

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GormRepo runs queries on whatever session it is given; handlers hand it the
// request's scoped session.
type GormRepo struct {
	DB *gorm.DB
}

func New(sess *gorm.DB) *GormRepo {
	return &GormRepo{DB: sess}
}

const pqUniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
