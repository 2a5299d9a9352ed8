package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "shiftcare/backend/pkg/errors"
)

const pgUniqueViolation = "23505"

// translateError 将驱动层约束冲突映射为包内哨兵错误
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pkgerrors.ErrDuplicate
	}
	return err
}
