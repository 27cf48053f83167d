package repository

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL server error numbers the services react to.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// Repositories groups every repository over a single connection or
// transaction.
type Repositories struct {
	Users    UserRepository
	Rewards  RewardRepository
	Posts    PostRepository
	Comments CommentRepository

	db *gorm.DB
}

// Transactor runs a function against repositories bound to one database
// transaction. The transaction commits when fn returns nil.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error
}

// Ensure Repositories implements Transactor
var _ Transactor = (*Repositories)(nil)

// New builds GORM-backed repositories.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Rewards:  NewRewardRepository(db),
		Posts:    NewPostRepository(db),
		Comments: NewCommentRepository(db),
		db:       db,
	}
}

// WithTransaction executes a function within a database transaction.
func (r *Repositories) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, New(tx))
	})
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry
}

// IsTransient reports whether err is a store failure worth retrying:
// deadlocks, lock wait timeouts and driver.ErrBadConn. The driver only
// returns ErrBadConn when the statement never reached the server.
// mysql.ErrInvalidConn can follow a statement that was already applied,
// so it is not retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDeadlock || mysqlErr.Number == mysqlErrLockWaitTimeout
	}
	return errors.Is(err, driver.ErrBadConn)
}
