// Package repo holds what every gorm-backed repository shares: a connection
// that can be rebound to a transaction, plus small typed query helpers.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by repositories. The zero value is unusable.
type Base struct {
	conn *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{conn: conn}
}

// DB returns the connection scoped to ctx. A nil ctx returns it unscoped.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.conn
	}
	return b.conn.WithContext(ctx)
}

// WithTx rebinds the base to tx; nil keeps the current connection.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx != nil {
		b.conn = tx
	}
	return b
}

// Scope narrows a query.
type Scope = func(*gorm.DB) *gorm.DB

// ByID matches the primary key.
func ByID(id uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

// Count returns how many M rows match scopes.
func Count[M any](db *gorm.DB, scopes ...Scope) (int64, error) {
	var n int64
	err := db.Model(new(M)).Scopes(scopes...).Count(&n).Error
	return n, err
}

// Exists reports whether any M row matches scopes.
func Exists[M any](db *gorm.DB, scopes ...Scope) (bool, error) {
	n, err := Count[M](db, scopes...)
	return n > 0, err
}
