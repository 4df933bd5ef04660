package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// pgUniqueViolation is the SQLSTATE postgres reports for duplicate keys.
const pgUniqueViolation = "23505"

// ErrorDump flattens an error chain into loggable fields.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.fillPostgres(err)
	return d
}

// fillPostgres copies driver fields from either pgx or lib/pq errors.
func (d *ErrorDump) fillPostgres(err error) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode, d.PGConstraint = pgxErr.Code, pgxErr.ConstraintName
		d.PGTable, d.PGColumn = pgxErr.TableName, pgxErr.ColumnName
		d.PGDetail, d.PGMessage = pgxErr.Detail, pgxErr.Message
		return
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode, d.PGConstraint = string(pqErr.Code), pqErr.Constraint
		d.PGTable, d.PGColumn = pqErr.Table, pqErr.Column
		d.PGDetail, d.PGMessage = pqErr.Detail, pqErr.Message
	}
}

// IsUniqueViolation reports whether err is a duplicate-key failure from
// postgres, sqlite or gorm's translated error.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var d ErrorDump
	d.fillPostgres(err)
	if d.PGCode == pgUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
