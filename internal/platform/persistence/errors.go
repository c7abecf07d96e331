package persistence

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/register-pos/internal/domain/outbox"
	"github.com/register-pos/internal/domain/register"
	"github.com/register-pos/internal/domain/sale"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrorClass groups store failures by how they are reported to the cashier
type ErrorClass int

const (
	ClassOther ErrorClass = iota
	ClassUnknownColumn
	ClassMissingTable
	ClassNoRows
	ClassUnavailable
)

const (
	sqlStateUndefinedColumn = "42703"
	sqlStateUndefinedTable  = "42P01"
	sqlStateUniqueViolation = "23505"
	sqlStateConnectionClass = "08"
)

// Classify maps err to an ErrorClass. A nil error is ClassOther.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassOther
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == sqlStateUndefinedColumn:
			return ClassUnknownColumn
		case pgErr.Code == sqlStateUndefinedTable:
			return ClassMissingTable
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == sqlStateConnectionClass:
			return ClassUnavailable
		}
		return ClassOther
	}

	if IsNotFound(err) {
		return ClassNoRows
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) {
		return ClassUnavailable
	}

	return ClassOther
}

// IsNotFound reports whether err means the requested row or document does not exist
func IsNotFound(err error) bool {
	var txNotFound sale.ErrTransactionNotFound
	var msgNotFound outbox.ErrMessageNotFound
	return errors.Is(err, pgx.ErrNoRows) ||
		errors.Is(err, mongo.ErrNoDocuments) ||
		errors.Is(err, sale.ErrNoCurrentTransaction) ||
		errors.Is(err, register.ErrBalanceNotFound) ||
		errors.As(err, &txNotFound) ||
		errors.As(err, &msgNotFound)
}

// IsUniqueViolation reports whether err is a unique constraint violation
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation
}

func (c ErrorClass) String() string {
	switch c {
	case ClassUnknownColumn:
		return "UnknownColumn"
	case ClassMissingTable:
		return "MissingTable"
	case ClassNoRows:
		return "NoRows"
	case ClassUnavailable:
		return "Unavailable"
	default:
		return "Other"
	}
}

// Code is the machine-readable error code used in API responses
func (c ErrorClass) Code() string {
	switch c {
	case ClassUnknownColumn:
		return "SCHEMA_MISMATCH"
	case ClassMissingTable:
		return "TABLE_MISSING"
	case ClassNoRows:
		return "NOT_FOUND"
	case ClassUnavailable:
		return "STORE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// Message is the text shown to the cashier
func (c ErrorClass) Message() string {
	switch c {
	case ClassUnknownColumn:
		return "データベースの構造が正しく設定されていません。管理者に連絡してください。"
	case ClassMissingTable:
		return "テーブルが存在しません。管理者に連絡してください。"
	case ClassNoRows:
		return "対象のデータが見つかりません。"
	case ClassUnavailable:
		return "データベースに接続できません。しばらくしてからもう一度お試しください。"
	default:
		return "操作に失敗しました。もう一度お試しください。"
	}
}

func (c ErrorClass) HTTPStatus() int {
	switch c {
	case ClassNoRows:
		return http.StatusNotFound
	case ClassUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
