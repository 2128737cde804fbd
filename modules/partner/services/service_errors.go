package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/agentprofile"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/partner"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/account"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/agenttype"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/location"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/territory"
	"github.com/acacia-erp/acacia-sdk/pkg/composables"
	"github.com/acacia-erp/acacia-sdk/pkg/hierarchy"
	"github.com/acacia-erp/acacia-sdk/pkg/serrors"
)

type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

// mapError turns repository and domain errors into transport-aware service
// errors. Anything unrecognized passes through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}

	switch {
	case errors.Is(err, partner.ErrNotFound),
		errors.Is(err, agentprofile.ErrNotFound),
		errors.Is(err, location.ErrNotFound),
		errors.Is(err, territory.ErrNotFound),
		errors.Is(err, agenttype.ErrNotFound),
		errors.Is(err, pgx.ErrNoRows):
		return newServiceError(http.StatusNotFound, "PARTNER_NOT_FOUND", "not found", err)
	case errors.Is(err, hierarchy.ErrDuplicateName):
		return newServiceError(http.StatusConflict, "PARTNER_DUP_NAME", "name already exists", err)
	case errors.Is(err, hierarchy.ErrRecursion):
		return newServiceError(http.StatusUnprocessableEntity, "PARTNER_RECURSION", "recursive hierarchy rejected", err)
	case errors.Is(err, hierarchy.ErrDepthExceeded):
		return newServiceError(http.StatusUnprocessableEntity, "PARTNER_TREE_TOO_DEEP", "hierarchy too deep", err)
	case errors.Is(err, account.ErrNoReceivable):
		return newServiceError(http.StatusUnprocessableEntity, "PARTNER_NO_RECEIVABLE", "no receivable account available", err)
	}

	var base *serrors.BaseError
	if errors.As(err, &base) {
		return newServiceError(http.StatusUnprocessableEntity, base.Code, base.Message, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return newServiceError(http.StatusConflict, "PARTNER_DUP_NAME", "unique constraint violated", err)
		case "23503": // foreign_key_violation
			return newServiceError(http.StatusUnprocessableEntity, "PARTNER_REF_NOT_FOUND", "referenced record not found", err)
		}
	}
	return err
}

// inTx runs fn inside a transaction when a pool is wired into the context.
// Without a pool (in-memory repositories) the closure runs on the ambient
// querier.
func inTx[T any](ctx context.Context, fn func(txCtx context.Context) (T, error)) (T, error) {
	if _, err := composables.UsePool(ctx); err != nil {
		return fn(ctx)
	}
	var out T
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		out, err = fn(txCtx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
