// Package service implements the marketplace's business operations on top of
// the stores. Handlers authenticate, then call a service with the acting user.
package service

import (
	"errors"

	"github.com/reachlyapp/reachly-server/internal/domain"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
	"github.com/reachlyapp/reachly-server/internal/store"
	"github.com/reachlyapp/reachly-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// requireUser rejects anonymous calls.
func requireUser(actor *domain.User) error {
	if actor == nil {
		return domainerrors.Unauthorized("authentication required")
	}
	return nil
}

func requireAdmin(actor *domain.User) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return domainerrors.Forbidden("admin access required")
	}
	return nil
}

func requireBusiness(actor *domain.User) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if !actor.IsBusiness() {
		return domainerrors.Forbidden("only business accounts can do this")
	}
	return nil
}

// notFound maps store.ErrNotFound to a not found error naming the resource
// and passes anything else through.
func notFound(err error, resource string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf("%s not found", resource)
	}
	return err
}
