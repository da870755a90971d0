package api

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/errs"
	"github.com/and161185/snapgram/internal/model"
)

// CreateUserAccount registers the account and its profile document. A failure
// after the account exists is reported as errs.KindPartial: the account stays
// behind without a profile.
func (a *Adapter) CreateUserAccount(ctx context.Context, u model.NewUser) (*model.User, error) {
	const op = "api.CreateUserAccount"

	accountID, err := a.newID()
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	acc, err := a.be.CreateAccount(ctx, accountID, u.Email, u.Password, u.Name)
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}

	avatar, err := a.be.InitialsURL(acc.Name)
	if err != nil {
		a.log.Error("account without profile", zap.String("accountId", acc.ID))
		return nil, a.fail(op, errs.KindPartial, err)
	}

	docID, err := a.newID()
	if err != nil {
		return nil, a.fail(op, errs.KindPartial, err)
	}
	doc, err := a.be.CreateDocument(ctx, a.ids.DatabaseID, a.ids.UserCollectionID, docID, map[string]any{
		"accountId": acc.ID,
		"name":      acc.Name,
		"email":     acc.Email,
		"username":  u.Username,
		"imageUrl":  avatar,
	})
	if err != nil {
		a.log.Error("account without profile", zap.String("accountId", acc.ID))
		return nil, a.fail(op, errs.KindPartial, err)
	}
	user, err := decodeUser(doc)
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	return user, nil
}

// SignIn creates an email session and attaches it to the backend.
func (a *Adapter) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	const op = "api.SignIn"
	s, err := a.be.CreateEmailSession(ctx, email, password)
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	return s, nil
}

// SignOut deletes the current session.
func (a *Adapter) SignOut(ctx context.Context) error {
	if err := a.be.DeleteSession(ctx, backend.CurrentSession); err != nil {
		return a.fail("api.SignOut", errs.KindRemote, err)
	}
	return nil
}

// UseSession attaches a persisted session secret.
func (a *Adapter) UseSession(secret string) {
	a.be.UseSession(secret)
}

// GetAccount returns the signed-in account.
func (a *Adapter) GetAccount(ctx context.Context) (*model.Account, error) {
	acc, err := a.be.GetAccount(ctx)
	if err != nil {
		return nil, a.fail("api.GetAccount", errs.KindRemote, err)
	}
	return acc, nil
}

// CurrentUser returns the profile of the signed-in account. It returns nil, nil
// when there is no session or the account has no profile.
func (a *Adapter) CurrentUser(ctx context.Context) (*model.User, error) {
	const op = "api.CurrentUser"

	acc, err := a.be.GetAccount(ctx)
	if errors.Is(err, errs.ErrUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}

	list, err := a.be.ListDocuments(ctx, a.ids.DatabaseID, a.ids.UserCollectionID,
		backend.Equal("accountId", acc.ID),
		backend.Limit(1),
	)
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	if len(list.Documents) == 0 {
		a.log.Debug("account has no profile", zap.String("accountId", acc.ID))
		return nil, nil
	}
	user, err := decodeUser(&list.Documents[0])
	if err != nil {
		return nil, a.fail(op, errs.KindRemote, err)
	}
	return user, nil
}
