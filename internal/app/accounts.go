package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/mailacct/internal/account"
	"github.com/nhle/mailacct/internal/credential"
	"github.com/nhle/mailacct/internal/model"
	"github.com/nhle/mailacct/internal/store"
	"github.com/nhle/mailacct/internal/uri"
)

// ErrNotAnAccount is returned when a URI does not name a remote account.
var ErrNotAnAccount = errors.New("uri does not name a remote mail account")

// AddAccount registers raw under name. A password in raw is moved to the
// keyring; the registry only keeps the password-free URI. Re-registering a
// name without a password drops the password stored for it. When the
// keyring cannot be updated the registry is left as it was.
func (a *App) AddAccount(ctx context.Context, name, raw string) (model.AccountRecord, error) {
	acct, err := a.accountFromURI(raw)
	if err != nil {
		return model.AccountRecord{}, err
	}
	if acct.Has(account.FlagPass) && a.Secrets == nil {
		return model.AccountRecord{}, fmt.Errorf("storing password for %s: no keyring available", name)
	}

	prev, err := a.Store.GetAccountByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		prev, err = nil, nil
	}
	if err != nil {
		return model.AccountRecord{}, err
	}

	rec, err := a.Store.UpsertAccount(ctx, model.AccountRecord{Name: name, URI: raw})
	if err != nil {
		return model.AccountRecord{}, err
	}

	if err := a.storePassword(rec.ID, acct); err != nil {
		a.restore(ctx, rec, prev)
		return model.AccountRecord{}, fmt.Errorf("saving account %s: %w", name, err)
	}

	a.Log.WithField("account", name).WithField("uri", rec.URI).Info("account saved")
	return rec, nil
}

// storePassword makes the keyring entry for id match acct: its password
// when it has one, nothing otherwise.
func (a *App) storePassword(id string, acct *account.Account) error {
	key := credential.AccountKey(id)
	if acct.Has(account.FlagPass) {
		return a.Secrets.Set(key, acct.Pass)
	}
	if a.Secrets == nil {
		return nil
	}
	return a.Secrets.Delete(key)
}

// restore undoes an upsert of rec: the previous record is written back,
// or the new one removed when there was none.
func (a *App) restore(ctx context.Context, rec model.AccountRecord, prev *model.AccountRecord) {
	var err error
	if prev == nil {
		err = a.Store.DeleteAccount(ctx, rec.ID)
	} else {
		_, err = a.Store.UpsertAccount(ctx, *prev)
	}
	if err != nil {
		a.Log.WithError(err).WithField("account", rec.Name).Error("could not roll back account")
	}
}

// Accounts lists the registry.
func (a *App) Accounts(ctx context.Context) ([]model.AccountRecord, error) {
	return a.Store.GetAccounts(ctx)
}

// RemoveAccount deletes the named account and its stored password.
func (a *App) RemoveAccount(ctx context.Context, name string) error {
	rec, err := a.Store.GetAccountByName(ctx, name)
	if err != nil {
		return err
	}
	if err := a.Store.DeleteAccount(ctx, rec.ID); err != nil {
		return err
	}

	if a.Secrets != nil {
		if err := a.Secrets.Delete(credential.AccountKey(rec.ID)); err != nil {
			a.Log.WithError(err).WithField("account", name).Warn("could not remove stored password")
		}
	}
	return nil
}

// LoadAccount turns ref into an account. ref is either a URI or the name
// of a registered account, whose stored password is attached when the
// keyring has one.
func (a *App) LoadAccount(ctx context.Context, ref string) (*account.Account, error) {
	if uri.SchemeOf(ref) != uri.SchemeUnknown {
		return a.accountFromURI(ref)
	}

	rec, err := a.Store.GetAccountByName(ctx, ref)
	if err != nil {
		return nil, err
	}
	acct, err := a.accountFromURI(rec.URI)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", ref, err)
	}

	if a.Secrets != nil && !acct.Has(account.FlagPass) {
		pass, err := a.Secrets.Get(credential.AccountKey(rec.ID))
		switch {
		case err == nil:
			acct.Pass = pass
			acct.Flags |= account.FlagPass
		case errors.Is(err, credential.ErrNotFound):
		default:
			a.Log.WithError(err).WithField("account", ref).Debug("keyring lookup failed")
		}
	}
	return acct, nil
}

func (a *App) accountFromURI(raw string) (*account.Account, error) {
	u, err := uri.Parse(raw)
	if err != nil {
		return nil, err
	}
	acct, err := account.FromURI(u)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnAccount, err)
	}
	if acct.Type == account.TypeNone {
		return nil, fmt.Errorf("%w: %s", ErrNotAnAccount, u.Scheme)
	}
	return acct, nil
}

// Token returns the base64 OAUTHBEARER token for ref.
func (a *App) Token(ctx context.Context, ref string) (string, error) {
	acct, err := a.LoadAccount(ctx, ref)
	if err != nil {
		return "", err
	}
	return a.Resolver.OAuthBearer(ctx, acct)
}

// Check logs in to ref's server and disconnects.
func (a *App) Check(ctx context.Context, ref string) (*account.Account, error) {
	acct, err := a.LoadAccount(ctx, ref)
	if err != nil {
		return nil, err
	}
	return acct, a.Dialer.Check(ctx, acct)
}
