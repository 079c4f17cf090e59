package account

import (
	"context"
	"encoding/base64"
	"fmt"
)

// OAuthBearerMessage runs the configured refresh command for the account's
// protocol and assembles the raw RFC 7628 OAUTHBEARER client response.
func (r *Resolver) OAuthBearerMessage(ctx context.Context, a *Account) ([]byte, error) {
	if err := r.ResolveLogin(a); err != nil {
		return nil, err
	}

	cmd := r.Defaults.For(a.Type).OAuthRefreshCommand
	if cmd == "" {
		return nil, resolveErr(a, "building OAUTHBEARER token", ErrRefreshCommandMissing)
	}
	if r.Runner == nil {
		return nil, resolveErr(a, "building OAUTHBEARER token",
			fmt.Errorf("%w: no command runner", ErrRefreshCommandFailed))
	}

	log := r.logger().WithField("host", a.Host).WithField("type", a.Type)
	log.Debug("running OAUTH refresh command")

	token, err := r.Runner.FirstLine(ctx, cmd)
	if err != nil {
		return nil, resolveErr(a, "running OAUTH refresh command",
			fmt.Errorf("%w: %v", ErrRefreshCommandFailed, err))
	}
	if token == "" {
		return nil, resolveErr(a, "running OAUTH refresh command",
			fmt.Errorf("%w: command returned empty string", ErrRefreshCommandFailed))
	}

	msg := fmt.Sprintf("n,a=%s,\x01host=%s\x01port=%d\x01auth=Bearer %s\x01\x01",
		a.Login, a.Host, a.EffectivePort(), token)
	return []byte(msg), nil
}

// OAuthBearer returns the base64-encoded OAUTHBEARER token for a, ready
// to send as a SASL initial response.
func (r *Resolver) OAuthBearer(ctx context.Context, a *Account) (string, error) {
	msg, err := r.OAuthBearerMessage(ctx, a)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(msg), nil
}
