// Package connect opens authenticated IMAP and SMTP sessions for a
// resolved account.
package connect

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"

	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/sirupsen/logrus"

	"github.com/nhle/mailacct/internal/account"
)

// Method selects how the dialer authenticates.
type Method string

const (
	// MethodAuto uses OAUTHBEARER when the protocol has a refresh command
	// configured, and the password otherwise.
	MethodAuto        Method = ""
	MethodPassword    Method = "password"
	MethodOAuthBearer Method = "oauthbearer"
)

// ParseMethod validates a method name from the command line.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(s)); m {
	case MethodAuto, MethodPassword, MethodOAuthBearer:
		return m, nil
	}
	return "", fmt.Errorf("unknown auth method %q", s)
}

// Dialer connects to the server an account points at and logs in,
// resolving missing credentials through Resolver.
type Dialer struct {
	Resolver  *account.Resolver
	Method    Method
	TLSConfig *tls.Config
	Log       logrus.FieldLogger
}

func (d *Dialer) logger() logrus.FieldLogger {
	if d.Log != nil {
		return d.Log
	}
	return logrus.StandardLogger()
}

func (d *Dialer) useOAuth(a *account.Account) bool {
	switch d.Method {
	case MethodOAuthBearer:
		return true
	case MethodPassword:
		return false
	}
	return d.Resolver.Defaults.For(a.Type).OAuthRefreshCommand != ""
}

// saslClient builds the SASL client for a. For passwords the login and
// password are resolved first.
func (d *Dialer) saslClient(ctx context.Context, a *account.Account) (sasl.Client, error) {
	if d.useOAuth(a) {
		msg, err := d.Resolver.OAuthBearerMessage(ctx, a)
		if err != nil {
			return nil, err
		}
		return &bearerClient{msg: msg}, nil
	}

	if err := d.Resolver.ResolveLogin(a); err != nil {
		return nil, err
	}
	if err := d.Resolver.ResolvePass(a); err != nil {
		return nil, err
	}
	return sasl.NewPlainClient("", a.Login, a.Pass), nil
}

// DialIMAP connects over implicit TLS for imaps accounts and STARTTLS
// otherwise, then authenticates. ctx bounds the TCP and TLS handshake.
// The caller must Logout the client.
func (d *Dialer) DialIMAP(ctx context.Context, a *account.Account) (*imapclient.Client, error) {
	if a.Type != account.TypeIMAP {
		return nil, fmt.Errorf("dialing IMAP: %s is a %s account", a.Host, a.Type)
	}

	log := d.logger().WithField("addr", a.Addr())
	opts := &imapclient.Options{TLSConfig: d.tlsConfig(a)}

	conn, err := d.dial(ctx, a, "imap")
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", a.Addr(), err)
	}

	var client *imapclient.Client
	if a.Secure {
		client = imapclient.New(conn, opts)
	} else if client, err = imapclient.NewStartTLS(conn, opts); err != nil {
		return nil, fmt.Errorf("starting TLS with %s: %w", a.Addr(), err)
	}

	if d.useOAuth(a) {
		log.Debug("authenticating with OAUTHBEARER")
		c, err := d.saslClient(ctx, a)
		if err == nil {
			err = client.Authenticate(c)
			if err != nil {
				err = &AuthError{Account: a.String(), Mech: sasl.OAuthBearer, Err: err}
			}
		}
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return client, nil
	}

	log.Debug("logging in")
	if err := d.Resolver.ResolveLogin(a); err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := d.Resolver.ResolvePass(a); err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := client.Login(a.Login, a.Pass).Wait(); err != nil {
		_ = client.Logout().Wait()
		a.UnsetPass()
		return nil, &AuthError{Account: a.String(), Mech: "LOGIN", Err: err}
	}

	return client, nil
}

// DialSMTP connects over implicit TLS for smtps accounts and upgrades
// with STARTTLS when the server offers it, then authenticates with PLAIN
// or OAUTHBEARER. ctx bounds the TCP and TLS handshake. The caller must
// Quit the client.
func (d *Dialer) DialSMTP(ctx context.Context, a *account.Account) (*smtp.Client, error) {
	if a.Type != account.TypeSMTP {
		return nil, fmt.Errorf("dialing SMTP: %s is a %s account", a.Host, a.Type)
	}

	log := d.logger().WithField("addr", a.Addr())

	conn, err := d.dial(ctx, a, "smtp")
	if err != nil {
		return nil, fmt.Errorf("connecting to SMTP %s: %w", a.Addr(), err)
	}
	client, err := smtp.NewClient(conn, a.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connecting to SMTP %s: %w", a.Addr(), err)
	}

	if !a.Secure {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(d.tlsConfig(a)); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("starting TLS with %s: %w", a.Addr(), err)
			}
		} else {
			log.Warn("server does not offer STARTTLS, authenticating in clear text")
		}
	}

	mech := sasl.Plain
	if d.useOAuth(a) {
		mech = sasl.OAuthBearer
	}
	c, err := d.saslClient(ctx, a)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	log.WithField("mech", mech).Debug("authenticating")

	if err := client.Auth(c); err != nil {
		_ = client.Quit()
		if mech == sasl.Plain {
			a.UnsetPass()
		}
		return nil, &AuthError{Account: a.String(), Mech: mech, Err: err}
	}

	return client, nil
}

func (d *Dialer) tlsConfig(a *account.Account) *tls.Config {
	if d.TLSConfig != nil {
		return d.TLSConfig
	}
	return &tls.Config{ServerName: a.Host}
}

// dial opens the transport for a, wrapped in TLS for implicit-TLS
// accounts. proto is offered through ALPN.
func (d *Dialer) dial(ctx context.Context, a *account.Account, proto string) (net.Conn, error) {
	if !a.Secure {
		var nd net.Dialer
		return nd.DialContext(ctx, "tcp", a.Addr())
	}

	cfg := d.tlsConfig(a).Clone()
	if cfg.NextProtos == nil {
		cfg.NextProtos = []string{proto}
	}
	td := &tls.Dialer{Config: cfg}
	return td.DialContext(ctx, "tcp", a.Addr())
}

// Check logs in to a's server and disconnects again.
func (d *Dialer) Check(ctx context.Context, a *account.Account) error {
	switch a.Type {
	case account.TypeIMAP:
		client, err := d.DialIMAP(ctx, a)
		if err != nil {
			return err
		}
		return client.Logout().Wait()
	case account.TypeSMTP:
		client, err := d.DialSMTP(ctx, a)
		if err != nil {
			return err
		}
		return client.Quit()
	}
	return fmt.Errorf("checking %s: %s accounts are not supported", a.Host, a.Type)
}
