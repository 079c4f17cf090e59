package connect

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/emersion/go-sasl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailacct/internal/account"
)

type staticRunner string

func (r staticRunner) FirstLine(context.Context, string) (string, error) {
	return string(r), nil
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{
		"":            MethodAuto,
		"password":    MethodPassword,
		"OAuthBearer": MethodOAuthBearer,
	} {
		got, err := ParseMethod(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseMethod("kerberos")
	assert.Error(t, err)
}

func TestUseOAuth(t *testing.T) {
	r := &account.Resolver{Defaults: account.Defaults{
		IMAP: account.ProtocolDefaults{OAuthRefreshCommand: "token"},
	}}
	imap := &account.Account{Type: account.TypeIMAP}
	smtp := &account.Account{Type: account.TypeSMTP}

	auto := &Dialer{Resolver: r}
	assert.True(t, auto.useOAuth(imap))
	assert.False(t, auto.useOAuth(smtp))

	assert.False(t, (&Dialer{Resolver: r, Method: MethodPassword}).useOAuth(imap))
	assert.True(t, (&Dialer{Resolver: r, Method: MethodOAuthBearer}).useOAuth(smtp))
}

func TestSASLClientPlain(t *testing.T) {
	d := &Dialer{Resolver: &account.Resolver{Defaults: account.Defaults{
		SMTP: account.ProtocolDefaults{User: "me", Pass: "pw"},
	}}}

	c, err := d.saslClient(context.Background(), &account.Account{Host: "h", Type: account.TypeSMTP})
	require.NoError(t, err)

	mech, ir, err := c.Start()
	require.NoError(t, err)
	assert.Equal(t, sasl.Plain, mech)
	assert.Equal(t, "\x00me\x00pw", string(ir))
}

func TestSASLClientOAuthBearer(t *testing.T) {
	d := &Dialer{Resolver: &account.Resolver{
		Defaults: account.Defaults{IMAP: account.ProtocolDefaults{
			User: "me", OAuthRefreshCommand: "token",
		}},
		Runner: staticRunner("abc"),
	}}

	a := &account.Account{Host: "imap.example.com", Type: account.TypeIMAP, Secure: true}
	c, err := d.saslClient(context.Background(), a)
	require.NoError(t, err)

	mech, ir, err := c.Start()
	require.NoError(t, err)
	assert.Equal(t, sasl.OAuthBearer, mech)
	assert.Equal(t, "n,a=me,\x01host=imap.example.com\x01port=993\x01auth=Bearer abc\x01\x01", string(ir))

	resp, err := c.Next([]byte(`{"status":"invalid_token"}`))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, resp)
}

func TestSASLClientMissingCredentials(t *testing.T) {
	d := &Dialer{Resolver: &account.Resolver{}}

	_, err := d.saslClient(context.Background(), &account.Account{Host: "h", Type: account.TypeSMTP})
	assert.ErrorIs(t, err, account.ErrMissingCredential)

	d.Method = MethodOAuthBearer
	_, err = d.saslClient(context.Background(), &account.Account{Host: "h", Type: account.TypeSMTP, User: "me", Flags: account.FlagUser})
	assert.ErrorIs(t, err, account.ErrRefreshCommandMissing)
}

// closedAddr returns a local address nothing is listening on.
func closedAddr(t *testing.T) (string, uint16) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return "127.0.0.1", uint16(port)
}

func TestDialConnectionRefused(t *testing.T) {
	host, port := closedAddr(t)
	d := &Dialer{Resolver: &account.Resolver{}}

	imap := &account.Account{Host: host, Port: port, Type: account.TypeIMAP, Flags: account.FlagPort}
	_, err := d.DialIMAP(context.Background(), imap)
	require.Error(t, err)
	assert.False(t, IsAuthError(err))

	smtp := &account.Account{Host: host, Port: port, Type: account.TypeSMTP, Flags: account.FlagPort}
	_, err = d.DialSMTP(context.Background(), smtp)
	require.Error(t, err)
	assert.False(t, IsAuthError(err))
}

func TestDialHonorsCancelledContext(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	port := uint16(l.Addr().(*net.TCPAddr).Port)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &Dialer{Resolver: &account.Resolver{}}

	for _, a := range []*account.Account{
		{Host: "127.0.0.1", Port: port, Type: account.TypeIMAP, Flags: account.FlagPort},
		{Host: "127.0.0.1", Port: port, Type: account.TypeIMAP, Flags: account.FlagPort, Secure: true},
		{Host: "127.0.0.1", Port: port, Type: account.TypeSMTP, Flags: account.FlagPort},
	} {
		var err error
		if a.Type == account.TypeIMAP {
			_, err = d.DialIMAP(ctx, a)
		} else {
			_, err = d.DialSMTP(ctx, a)
		}
		require.Error(t, err, a.String())
		assert.ErrorIs(t, err, context.Canceled, a.String())
		assert.False(t, IsAuthError(err))
	}
}

func TestDialWrongType(t *testing.T) {
	d := &Dialer{Resolver: &account.Resolver{}}

	_, err := d.DialIMAP(context.Background(), &account.Account{Host: "h", Type: account.TypePOP})
	assert.Error(t, err)
	_, err = d.DialSMTP(context.Background(), &account.Account{Host: "h", Type: account.TypeIMAP})
	assert.Error(t, err)
	assert.Error(t, d.Check(context.Background(), &account.Account{Host: "h", Type: account.TypeNNTP}))
}

func TestAuthError(t *testing.T) {
	cause := errors.New("NO [AUTHENTICATIONFAILED]")
	err := error(&AuthError{Account: "imap://me@h/", Mech: "LOGIN", Err: cause})

	assert.True(t, IsAuthError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "authentication failed for imap://me@h/ (LOGIN): NO [AUTHENTICATIONFAILED]", err.Error())
	assert.False(t, IsAuthError(cause))
}
