package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/mailacct/internal/app"
	"github.com/nhle/mailacct/internal/connect"
	"github.com/nhle/mailacct/internal/mailbox"
	"github.com/nhle/mailacct/internal/mailto"
	"github.com/nhle/mailacct/internal/theme"
	"github.com/nhle/mailacct/internal/uri"
)

type openFunc func() (*app.App, func(), error)

func newParseCmd() *cobra.Command {
	var pathOnly, encodePath bool

	cmd := &cobra.Command{
		Use:   "parse <uri>",
		Short: "Show the components of a URI and its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var flags uri.Flags
			if pathOnly {
				flags |= uri.PathOnly
			}
			if encodePath {
				flags |= uri.EncodePath
			}
			out, err := describe(args[0], flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pathOnly, "path-only", false, "Format without the // authority marker")
	cmd.Flags().BoolVar(&encodePath, "encode-path", false, "Percent-encode path segments when formatting")
	return cmd
}

// describe renders everything known about raw.
func describe(raw string, flags uri.Flags) (string, error) {
	if uri.SchemeOf(raw) == uri.SchemeMailto {
		return describeMailto(raw)
	}

	u, err := uri.Parse(raw)
	if err != nil {
		return "", err
	}
	formatted, err := u.Format(flags)
	if err != nil {
		return "", err
	}

	opt := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	pass := ""
	if u.Pass != nil {
		pass = "********"
	}
	port := ""
	if u.Port != 0 {
		port = strconv.Itoa(int(u.Port))
	}

	var b strings.Builder
	b.WriteString(theme.SchemeStyle(u.Scheme.Name()).Render(u.Scheme.Name()))
	b.WriteString("\n")
	b.WriteString(theme.Fields(
		"user", opt(u.User),
		"password", pass,
		"host", opt(u.Host),
		"port", port,
		"path", opt(u.Path),
	))
	for _, q := range u.Query {
		b.WriteString("\n" + theme.Field("?"+q.Name, q.Value))
	}
	b.WriteString("\n" + theme.Field("formatted", formatted))

	p := mailbox.New(raw)
	if err := p.Resolve(); err == nil {
		b.WriteString("\n" + theme.Field("mailbox", p.Kind().String()))
		b.WriteString("\n" + theme.Field("canonical", p.Canon()))
	}
	return b.String(), nil
}

func describeMailto(raw string) (string, error) {
	m, err := mailto.Parse(raw)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(theme.SchemeStyle("mailto").Render("mailto"))
	for _, key := range []string{"To", "Cc", "Bcc"} {
		list, err := m.Header.AddressList(key)
		if err != nil {
			return "", err
		}
		addrs := make([]string, 0, len(list))
		for _, a := range list {
			addrs = append(addrs, a.String())
		}
		b.WriteString("\n" + theme.Field(strings.ToLower(key), strings.Join(addrs, ", ")))
	}
	subject, _ := m.Header.Subject()
	b.WriteString("\n" + theme.Field("subject", subject))
	b.WriteString("\n" + theme.Field("body", m.Body))
	if len(m.Ignored) > 0 {
		b.WriteString("\n" + theme.MutedStyle.Render("ignored: "+strings.Join(m.Ignored, ", ")))
	}
	return b.String(), nil
}

func newAddCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <uri>",
		Short: "Register an account; a password in the URI goes to the keyring",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()

			rec, err := a.AddAccount(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme.SuccessStyle.Render("saved"), rec.Name, rec.URI)
			return nil
		},
	}
}

func newListCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()

			accounts, err := a.Accounts(cmd.Context())
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), theme.MutedStyle.Render("no accounts"))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), theme.HeaderStyle.Render("Accounts"))
			for _, rec := range accounts {
				fmt.Fprintln(cmd.OutOrStdout(), theme.Field(rec.Name, rec.URI))
			}
			return nil
		},
	}
}

func newRemoveCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove an account and its stored password",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := a.RemoveAccount(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme.SuccessStyle.Render("removed"), args[0])
			return nil
		},
	}
}

func newTokenCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "token <name|uri>",
		Short: "Print the base64 OAUTHBEARER token for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()

			tok, err := a.Token(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
}

func newCheckCmd(open openFunc) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "check <name|uri>",
		Short: "Log in to an IMAP or SMTP account and disconnect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := connect.ParseMethod(method)
			if err != nil {
				return err
			}

			a, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()
			a.Dialer.Method = m

			acct, err := a.Check(cmd.Context(), args[0])
			if err != nil {
				if connect.IsAuthError(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), theme.ErrorStyle.Render("login failed"))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme.SuccessStyle.Render("ok"), acct.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", "", "Authentication method: password or oauthbearer (default: auto)")
	return cmd
}
