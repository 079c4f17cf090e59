package connect

import (
	"github.com/emersion/go-sasl"
)

// bearerClient sends a pre-built OAUTHBEARER initial response. go-sasl's
// own client assembles the message itself; here the resolver owns it.
type bearerClient struct {
	msg []byte
}

var _ sasl.Client = (*bearerClient)(nil)

func (c *bearerClient) Start() (string, []byte, error) {
	return sasl.OAuthBearer, c.msg, nil
}

// Next answers the server's JSON error challenge with the single ^A that
// RFC 7628 requires; the server then fails the exchange.
func (c *bearerClient) Next(challenge []byte) ([]byte, error) {
	return []byte{0x01}, nil
}
