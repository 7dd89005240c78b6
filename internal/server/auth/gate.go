package auth

import (
	"strings"

	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// TokenVerifier is the part of TokenManager the gate depends on.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// Gate turns a raw Authorization value into an Identity. It is shared by the
// HTTP middleware and the gRPC interceptor.
type Gate struct {
	verifier TokenVerifier
}

func NewGate(v TokenVerifier) *Gate {
	return &Gate{verifier: v}
}

// Authenticate expects "Bearer <token>". Any value without exactly that
// two-part shape is reported as common.ErrMissingToken.
func (g *Gate) Authenticate(authorization string) (Identity, error) {
	parts := strings.Fields(authorization)
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) {
		return Identity{}, common.ErrMissingToken
	}

	return g.verifier.Verify(parts[1])
}
