package jwtcodec

import (
	"fmt"
	"time"

	"github.com/cybergodev/jwtcodec/internal/core"
	"github.com/golang-jwt/jwt/v5"
	"github.com/valyala/fastjson"
)

// Inspect is InspectAt with the current time.
func (c *Codec) Inspect(token string) (*Inspection, error) {
	return c.InspectAt(token, time.Now())
}

// InspectAt reads the registered header fields and claims of token and
// reports whether it is expired or not yet valid at now. The signature is not
// verified. The token must have exactly three segments, a header naming a
// known algorithm and an object payload.
func (c *Codec) InspectAt(token string, now time.Time) (*Inspection, error) {
	_, payload, err := c.Decode(token)
	if err != nil {
		return nil, err
	}

	parts, _ := core.Split(token)
	if parts.Count != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrNotInspectable, parts.Count)
	}
	if payload == nil || payload.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrNotInspectable)
	}

	claims := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotInspectable, err)
	}

	in := &Inspection{
		Algorithm: parsed.Method.Alg(),
		Type:      headerString(parsed.Header, "typ"),
		KeyID:     headerString(parsed.Header, "kid"),
	}

	if in.Issuer, err = claims.GetIssuer(); err != nil {
		return nil, claimError("iss", err)
	}
	if in.Subject, err = claims.GetSubject(); err != nil {
		return nil, claimError("sub", err)
	}
	aud, err := claims.GetAudience()
	if err != nil {
		return nil, claimError("aud", err)
	}
	if len(aud) > 0 {
		in.Audience = []string(aud)
	}

	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, claimError("iat", err)
	}
	nbf, err := claims.GetNotBefore()
	if err != nil {
		return nil, claimError("nbf", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, claimError("exp", err)
	}

	in.IssuedAt = claimTime(iat)
	in.NotBefore = claimTime(nbf)
	in.ExpiresAt = claimTime(exp)
	if exp != nil {
		in.Expired = !now.Before(exp.Time)
	}
	if nbf != nil {
		in.NotYetValid = now.Before(nbf.Time)
	}
	return in, nil
}

func headerString(header map[string]any, name string) string {
	s, _ := header[name].(string)
	return s
}

func claimError(name string, err error) error {
	return fmt.Errorf("%w: claim %q: %w", ErrNotInspectable, name, err)
}

func claimTime(d *jwt.NumericDate) *ClaimTime {
	if d == nil {
		return nil
	}
	sec := d.Unix()
	utc, _ := FormatUnix(sec)
	return &ClaimTime{Unix: sec, UTC: utc}
}
