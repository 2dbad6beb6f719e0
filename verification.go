package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	codeTTL         = 10 * time.Minute
	maxPendingCodes = 10000
)

var (
	ErrCodeExpired  = errors.New("verification code expired or missing")
	ErrCodeMismatch = errors.New("verification code mismatch")
)

// Verifier hands out four digit email verification codes. Codes expire
// after ten minutes and are consumed by a successful check.
type Verifier struct {
	codes    *expirable.LRU[string, string]
	mailer   Mailer
	ln       *Language
	generate func() (string, error)
}

func NewVerifier(mailer Mailer, ln *Language) *Verifier {
	return &Verifier{
		codes:    expirable.NewLRU[string, string](maxPendingCodes, nil, codeTTL),
		mailer:   mailer,
		ln:       ln,
		generate: generateCode,
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}

// Send stores a fresh code for email and mails it. A new code replaces any
// pending one.
func (v *Verifier) Send(ctx context.Context, email string) error {
	code, err := v.generate()
	if err != nil {
		return err
	}
	v.codes.Add(email, code)
	subject := v.ln.Lang("Campus map email verification")
	body := fmt.Sprintf(v.ln.Lang("Your verification code is %s. It expires in 10 minutes."), code)
	if err := v.mailer.Send(ctx, email, subject, body); err != nil {
		v.codes.Remove(email)
		return fmt.Errorf("sending code to %s: %w", email, err)
	}
	return nil
}

func (v *Verifier) Verify(email, code string) error {
	stored, ok := v.codes.Get(email)
	if !ok {
		return ErrCodeExpired
	}
	if stored != code {
		return ErrCodeMismatch
	}
	v.codes.Remove(email)
	return nil
}
