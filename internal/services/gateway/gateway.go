// Package gateway charges clients through a payment provider. Simulator is a
// sandbox provider that settles every charge instantly and signs its receipts.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/utils"
)

const (
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
	MethodUSSD         = "ussd"
	MethodCardano      = "cardano"

	StatusPaid = "PAID"
)

var ErrUnknownMethod = errors.New("unknown payment method")

type Channel struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Group  string `json:"group"`
	Escrow bool   `json:"escrow"`
}

var channels = []Channel{
	{Code: MethodCard, Name: "Debit / Credit Card", Group: "Card"},
	{Code: MethodBankTransfer, Name: "Bank Transfer", Group: "Bank"},
	{Code: MethodUSSD, Name: "USSD", Group: "Bank"},
	{Code: MethodCardano, Name: "Cardano (ADA) Escrow", Group: "Crypto", Escrow: true},
}

type Charge struct {
	ContractID uuid.UUID
	Amount     decimal.Decimal
	Method     string
}

// Receipt is what the provider returns for a settled charge. It is stored on
// the payment as JSON.
type Receipt struct {
	Reference  string    `json:"reference"`
	ContractID uuid.UUID `json:"contractId"`
	Amount     string    `json:"amount"`
	Method     string    `json:"method"`
	Status     string    `json:"status"`
	Signature  string    `json:"signature"`
	EscrowHash string    `json:"escrowHash,omitempty"`
	IssuedAt   time.Time `json:"issuedAt"`
}

type Gateway interface {
	Charge(ctx context.Context, ch Charge) (Receipt, error)
	Channels() []Channel
}

type Simulator struct {
	Secret string
	now    func() time.Time
}

func NewSimulator(secret string) *Simulator {
	return &Simulator{Secret: secret, now: time.Now}
}

// NormalizeMethod lower-cases method and checks it is a known channel. An
// empty method means card.
func NormalizeMethod(method string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(method))
	if m == "" {
		return MethodCard, nil
	}
	for _, ch := range channels {
		if ch.Code == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

func (s *Simulator) Channels() []Channel {
	out := make([]Channel, len(channels))
	copy(out, channels)
	return out
}

func (s *Simulator) Charge(ctx context.Context, ch Charge) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	method, err := NormalizeMethod(ch.Method)
	if err != nil {
		return Receipt{}, err
	}
	if !ch.Amount.IsPositive() {
		return Receipt{}, errors.New("charge amount must be greater than zero")
	}

	r := Receipt{
		Reference:  utils.GenerateTransactionRef(),
		ContractID: ch.ContractID,
		Amount:     ch.Amount.StringFixed(2),
		Method:     method,
		Status:     StatusPaid,
		IssuedAt:   s.now().UTC(),
	}
	r.Signature = s.generateSignature(signingString(r))
	if method == MethodCardano {
		r.EscrowHash = escrowHash(r.Reference, r.Signature)
	}
	return r, nil
}

// VerifyReceipt reports whether r was signed with this simulator's secret.
func (s *Simulator) VerifyReceipt(r Receipt) bool {
	want := s.generateSignature(signingString(r))
	return hmac.Equal([]byte(want), []byte(r.Signature))
}

func signingString(r Receipt) string {
	return r.Reference + "|" + r.Amount + "|" + r.Method
}

func (s *Simulator) generateSignature(data string) string {
	h := hmac.New(sha256.New, []byte(s.Secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// escrowHash mimics an on-chain transaction id for escrowed payments.
func escrowHash(ref, sig string) string {
	sum := sha256.Sum256([]byte(ref + ":" + sig))
	return hex.EncodeToString(sum[:])
}
