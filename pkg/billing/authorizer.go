package billing

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// Charge describes one renewal payment attempt.
type Charge struct {
	BundleId  uuid.UUID
	UserId    uuid.UUID
	Amount    float64
	CardToken *string
}

// PaymentAuthorizer decides whether a renewal charge goes through.
// A false result with a nil error is a decline. A non-nil error means the
// outcome is unknown and the bundle must be left untouched.
type PaymentAuthorizer interface {
	Authorize(ctx context.Context, charge Charge) (bool, error)
}

type alwaysSucceeds struct{}

func AlwaysSucceeds() PaymentAuthorizer {
	return alwaysSucceeds{}
}

func (alwaysSucceeds) Authorize(ctx context.Context, charge Charge) (bool, error) {
	return true, nil
}

type alwaysDeclines struct{}

func AlwaysDeclines() PaymentAuthorizer {
	return alwaysDeclines{}
}

func (alwaysDeclines) Authorize(ctx context.Context, charge Charge) (bool, error) {
	return false, nil
}

// RandomFailure declines a fraction of charges. It stands in for a gateway in development.
type RandomFailure struct {
	mu   sync.Mutex
	rate float64
	rng  *rand.Rand
}

func NewRandomFailure(rate float64, seed int64) *RandomFailure {
	return &RandomFailure{
		rate: math.Max(0, math.Min(1, rate)),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomFailure) Authorize(ctx context.Context, charge Charge) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() >= r.rate, nil
}

// MidtransAuthorizer charges the stored card token through the Midtrans Core API.
type MidtransAuthorizer struct {
	client coreapi.Client
}

func NewMidtransAuthorizer(serverKey string, isProduction bool) *MidtransAuthorizer {
	env := midtrans.Sandbox
	if isProduction {
		env = midtrans.Production
	}

	a := &MidtransAuthorizer{}
	a.client.New(serverKey, env)
	return a
}

func (a *MidtransAuthorizer) Authorize(ctx context.Context, charge Charge) (bool, error) {
	if charge.CardToken == nil || *charge.CardToken == "" {
		return false, nil
	}

	req := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeCreditCard,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  "renew-" + charge.BundleId.String() + "-" + uuid.NewString()[:8],
			GrossAmt: int64(math.Round(charge.Amount)),
		},
		CreditCard: &coreapi.CreditCardDetails{
			TokenID: *charge.CardToken,
		},
	}

	res, midErr := a.client.ChargeTransaction(req)
	if midErr != nil {
		// 4xx from the gateway is a refusal of this card; anything else is unknown.
		if midErr.StatusCode >= 400 && midErr.StatusCode < 500 {
			return false, nil
		}
		return false, errors.New("midtrans error: " + midErr.GetMessage())
	}

	switch res.TransactionStatus {
	case "capture", "settlement":
		return res.FraudStatus == "" || res.FraudStatus == "accept", nil
	default:
		return false, nil
	}
}
