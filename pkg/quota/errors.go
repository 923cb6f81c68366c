package quota

import "errors"

var (
	ErrNoActiveSubscription = errors.New("no active subscription bundles, please purchase a bundle to continue")
	ErrQuotaExhausted       = errors.New("all subscription bundles exhausted, please purchase a new bundle")
)

// IsPaymentRequired reports whether err means the user must buy or renew a bundle.
func IsPaymentRequired(err error) bool {
	return errors.Is(err, ErrNoActiveSubscription) || errors.Is(err, ErrQuotaExhausted)
}
