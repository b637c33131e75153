package flow

import "context"

// ProviderSucceeded is the intent status a card provider reports when the
// charge has fully settled. Anything else leaves the booking unconfirmed.
const ProviderSucceeded = "succeeded"

// BillingDetails accompany the card confirmation call.
type BillingDetails struct {
	Name  string
	Email string
}

// ProviderIntent is the provider's view of a payment intent after a
// confirmation attempt.
type ProviderIntent struct {
	ID     string
	Status string
}

// CardProvider abstracts the hosted card widget: it holds the card input
// and confirms payment intents against the provider using an opaque client
// secret. A confirmation error means validation or decline; no backend
// call may follow it.
type CardProvider interface {
	ConfirmCardPayment(ctx context.Context, clientSecret string, billing BillingDetails) (*ProviderIntent, error)
}
