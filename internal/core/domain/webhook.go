package domain

import "encoding/json"

// ProviderEventChargeSuccess is the only provider event acted upon; all
// other events are acknowledged and ignored.
const ProviderEventChargeSuccess = "charge.success"

// ProviderChargeData is the data block of a provider webhook event.
type ProviderChargeData struct {
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"` // Minor units
	Status    string          `json:"status"`
	Currency  string          `json:"currency,omitempty"`
	PaidAt    string          `json:"paid_at,omitempty"`
	Channel   string          `json:"channel,omitempty"`
	Customer  json.RawMessage `json:"customer,omitempty"`
}

// ProviderWebhook is the inbound webhook payload from the payment provider.
type ProviderWebhook struct {
	Event string             `json:"event"`
	Data  ProviderChargeData `json:"data"`
}
