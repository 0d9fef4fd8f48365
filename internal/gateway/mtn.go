package gateway

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	MTNSuccessRate  = 0.85
	MTNDefaultDelay = 3 * time.Second
)

// NewMTNMoMo builds the MTN Mobile Money simulator. Pass a seeded rng in
// tests for deterministic outcomes; nil gets a time-seeded one.
func NewMTNMoMo(rng *rand.Rand, delay time.Duration) *Simulator {
	return &Simulator{
		name:        "MTN_MOMO",
		txnPrefix:   "MTN",
		successRate: MTNSuccessRate,
		delay:       delay,
		rng:         newRNG(rng),
		failures: []failureReason{
			{code: "PAYER_NOT_FOUND", message: "The phone number is not registered for MTN MoMo"},
			{code: "NOT_ENOUGH_FUNDS", message: "Insufficient balance on the MoMo account"},
			{code: "PAYMENT_NOT_APPROVED", message: "Payer rejected the authorization request"},
			{code: "EXPIRED", message: "Authorization request timed out"},
			{code: "INTERNAL_PROCESSING_ERROR", message: "MTN MoMo could not process the request"},
		},
		buildRaw: func(req Request, txnID string) any {
			return map[string]any{
				"financialTransactionId": txnID,
				"externalId":             req.Reference,
				"amount":                 fmt.Sprintf("%d", req.Amount),
				"currency":               "UGX",
				"payer": map[string]any{
					"partyIdType": "MSISDN",
					"partyId":     req.PhoneNumber,
				},
				"status": "SUCCESSFUL",
			}
		},
	}
}
