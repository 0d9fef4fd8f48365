package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kwachanet/hotspot/pkg/clients"
	"go.uber.org/zap"
)

type Kind string

const (
	KindVoucherCode      Kind = "voucherCode"
	KindPaymentFailure   Kind = "paymentFailure"
	KindPaymentCancelled Kind = "paymentCancelled"
	KindWelcome          Kind = "welcome"
	KindOTP              Kind = "otp"
)

// Dispatcher delivers customer notifications. Delivery is best-effort:
// implementations log failures and never return them, settlement must not
// stall on SMS problems.
type Dispatcher interface {
	Send(ctx context.Context, kind Kind, destination string, payload map[string]string)
}

type smsRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

// SMSDispatcher posts rendered messages to an external SMS gateway.
type SMSDispatcher struct {
	url      string
	senderID string
	client   clients.HTTPClientI
}

func NewSMSDispatcher(url, senderID string, client clients.HTTPClientI) *SMSDispatcher {
	return &SMSDispatcher{
		url:      url,
		senderID: senderID,
		client:   client,
	}
}

func (d *SMSDispatcher) Send(ctx context.Context, kind Kind, destination string, payload map[string]string) {
	message, err := renderMessage(kind, payload)
	if err != nil {
		zap.L().Error("can't render notification", zap.String("kind", string(kind)), zap.Error(err))
		return
	}

	body, err := json.Marshal(smsRequest{To: destination, From: d.senderID, Message: message})
	if err != nil {
		zap.L().Error("can't marshal sms request", zap.Error(err))
		return
	}

	statusCode, _, err := d.client.Post(d.url+"/v1/messages", nil, body)
	if err != nil {
		zap.L().Error("sms dispatch failed", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	if statusCode >= http.StatusBadRequest {
		zap.L().Error("sms gateway rejected message", zap.String("kind", string(kind)), zap.Int("status", statusCode))
		return
	}
	zap.L().Info("notification sent", zap.String("kind", string(kind)), zap.String("to", destination))
}

func renderMessage(kind Kind, payload map[string]string) (string, error) {
	switch kind {
	case KindVoucherCode:
		return fmt.Sprintf("Your Wi-Fi voucher code is %s. Valid for %s hours, %s data. Enjoy!",
			payload["code"], payload["duration"], payload["dataLimit"]), nil
	case KindPaymentFailure:
		return fmt.Sprintf("Your payment %s could not be completed: %s. The voucher is still available, please try again.",
			payload["reference"], payload["reason"]), nil
	case KindPaymentCancelled:
		return fmt.Sprintf("Your payment %s was cancelled. No money has been taken.", payload["reference"]), nil
	case KindWelcome:
		return "Welcome to KwachaNet hotspot! Your account is ready.", nil
	case KindOTP:
		return fmt.Sprintf("Your KwachaNet verification code is %s.", payload["otp"]), nil
	default:
		return "", fmt.Errorf("unknown notification kind: %s", kind)
	}
}

// LogDispatcher is used when no SMS gateway is configured; it only records
// what would have been sent.
type LogDispatcher struct{}

func (d *LogDispatcher) Send(_ context.Context, kind Kind, destination string, payload map[string]string) {
	message, err := renderMessage(kind, payload)
	if err != nil {
		zap.L().Error("can't render notification", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	zap.L().Info("notification (log only)",
		zap.String("kind", string(kind)),
		zap.String("to", destination),
		zap.String("message", message),
	)
}
