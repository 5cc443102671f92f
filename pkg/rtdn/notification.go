package rtdn

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// NotificationType enumerates Google Play subscription notification types.
type NotificationType int

const (
	TypeRecovered            NotificationType = 1
	TypeRenewed              NotificationType = 2
	TypeCanceled             NotificationType = 3
	TypePurchased            NotificationType = 4
	TypeOnHold               NotificationType = 5
	TypeInGracePeriod        NotificationType = 6
	TypeRestarted            NotificationType = 7
	TypePriceChangeConfirmed NotificationType = 8
	TypeDeferred             NotificationType = 9
	TypePaused               NotificationType = 10
	TypePauseScheduleChanged NotificationType = 11
	TypeRevoked              NotificationType = 12
	TypeExpired              NotificationType = 13
)

var typeNames = map[NotificationType]string{
	TypeRecovered:            "SUBSCRIPTION_RECOVERED",
	TypeRenewed:              "SUBSCRIPTION_RENEWED",
	TypeCanceled:             "SUBSCRIPTION_CANCELED",
	TypePurchased:            "SUBSCRIPTION_PURCHASED",
	TypeOnHold:               "SUBSCRIPTION_ON_HOLD",
	TypeInGracePeriod:        "SUBSCRIPTION_IN_GRACE_PERIOD",
	TypeRestarted:            "SUBSCRIPTION_RESTARTED",
	TypePriceChangeConfirmed: "SUBSCRIPTION_PRICE_CHANGE_CONFIRMED",
	TypeDeferred:             "SUBSCRIPTION_DEFERRED",
	TypePauseScheduleChanged: "SUBSCRIPTION_PAUSE_SCHEDULE_CHANGED",
	TypePaused:               "SUBSCRIPTION_PAUSED",
	TypeRevoked:              "SUBSCRIPTION_REVOKED",
	TypeExpired:              "SUBSCRIPTION_EXPIRED",
}

// String returns the documented notification name, or the raw number for
// types this package does not know about.
func (t NotificationType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return strconv.Itoa(int(t))
}

// SubscriptionNotification carries the subscription-specific part of a
// developer notification.
type SubscriptionNotification struct {
	Version          string           `json:"version"`
	NotificationType NotificationType `json:"notificationType"`
	PurchaseToken    string           `json:"purchaseToken"`
	SubscriptionID   string           `json:"subscriptionId"`
}

// TestNotification is published when a developer requests a test push from
// the Play console. It carries no subscription data.
type TestNotification struct {
	Version string `json:"version"`
}

// DeveloperNotification is the payload Google Play publishes for real-time
// developer notifications.
type DeveloperNotification struct {
	Version                  string                    `json:"version"`
	PackageName              string                    `json:"packageName"`
	EventTimeMillis          string                    `json:"eventTimeMillis"`
	SubscriptionNotification *SubscriptionNotification `json:"subscriptionNotification,omitempty"`
	TestNotification         *TestNotification         `json:"testNotification,omitempty"`
}

// pubSubEnvelope is the push-delivery wrapper: the notification itself is
// base64-encoded in message.data.
type pubSubEnvelope struct {
	Message struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// DecodeNotification parses a webhook body into a DeveloperNotification.
// Two shapes are accepted: a Pub/Sub push envelope with the notification
// base64-encoded under message.data, and the bare notification JSON used by
// direct deliveries and tests. Only bodies that fail to decode are
// ErrMalformedPayload; a valid notification carrying neither a subscription
// nor a test payload (one-time products and the like share the topic) is
// returned as-is for the processor to acknowledge.
func DecodeNotification(body []byte) (*DeveloperNotification, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	var envelope pubSubEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message.Data != "" {
		decoded, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			return nil, errors.Join(ErrMalformedPayload, err)
		}
		body = decoded
	}

	var notification DeveloperNotification
	if err := json.Unmarshal(body, &notification); err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}
	return &notification, nil
}
