package storefront

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Platform identifies which storefront produced a purchase record.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// Purchase is a raw storefront purchase record as returned by the store
// client, before normalization. Field encodings vary between platforms;
// FlexTime absorbs the transaction-date variants.
type Purchase struct {
	ProductID       string   `json:"productId"`
	PurchaseToken   string   `json:"purchaseToken"`
	TransactionDate FlexTime `json:"transactionDate"`
	Platform        Platform `json:"platform"`
}

// NormalizedPurchase is the canonical purchase shape handed to selection.
// Produced fresh on every storefront query and never persisted.
type NormalizedPurchase struct {
	ProductID       string
	PurchaseToken   string
	TransactionDate time.Time
	Platform        Platform
}

// FlexTime decodes a timestamp that arrives as either a numeric epoch-millis
// value, an epoch-millis string, or an RFC 3339 date string, depending on
// the source platform. The zero value means "not supplied".
type FlexTime struct {
	time.Time
}

// FlexTimeOf wraps a time.Time in a FlexTime. Useful for building raw
// purchases in tests and fakes.
func FlexTimeOf(t time.Time) FlexTime {
	return FlexTime{Time: t}
}

func (ft *FlexTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		ft.Time = time.Time{}
		return nil
	}

	// Numeric epoch millis is the common Android encoding.
	if millis, err := strconv.ParseInt(s, 10, 64); err == nil {
		ft.Time = time.UnixMilli(millis).UTC()
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTransactionDate, s)
	}

	// Some store clients stringify the millis value.
	if millis, err := strconv.ParseInt(str, 10, 64); err == nil {
		ft.Time = time.UnixMilli(millis).UTC()
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionDate, str)
	}
	ft.Time = parsed.UTC()
	return nil
}

func (ft FlexTime) MarshalJSON() ([]byte, error) {
	if ft.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(ft.UnixMilli(), 10)), nil
}
