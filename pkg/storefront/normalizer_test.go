package storefront_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muscleai/entitlement/pkg/storefront"
)

type fakeStoreClient struct {
	purchases []storefront.Purchase
	err       error
}

func (f *fakeStoreClient) ActivePurchases(ctx context.Context) ([]storefront.Purchase, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.purchases, nil
}

func TestFlexTime_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
		want time.Time
	}{
		{
			name: "epoch millis number",
			json: `1700000000000`,
			want: time.UnixMilli(1700000000000).UTC(),
		},
		{
			name: "epoch millis string",
			json: `"1700000000000"`,
			want: time.UnixMilli(1700000000000).UTC(),
		},
		{
			name: "rfc3339 string",
			json: `"2023-11-14T22:13:20Z"`,
			want: time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC),
		},
		{
			name: "null",
			json: `null`,
			want: time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ft storefront.FlexTime
			require.NoError(t, json.Unmarshal([]byte(tt.json), &ft))
			assert.True(t, tt.want.Equal(ft.Time), "got %v, want %v", ft.Time, tt.want)
		})
	}

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		var ft storefront.FlexTime
		err := json.Unmarshal([]byte(`"next tuesday"`), &ft)
		require.ErrorIs(t, err, storefront.ErrInvalidTransactionDate)
	})
}

func TestNormalizer_FetchActivePurchases(t *testing.T) {
	t.Parallel()

	t.Run("normalizes purchases", func(t *testing.T) {
		t.Parallel()

		txDate := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		client := &fakeStoreClient{purchases: []storefront.Purchase{
			{
				ProductID:       "muscleai.pro.monthly",
				PurchaseToken:   "tok-1",
				TransactionDate: storefront.FlexTimeOf(txDate),
				Platform:        storefront.PlatformAndroid,
			},
		}}

		n := storefront.NewNormalizer(client)
		got, err := n.FetchActivePurchases(context.Background())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "muscleai.pro.monthly", got[0].ProductID)
		assert.Equal(t, "tok-1", got[0].PurchaseToken)
		assert.True(t, txDate.Equal(got[0].TransactionDate))
		assert.Equal(t, storefront.PlatformAndroid, got[0].Platform)
	})

	t.Run("missing transaction date falls back to now", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		client := &fakeStoreClient{purchases: []storefront.Purchase{
			{ProductID: "muscleai.basic.monthly", PurchaseToken: "tok-2"},
		}}

		n := storefront.NewNormalizer(client, storefront.WithClock(func() time.Time { return now }))
		got, err := n.FetchActivePurchases(context.Background())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, now.Equal(got[0].TransactionDate))
	})

	t.Run("empty list means zero purchases, not failure", func(t *testing.T) {
		t.Parallel()

		n := storefront.NewNormalizer(&fakeStoreClient{})
		got, err := n.FetchActivePurchases(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("transport failure wrapped in ErrStoreUnavailable", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection refused")
		n := storefront.NewNormalizer(&fakeStoreClient{err: cause})

		_, err := n.FetchActivePurchases(context.Background())
		require.ErrorIs(t, err, storefront.ErrStoreUnavailable)
		require.ErrorIs(t, err, cause)
	})

	t.Run("typed store errors preserved in chain", func(t *testing.T) {
		t.Parallel()

		n := storefront.NewNormalizer(&fakeStoreClient{
			err: errors.Join(storefront.ErrStoreUnavailable, storefront.ErrStoreOffline),
		})

		_, err := n.FetchActivePurchases(context.Background())
		require.ErrorIs(t, err, storefront.ErrStoreUnavailable)
		require.ErrorIs(t, err, storefront.ErrStoreOffline)
	})
}
