package purchases

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRESTGateway_CustomerInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscribers/user-1", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"subscriber": {
				"entitlements": {
					"premium":  {"expires_date": "2099-01-01T00:00:00Z"},
					"expired":  {"expires_date": "2020-01-01T00:00:00Z"},
					"lifetime": {"expires_date": null}
				}
			}
		}`))
	}))
	defer srv.Close()

	gw := NewRESTGateway(srv.URL, "key-1")
	info, err := gw.CustomerInfo(context.Background(), "user-1")
	require.NoError(t, err)

	assert.True(t, info.HasEntitlement("premium"))
	assert.True(t, info.HasEntitlement("lifetime"))
	assert.False(t, info.HasEntitlement("expired"))
}

func TestRESTGateway_OfferingsPicksCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscribers/user-1/offerings", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"current_offering_id": "default",
			"offerings": [
				{"identifier": "legacy", "packages": []},
				{"identifier": "default", "packages": [
					{"identifier": "monthly", "platform_product_identifier": "st_monthly", "price_string": "$2.99"}
				]}
			]
		}`))
	}))
	defer srv.Close()

	gw := NewRESTGateway(srv.URL, "key-1")
	offering, err := gw.Offerings(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, offering)

	assert.Equal(t, "default", offering.Identifier)
	require.Len(t, offering.Packages, 1)
	assert.Equal(t, "st_monthly", offering.Packages[0].ProductID)
}

func TestRESTGateway_NoCurrentOffering(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current_offering_id": "", "offerings": []}`))
	}))
	defer srv.Close()

	gw := NewRESTGateway(srv.URL, "key-1")
	offering, err := gw.Offerings(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, offering)
}

func TestRESTGateway_NonSuccessStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	gw := NewRESTGateway(srv.URL, "bad-key")
	_, err := gw.CustomerInfo(context.Background(), "user-1")
	assert.Error(t, err)
}
