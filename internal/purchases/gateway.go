package purchases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RESTGateway talks to a RevenueCat-style subscriber API over HTTPS.
type RESTGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRESTGateway creates a gateway against the given API base URL.
func NewRESTGateway(baseURL, apiKey string) *RESTGateway {
	return &RESTGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// subscriberResponse is the wire shape of the subscriber resource. Only the
// entitlement map is consumed.
type subscriberResponse struct {
	Subscriber struct {
		Entitlements map[string]struct {
			ExpiresDate *time.Time `json:"expires_date"`
		} `json:"entitlements"`
	} `json:"subscriber"`
}

// offeringsResponse is the wire shape of the offerings resource.
type offeringsResponse struct {
	CurrentOfferingID string `json:"current_offering_id"`
	Offerings         []struct {
		Identifier string `json:"identifier"`
		Packages   []struct {
			Identifier string `json:"identifier"`
			ProductID  string `json:"platform_product_identifier"`
			Price      string `json:"price_string"`
		} `json:"packages"`
	} `json:"offerings"`
}

func (g *RESTGateway) Offerings(ctx context.Context, userID string) (*Offering, error) {
	var resp offeringsResponse
	path := fmt.Sprintf("/subscribers/%s/offerings", url.PathEscape(userID))
	if err := g.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	for _, o := range resp.Offerings {
		if o.Identifier != resp.CurrentOfferingID {
			continue
		}
		offering := &Offering{Identifier: o.Identifier}
		for _, p := range o.Packages {
			offering.Packages = append(offering.Packages, Package{
				Identifier:  p.Identifier,
				ProductID:   p.ProductID,
				PriceString: p.Price,
			})
		}
		return offering, nil
	}
	// No current offering configured on the backend.
	return nil, nil
}

func (g *RESTGateway) Purchase(ctx context.Context, userID, packageID string) (*CustomerInfo, error) {
	body := map[string]string{
		"app_user_id": userID,
		"package_id":  packageID,
	}
	var resp subscriberResponse
	if err := g.do(ctx, http.MethodPost, "/receipts", body, &resp); err != nil {
		return nil, err
	}
	return customerInfoFrom(resp), nil
}

func (g *RESTGateway) Restore(ctx context.Context, userID string) (*CustomerInfo, error) {
	return g.CustomerInfo(ctx, userID)
}

func (g *RESTGateway) CustomerInfo(ctx context.Context, userID string) (*CustomerInfo, error) {
	var resp subscriberResponse
	path := fmt.Sprintf("/subscribers/%s", url.PathEscape(userID))
	if err := g.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return customerInfoFrom(resp), nil
}

// customerInfoFrom keeps entitlements that are unexpired (or have no expiry).
func customerInfoFrom(resp subscriberResponse) *CustomerInfo {
	info := &CustomerInfo{}
	now := time.Now()
	for name, e := range resp.Subscriber.Entitlements {
		if e.ExpiresDate == nil || e.ExpiresDate.After(now) {
			info.ActiveEntitlements = append(info.ActiveEntitlements, name)
		}
	}
	return info
}

func (g *RESTGateway) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("billing backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("billing backend returned %s for %s %s",
			resp.Status, method, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode billing response: %w", err)
	}
	return nil
}
