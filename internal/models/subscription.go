package models

import "github.com/smoketrack/smoketrack/internal/purchases"

// PurchaseRequest is the POST /subscription/purchase payload.
type PurchaseRequest struct {
	PackageID string `json:"package_id"`
}

// PurchaseResponse is returned by the purchase and restore endpoints.
type PurchaseResponse struct {
	Success bool                    `json:"success"`
	Info    *purchases.CustomerInfo `json:"info,omitempty"`
	Error   string                  `json:"error,omitempty"`
}
