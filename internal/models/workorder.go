package models

import (
	"fmt"
	"time"
)

// work order status
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusBilled     = "billed"
	StatusCancelled  = "cancelled"
)

// ValidStatus reports whether s is a known work order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusBilled, StatusCancelled:
		return true
	}
	return false
}

// FeeLine is one accessorial fee charge on a work order.
// JSON field names match the serialized fee_data column.
type FeeLine struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

// WorkOrder is a customer billing event grouping one or more fee lines.
// ReferenceNumbers and FeeLines are stored as JSON text in the database.
type WorkOrder struct {
	ID               int64
	CustomerID       string
	CustomerName     string
	ReferenceNumbers []string
	FeeLines         []FeeLine
	FeeDate          *time.Time
	DateCreated      time.Time
	Barcode          string
	Status           string
	Synced           bool
	SyncDate         *time.Time
	CreatedBy        string
	Notes            string
}

// Validate checks the fields required to create a work order.
func (o *WorkOrder) Validate() error {
	if o.CustomerID == "" {
		return ErrMissingCustomer
	}
	if len(o.ReferenceNumbers) == 0 {
		return ErrNoReferences
	}
	if len(o.FeeLines) == 0 {
		return ErrNoFeeLines
	}
	for _, fl := range o.FeeLines {
		if fl.Type == "" {
			return ErrNoFeeLines
		}
		if fl.Quantity <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidQuantity, fl.Type)
		}
	}
	return nil
}

// SyncEligible reports whether the order can be replayed into Veracore.
func (o *WorkOrder) SyncEligible() error {
	if len(o.FeeLines) == 0 {
		return ErrNoFeeLines
	}
	if len(o.ReferenceNumbers) == 0 {
		return ErrNoReferences
	}
	return nil
}

// EffectiveFeeDate is the fee date applied to every fee line,
// falling back to the creation date when unset.
func (o *WorkOrder) EffectiveFeeDate() time.Time {
	if o.FeeDate != nil {
		return *o.FeeDate
	}
	return o.DateCreated
}

// Barcode format: WO-<id>-<unix timestamp>.
func BarcodeFor(id int64, ts time.Time) string {
	return fmt.Sprintf("WO-%d-%d", id, ts.Unix())
}
