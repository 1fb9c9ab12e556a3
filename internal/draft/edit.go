package draft

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pharmacy-desk/internal/common"
	"github.com/noah-isme/pharmacy-desk/internal/salesorder"
	"github.com/noah-isme/pharmacy-desk/internal/units"
)

// LinePatch changes only the fields that are set.
type LinePatch struct {
	ProductID        *int64           `json:"productId"`
	ItemName         *string          `json:"itemName"`
	HSNCode          *string          `json:"hsnCode"`
	BatchNo          *string          `json:"batchNo"`
	Mfg              *string          `json:"mfg"`
	ExpDate          *string          `json:"expDate"`
	MfgDate          *string          `json:"mfgDate"`
	Packing          *string          `json:"packing"`
	MRP              *decimal.Decimal `json:"mrp"`
	Quantity         *int64           `json:"quantity"`
	TaxRatePercent   *decimal.Decimal `json:"taxRatePercent"`
	DiscountPercent  *decimal.Decimal `json:"discountPercent"`
	UnitID           *int64           `json:"unitId"`
	SelectedUnitType *units.Selector  `json:"selectedUnitType"`
	PackagingSize    *int64           `json:"packagingSize"`
}

func (p LinePatch) apply(l *salesorder.Line) {
	setIf(&l.ProductID, p.ProductID)
	setIf(&l.ItemName, p.ItemName)
	setIf(&l.HSNCode, p.HSNCode)
	setIf(&l.BatchNo, p.BatchNo)
	setIf(&l.Mfg, p.Mfg)
	setIf(&l.ExpDate, p.ExpDate)
	setIf(&l.MfgDate, p.MfgDate)
	setIf(&l.Packing, p.Packing)
	setIf(&l.MRP, p.MRP)
	setIf(&l.Quantity, p.Quantity)
	setIf(&l.TaxRatePercent, p.TaxRatePercent)
	setIf(&l.DiscountPercent, p.DiscountPercent)
	setIf(&l.UnitID, p.UnitID)
	setIf(&l.SelectedUnitType, p.SelectedUnitType)
	setIf(&l.PackagingSize, p.PackagingSize)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Payment is the payment section of a draft.
type Payment struct {
	PaymentStatusID        int64           `json:"paymentStatusId"`
	PaymentTypeID          int64           `json:"paymentTypeId"`
	LinkWallet             bool            `json:"linkWallet"`
	DeductibleWalletAmount decimal.Decimal `json:"deductibleWalletAmount"`
	ReceivedAmount         decimal.Decimal `json:"receivedAmount"`
}

// shapeCheck rejects edits that break the structural rules of an order.
// Business rules are left to quote and submit.
func shapeCheck(order salesorder.Order) error {
	if problems := salesorder.CheckShape(order); len(problems) > 0 {
		return problems.AppError()
	}
	return nil
}

// AddLine appends a line and assigns its id.
func (s *Store) AddLine(ctx context.Context, id string, line salesorder.Line) (Draft, error) {
	return s.Update(ctx, id, func(d *Draft) error {
		line.LineID = uuid.NewString()
		d.Order.Lines = append(d.Order.Lines, line)
		return shapeCheck(d.Order)
	})
}

// UpdateLine patches one line.
func (s *Store) UpdateLine(ctx context.Context, id, lineID string, patch LinePatch) (Draft, error) {
	return s.Update(ctx, id, func(d *Draft) error {
		for i := range d.Order.Lines {
			if d.Order.Lines[i].LineID == lineID {
				patch.apply(&d.Order.Lines[i])
				return shapeCheck(d.Order)
			}
		}
		return ErrLineNotFound
	})
}

// RemoveLine drops one line.
func (s *Store) RemoveLine(ctx context.Context, id, lineID string) (Draft, error) {
	return s.Update(ctx, id, func(d *Draft) error {
		for i := range d.Order.Lines {
			if d.Order.Lines[i].LineID == lineID {
				d.Order.Lines = append(d.Order.Lines[:i], d.Order.Lines[i+1:]...)
				return nil
			}
		}
		return ErrLineNotFound
	})
}

// SetCustomer selects the buying customer.
func (s *Store) SetCustomer(ctx context.Context, id string, customerID int64) (Draft, error) {
	if customerID <= 0 {
		return Draft{}, common.NewAppError("BAD_REQUEST", "customerId must be positive", http.StatusBadRequest, nil)
	}
	return s.Update(ctx, id, func(d *Draft) error {
		d.Order.CustomerID = customerID
		return nil
	})
}

// SetPayment replaces the payment section.
func (s *Store) SetPayment(ctx context.Context, id string, p Payment) (Draft, error) {
	return s.Update(ctx, id, func(d *Draft) error {
		d.Order.PaymentStatusID = p.PaymentStatusID
		d.Order.PaymentTypeID = p.PaymentTypeID
		d.Order.LinkWallet = p.LinkWallet
		d.Order.DeductibleWalletAmount = p.DeductibleWalletAmount
		d.Order.ReceivedAmount = p.ReceivedAmount
		return shapeCheck(d.Order)
	})
}
