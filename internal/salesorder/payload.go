package salesorder

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/pharmacy-desk/internal/units"
)

// DiscountTypePercentage is the only discount type sent upstream.
const DiscountTypePercentage = "percentage"

// SaleOrderItem is one entry of saleOrderItems in the order-creation request.
type SaleOrderItem struct {
	ProductID                    int64       `json:"productId,omitempty"`
	ItemName                     string      `json:"itemName"`
	HSNCode                      string      `json:"hsnCode"`
	BatchNo                      string      `json:"batchNo"`
	Mfg                          string      `json:"mfg"`
	ExpDate                      string      `json:"expDate"`
	MfgDate                      string      `json:"mfgDate"`
	MRP                          json.Number `json:"mrp"`
	Packing                      string      `json:"packing"`
	Quantity                     json.Number `json:"quantity"`
	DiscountType                 *string     `json:"discountType"`
	DiscountValue                json.Number `json:"discountValue"`
	Tax                          json.Number `json:"tax"`
	UnitName                     string      `json:"unitName"`
	PackagingSize                int64       `json:"packagingSize"`
	Price                        json.Number `json:"price"`
	TaxAmount                    json.Number `json:"taxAmount"`
	AmountWithoutTax             json.Number `json:"amountWithoutTax"`
	DiscountAmount               json.Number `json:"discountAmount"`
	AmountWithDiscountWithoutTax json.Number `json:"amountWithDiscountWithoutTax"`
	TaxAfterDiscount             json.Number `json:"taxAfterDiscount"`
	TotalPayableAmount           json.Number `json:"totalPayableAmount"`
	NumberOfPacks                json.Number `json:"numberOfPacks,omitempty"`
}

// PaymentInfo summarises how the order total is being paid.
type PaymentInfo struct {
	Amount         json.Number `json:"amount"`
	TotalAmount    json.Number `json:"totalAmount"`
	ReceivedAmount json.Number `json:"receivedAmount"`
	Status         string      `json:"status"`
}

// CreateSaleOrderRequest is the body posted to the order service.
type CreateSaleOrderRequest struct {
	CustomerID             int64           `json:"customerId"`
	PaymentStatusID        int64           `json:"paymentStatusId"`
	PaymentTypeID          int64           `json:"paymentTypeId,omitempty"`
	LinkPayment            string          `json:"linkPayment"`
	DeductibleWalletAmount json.Number     `json:"deductibleWalletAmount"`
	PaidAmount             json.Number     `json:"paidAmount"`
	PaymentInfo            PaymentInfo     `json:"paymentInfo"`
	SaleOrderItems         []SaleOrderItem `json:"saleOrderItems"`
}

func num(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// BuildPayload shapes a priced order into the order-creation request. Totals
// must come from Aggregate over the same lines, in the same order.
func BuildPayload(order Order, totals Totals, settlement Settlement, kind PaymentKind) CreateSaleOrderRequest {
	items := make([]SaleOrderItem, 0, len(order.Lines))
	for i, line := range order.Lines {
		var b LineBreakdown
		if i < len(totals.Lines) {
			b = totals.Lines[i]
		}
		items = append(items, buildItem(line, b))
	}
	return CreateSaleOrderRequest{
		CustomerID:             order.CustomerID,
		PaymentStatusID:        order.PaymentStatusID,
		PaymentTypeID:          order.PaymentTypeID,
		LinkPayment:            strconv.FormatBool(order.LinkWallet),
		DeductibleWalletAmount: num(settlement.WalletUsed),
		PaidAmount:             num(settlement.ReceivedAmount),
		PaymentInfo: PaymentInfo{
			Amount:         num(settlement.RemainingPayable),
			TotalAmount:    num(totals.TotalWithTax),
			ReceivedAmount: num(settlement.ReceivedAmount),
			Status:         string(kind),
		},
		SaleOrderItems: items,
	}
}

func buildItem(line Line, b LineBreakdown) SaleOrderItem {
	a := b.Amounts
	kind := units.Classify(b.UnitLabel)

	quantity := decimal.NewFromInt(line.Quantity)
	if kind == units.KindTablet {
		quantity = a.ActualTabletCount
	}

	var discountType *string
	if line.DiscountPercent.IsPositive() {
		t := DiscountTypePercentage
		discountType = &t
	}

	item := SaleOrderItem{
		ProductID:                    line.ProductID,
		ItemName:                     line.ItemName,
		HSNCode:                      line.HSNCode,
		BatchNo:                      line.BatchNo,
		Mfg:                          line.Mfg,
		ExpDate:                      line.ExpDate,
		MfgDate:                      line.MfgDate,
		MRP:                          num(line.MRP),
		Packing:                      line.Packing,
		Quantity:                     num(quantity),
		DiscountType:                 discountType,
		DiscountValue:                num(line.DiscountPercent),
		Tax:                          num(line.TaxRatePercent),
		UnitName:                     b.UnitLabel,
		PackagingSize:                line.PackagingSize,
		Price:                        num(a.Price),
		TaxAmount:                    num(a.TaxAmount),
		AmountWithoutTax:             num(a.AmountWithoutTax),
		DiscountAmount:               num(a.DiscountAmount),
		AmountWithDiscountWithoutTax: num(a.AmountWithDiscountWithoutTax),
		TaxAfterDiscount:             num(a.TaxAfterDiscount),
		TotalPayableAmount:           num(a.TotalPayableAmount),
	}
	if kind == units.KindTablet {
		item.NumberOfPacks = num(a.NumberOfPacks)
	}
	return item
}
