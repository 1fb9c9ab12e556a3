package salesorder

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pharmacy-desk/internal/common"
)

// Problem is one user-facing validation message.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every problem found in an order.
type ValidationErrors []Problem

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, p := range v {
		msgs = append(msgs, p.Message)
	}
	return strings.Join(msgs, "; ")
}

// AppError wraps the problems for the HTTP layer.
func (v ValidationErrors) AppError() *common.AppError {
	msg := "order is not valid"
	if len(v) > 0 {
		msg = v[0].Message
	}
	appErr := common.NewAppError("VALIDATION_FAILED", msg, http.StatusUnprocessableEntity, v)
	appErr.Details = v
	return appErr
}

func (v *ValidationErrors) add(field, format string, args ...any) {
	*v = append(*v, Problem{Field: field, Message: fmt.Sprintf(format, args...)})
}

var (
	validateOnce sync.Once
	structural   *validator.Validate
)

func structuralValidator() *validator.Validate {
	validateOnce.Do(func() {
		structural = validator.New(validator.WithRequiredStructEnabled())
		structural.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return structural
}

// CheckShape runs the struct-tag rules (enums, bounds, lengths) on an order.
func CheckShape(order Order) ValidationErrors {
	var problems ValidationErrors
	if err := structuralValidator().Struct(order); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			problems.add("", "order is not valid")
			return problems
		}
		for _, fe := range fieldErrs {
			field := strings.TrimPrefix(fe.Namespace(), "Order.")
			problems = append(problems, Problem{Field: field, Message: shapeMessage(field, fe)})
		}
	}
	for i, line := range order.Lines {
		prefix := fmt.Sprintf("lines[%d]", i)
		if line.TaxRatePercent.IsNegative() {
			problems.add(prefix+".taxRatePercent", "Item %d: tax rate cannot be negative", i+1)
		}
		if line.DiscountPercent.IsNegative() {
			problems.add(prefix+".discountPercent", "Item %d: discount cannot be negative", i+1)
		}
		if line.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
			problems.add(prefix+".discountPercent", "Item %d: discount cannot exceed 100%%", i+1)
		}
	}
	return problems
}

func shapeMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s cannot contain more than %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidationInput is everything the pre-submission rules look at.
type ValidationInput struct {
	Order         Order
	CustomerFound bool
	WalletBalance decimal.Decimal
	StatusKnown   bool
	Kind          PaymentKind
	Totals        Totals
	Settlement    Settlement
}

// Validate applies the pre-submission rules and returns ValidationErrors when
// any rule fails. Nothing is clamped here; every failure is reported.
func Validate(c ValidationInput) error {
	problems := CheckShape(c.Order)

	if c.Order.CustomerID <= 0 || !c.CustomerFound {
		problems.add("customerId", "Please select a customer")
	}
	if c.Order.PaymentStatusID > 0 && !c.StatusKnown {
		problems.add("paymentStatusId", "Please select a valid payment status")
	}
	if len(c.Order.Lines) == 0 {
		problems.add("lines", "Please add at least one item")
	}
	for i, line := range c.Order.Lines {
		prefix := fmt.Sprintf("lines[%d]", i)
		if strings.TrimSpace(line.ItemName) == "" {
			problems.add(prefix+".itemName", "Item %d: product name is required", i+1)
		}
		if line.Quantity <= 0 {
			problems.add(prefix+".quantity", "Item %d: quantity must be greater than 0", i+1)
		}
		if !line.MRP.IsPositive() {
			problems.add(prefix+".mrp", "Item %d: MRP must be greater than 0", i+1)
		}
	}

	total := c.Totals.TotalWithTax
	if c.Order.LinkWallet {
		deductible := c.Order.DeductibleWalletAmount
		switch {
		case deductible.IsNegative():
			problems.add("deductibleWalletAmount", "Wallet amount cannot be negative")
		case deductible.GreaterThan(c.WalletBalance):
			problems.add("deductibleWalletAmount", "Wallet amount cannot exceed the wallet balance of %s", c.WalletBalance.StringFixed(2))
		case deductible.GreaterThan(total):
			problems.add("deductibleWalletAmount", "Wallet amount cannot exceed the total payable of %s", total.StringFixed(2))
		}
	}

	if c.Kind == PaymentPartial {
		received := c.Order.ReceivedAmount
		covered := received.Add(c.Settlement.WalletUsed)
		switch {
		case received.IsNegative():
			problems.add("receivedAmount", "Received amount cannot be negative")
		case !covered.IsPositive():
			problems.add("receivedAmount", "For partial payment, received amount plus wallet must be greater than 0")
		case !covered.LessThan(total):
			problems.add("receivedAmount", "For partial payment, received amount plus wallet must be less than the total of %s", total.StringFixed(2))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return problems
}
