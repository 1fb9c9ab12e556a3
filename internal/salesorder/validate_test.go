package salesorder

import (
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validInput() ValidationInput {
	order := Order{CustomerID: 5, PaymentStatusID: 1, Lines: sampleLines()}
	totals := Aggregate(order.Lines, unitTable())
	return ValidationInput{
		Order:         order,
		CustomerFound: true,
		WalletBalance: d("500"),
		StatusKnown:   true,
		Kind:          PaymentPaid,
		Totals:        totals,
		Settlement:    Reconcile(SettlementInput{TotalWithTax: totals.TotalWithTax, Kind: PaymentPaid}),
	}
}

func problemsOf(t *testing.T, err error) ValidationErrors {
	t.Helper()
	var problems ValidationErrors
	require.True(t, errors.As(err, &problems), "expected ValidationErrors, got %v", err)
	return problems
}

func fields(problems ValidationErrors) []string {
	out := make([]string, 0, len(problems))
	for _, p := range problems {
		out = append(out, p.Field)
	}
	return out
}

func TestValidateAcceptsCompleteOrder(t *testing.T) {
	require.NoError(t, Validate(validInput()))
}

func TestValidateMissingCustomerAndLines(t *testing.T) {
	in := validInput()
	in.Order.CustomerID = 0
	in.CustomerFound = false
	in.Order.Lines = nil

	problems := problemsOf(t, Validate(in))
	require.ElementsMatch(t, []string{"customerId", "lines"}, fields(problems))
	require.Equal(t, "Please select a customer", problems[0].Message)
}

func TestValidateUnknownCustomer(t *testing.T) {
	in := validInput()
	in.CustomerFound = false
	require.Contains(t, fields(problemsOf(t, Validate(in))), "customerId")
}

func TestValidateLineProblems(t *testing.T) {
	in := validInput()
	in.Order.Lines[0].ItemName = "  "
	in.Order.Lines[1].Quantity = 0
	in.Order.Lines[2].MRP = decimal.Zero

	problems := problemsOf(t, Validate(in))
	require.ElementsMatch(t, []string{"lines[0].itemName", "lines[1].quantity", "lines[2].mrp"}, fields(problems))
	require.Contains(t, problems.Error(), "Item 2: quantity must be greater than 0")
}

func TestValidateWalletRules(t *testing.T) {
	cases := []struct {
		name       string
		deductible string
		balance    string
		want       string
	}{
		{"negative", "-1", "500", "Wallet amount cannot be negative"},
		{"above balance", "600", "500", "Wallet amount cannot exceed the wallet balance of 500.00"},
		{"above total", "400", "500", "Wallet amount cannot exceed the total payable of 320.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			in.Order.LinkWallet = true
			in.Order.DeductibleWalletAmount = d(tc.deductible)
			in.WalletBalance = d(tc.balance)
			problems := problemsOf(t, Validate(in))
			require.Len(t, problems, 1)
			require.Equal(t, "deductibleWalletAmount", problems[0].Field)
			require.Equal(t, tc.want, problems[0].Message)
		})
	}
}

func TestValidateWalletIgnoredWhenNotLinked(t *testing.T) {
	in := validInput()
	in.Order.DeductibleWalletAmount = d("99999")
	require.NoError(t, Validate(in))
}

func partialInput(total, walletUsed, received string) ValidationInput {
	in := validInput()
	in.Kind = PaymentPartial
	in.Totals.TotalWithTax = d(total)
	in.Order.ReceivedAmount = d(received)
	in.Settlement.WalletUsed = d(walletUsed)
	return in
}

func TestValidatePartialPaymentBoundaries(t *testing.T) {
	require.NoError(t, Validate(partialInput("100", "40", "59.99")))

	equal := problemsOf(t, Validate(partialInput("100", "40", "60")))
	require.Equal(t, "receivedAmount", equal[0].Field)
	require.Contains(t, equal[0].Message, "less than the total of 100.00")

	problemsOf(t, Validate(partialInput("100", "0", "120")))

	zero := problemsOf(t, Validate(partialInput("100", "0", "0")))
	require.Contains(t, zero[0].Message, "greater than 0")

	negative := problemsOf(t, Validate(partialInput("100", "10", "-5")))
	require.Equal(t, "Received amount cannot be negative", negative[0].Message)

	require.NoError(t, Validate(partialInput("100", "30", "0")))
}

func TestValidateUnknownPaymentStatus(t *testing.T) {
	in := validInput()
	in.StatusKnown = false
	require.Equal(t, []string{"paymentStatusId"}, fields(problemsOf(t, Validate(in))))
}

func TestCheckShapeReportsTagRules(t *testing.T) {
	order := Order{CustomerID: 1, Lines: sampleLines()}
	order.Lines[0].SelectedUnitType = "box"
	order.Lines[1].DiscountPercent = d("-5")
	order.Lines[2].TaxRatePercent = d("-1")

	problems := CheckShape(order)
	require.ElementsMatch(t, []string{
		"lines[0].selectedUnitType",
		"lines[1].discountPercent",
		"lines[2].taxRatePercent",
	}, fields(problems))
	require.Contains(t, problems[0].Message, "base, secondary")
}

func TestValidationErrorsAppError(t *testing.T) {
	in := validInput()
	in.Order.Lines = nil
	problems := problemsOf(t, Validate(in))
	appErr := problems.AppError()
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	require.Equal(t, "VALIDATION_FAILED", appErr.Code)
	require.Equal(t, "Please add at least one item", appErr.Message)
	require.Equal(t, problems, appErr.Details)
}
