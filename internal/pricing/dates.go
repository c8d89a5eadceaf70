package pricing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/kaigocloud/carebill-backend/pkg/errors"
)

// RequiredDevices returns the number of billable devices a facility needs for
// its staff. Representatives are free, so they are subtracted before the
// ceiling division.
func RequiredDevices(staffCount, maxStaffPerDevice, representativeCount int) (int, error) {
	if staffCount < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "staff count must not be negative")
	}
	if maxStaffPerDevice <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "max staff per device must be positive")
	}
	if representativeCount < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "representative count must not be negative")
	}
	billable := staffCount - representativeCount
	if billable <= 0 {
		return 0, nil
	}
	return (billable + maxStaffPerDevice - 1) / maxStaffPerDevice, nil
}

// NextBillingDate returns the first occurrence of billingDay strictly in the
// future of current. When current is on or past billingDay the date rolls to
// the next month, and billingDay is clamped to the last day of short months.
func NextBillingDate(current time.Time, billingDay int) (time.Time, error) {
	if billingDay < 1 || billingDay > 31 {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "billing day must be between 1 and 31")
	}
	year, month, _ := current.Date()
	if current.Day() >= billingDay {
		month++
	}
	day := billingDay
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, current.Location()), nil
}

// Prorate charges the span from start through end inclusive against a monthly
// fee, using the day count of start's month. Spans that cross a month boundary
// are rejected: each calendar month is billed separately.
func Prorate(monthlyFee int64, start, end time.Time) (int64, error) {
	if monthlyFee < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "monthly fee must not be negative")
	}
	if end.Before(start) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "proration end must not precede start")
	}
	if start.Year() != end.Year() || start.Month() != end.Month() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "proration span must stay within one calendar month")
	}
	days := daysInMonth(start.Year(), start.Month())
	usageDays := int(math.Ceil(end.Sub(start).Hours()/24)) + 1
	// Multiply before dividing: the product is exact, so the floor applies to
	// the true quotient instead of a rounded intermediate.
	return decimal.NewFromInt(monthlyFee).
		Mul(decimal.NewFromInt(int64(usageDays))).
		Div(decimal.NewFromInt(int64(days))).
		Floor().
		IntPart(), nil
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
