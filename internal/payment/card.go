package payment

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dsmirnov/gophershop/internal/models"
)

type CardType string

const (
	Visa       CardType = "VISA"
	Mastercard CardType = "MASTERCARD"
	Unknown    CardType = "UNKNOWN"
)

var (
	ErrNameRequired    = errors.New("name is required")
	ErrAddressRequired = errors.New("address is required")
	ErrInvalidCard     = errors.New("card number must be 16 digits")
	ErrUnsupportedCard = errors.New("card brand is not supported")
	ErrInvalidExpiry   = errors.New("expiry date must be in MM/YY format")
	ErrCardExpired     = errors.New("card is expired")
	ErrInvalidCVV      = errors.New("cvv must be 3 digits")
)

var (
	cardNumberRegex = regexp.MustCompile(`^\d{16}$`)
	visaRegex       = regexp.MustCompile(`^4\d{15}$`)
	masterRegex     = regexp.MustCompile(`^5[1-5]\d{14}$`)
	expiryRegex     = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
	cvvRegex        = regexp.MustCompile(`^\d{3}$`)
)

// ValidateDetails checks the payment form fields. Card data is only ever
// checked for shape, never sent to a payment network.
func ValidateDetails(d *models.PaymentDetails, now time.Time) error {
	if d.Name == "" {
		return ErrNameRequired
	}
	if d.Address == "" {
		return ErrAddressRequired
	}

	number := strings.ReplaceAll(d.CardNumber, " ", "")
	number = strings.ReplaceAll(number, "-", "")
	if !cardNumberRegex.MatchString(number) || !passesLuhn(number) {
		return ErrInvalidCard
	}
	if CardTypeOf(number) == Unknown {
		return ErrUnsupportedCard
	}

	if err := validateExpiry(d.ExpiryDate, now); err != nil {
		return err
	}

	if !cvvRegex.MatchString(d.CVV) {
		return ErrInvalidCVV
	}
	return nil
}

// CardTypeOf reports the brand of an already-normalized card number.
func CardTypeOf(number string) CardType {
	if visaRegex.MatchString(number) {
		return Visa
	}
	if masterRegex.MatchString(number) {
		return Mastercard
	}
	return Unknown
}

func validateExpiry(expiry string, now time.Time) error {
	m := expiryRegex.FindStringSubmatch(expiry)
	if m == nil {
		return ErrInvalidExpiry
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return ErrInvalidExpiry
	}

	// The card stays valid through the last day of its expiry month.
	expiresAt := time.Date(2000+year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	if !now.Before(expiresAt) {
		return ErrCardExpired
	}
	return nil
}

func passesLuhn(number string) bool {
	sum := 0
	alternate := false
	for i := len(number) - 1; i >= 0; i-- {
		n, err := strconv.Atoi(string(number[i]))
		if err != nil {
			return false
		}
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}
