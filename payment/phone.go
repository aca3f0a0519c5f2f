package payment

// M-Pesa subscriber numbers: digits only, country code 254, twelve digits
// total (e.g. 254712345678).
const (
	phonePrefix = "254"
	phoneLength = 12
)

func ValidatePhone(phone string) error {
	if len(phone) != phoneLength {
		return validationErrorf("invalid phone number format, use %sXXXXXXXXX", phonePrefix)
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return validationErrorf("invalid phone number format, use %sXXXXXXXXX", phonePrefix)
		}
	}
	if phone[:len(phonePrefix)] != phonePrefix {
		return validationErrorf("invalid phone number format, use %sXXXXXXXXX", phonePrefix)
	}
	return nil
}
