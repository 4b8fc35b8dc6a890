package booking

import "strings"

// secretKeys are payment fields that are never echoed, not even partially.
var secretKeys = map[string]bool{
	"cvv":      true,
	"cvc":      true,
	"pin":      true,
	"password": true,
}

// cardKeys are payment fields echoed with all but the last four digits hidden.
var cardKeys = map[string]bool{
	"card":        true,
	"card_number": true,
	"cardnumber":  true,
	"number":      true,
	"account":     true,
	"iban":        true,
}

// MaskPayment returns a copy of details safe to echo back or log. Nested maps are masked
// recursively. A nil map stays nil.
func MaskPayment(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		key := strings.ToLower(k)
		switch {
		case secretKeys[key]:
			out[k] = "***"
		case cardKeys[key]:
			out[k] = maskDigits(stringValue(v))
		default:
			if nested, ok := v.(map[string]any); ok {
				out[k] = MaskPayment(nested)
			} else {
				out[k] = v
			}
		}
	}
	return out
}

func maskDigits(s string) string {
	var digits []rune
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return "**** " + string(digits[len(digits)-4:])
}
