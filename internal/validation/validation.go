package validation

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

const (
	maxNameLen     = 50
	maxNotesLen    = 500
	maxUsernameLen = 50
	maxPasswordLen = 100
	minQuantity    = 1
	maxQuantity    = 20
	maxUnitPrice   = 1000
	maxTotalPrice  = 20000
)

// priceEpsilon is the tolerance for the totalPrice cross-check.
var priceEpsilon = decimal.NewFromFloat(0.01)

var (
	strictPolicy   = bluemonday.StrictPolicy()
	jsProtocolRe   = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerRe = regexp.MustCompile(`(?i)on\w+=`)
	controlRe      = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	pinRe          = regexp.MustCompile(`^\d{4,8}$`)
)

// FieldError describes a single validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// OrderPayload is the untrusted body of an order creation request. Numeric
// fields are pointers so a missing field is distinguishable from zero.
type OrderPayload struct {
	CustomerName    string   `json:"customerName"`
	CustomerSurname string   `json:"customerSurname"`
	PackageSize     string   `json:"packageSize"`
	Quantity        *float64 `json:"quantity"`
	UnitPrice       *float64 `json:"unitPrice"`
	TotalPrice      *float64 `json:"totalPrice"`
	Notes           string   `json:"notes"`
	PIN             string   `json:"pin"`
}

// OrderResult is the outcome of order input validation. Sanitized is set only
// when Valid is true; the payload itself is never mutated.
type OrderResult struct {
	Valid     bool
	Errors    []FieldError
	Sanitized *order.CreateInput
}

// SanitizeText strips HTML elements (including script content), escape
// artifacts, javascript: protocols, inline event handlers and control
// characters, then trims and truncates to maxLen runes. Truncation counts
// runes, not bytes, so accented names are never cut mid-character.
func SanitizeText(input string, maxLen int) string {
	s := strictPolicy.Sanitize(input)
	s = html.UnescapeString(s)
	s = strings.NewReplacer("<", "", ">", "", "'", "", `"`, "").Replace(s)
	s = jsProtocolRe.ReplaceAllString(s, "")
	s = eventHandlerRe.ReplaceAllString(s, "")
	s = controlRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxLen {
		s = string([]rune(s)[:maxLen])
	}

	return s
}

// ValidateOrderInput checks presence, type and bounds of every field,
// collects all violations, and returns a sanitized copy on success.
func ValidateOrderInput(in OrderPayload) OrderResult {
	var errs []FieldError

	if strings.TrimSpace(in.CustomerName) == "" {
		errs = append(errs, FieldError{Field: "customerName", Message: "customer name is required"})
	} else if utf8.RuneCountInString(in.CustomerName) > maxNameLen {
		errs = append(errs, FieldError{Field: "customerName", Message: "customer name is too long"})
	}

	if strings.TrimSpace(in.CustomerSurname) == "" {
		errs = append(errs, FieldError{Field: "customerSurname", Message: "customer surname is required"})
	} else if utf8.RuneCountInString(in.CustomerSurname) > maxNameLen {
		errs = append(errs, FieldError{Field: "customerSurname", Message: "customer surname is too long"})
	}

	pkgSize, err := order.ParsePackageSize(in.PackageSize)
	if err != nil {
		errs = append(errs, FieldError{Field: "packageSize", Message: "invalid package size"})
	}

	if in.Quantity == nil {
		errs = append(errs, FieldError{Field: "quantity", Message: "quantity is required"})
	} else if *in.Quantity != float64(int(*in.Quantity)) {
		errs = append(errs, FieldError{Field: "quantity", Message: "quantity must be a whole number"})
	} else if *in.Quantity < minQuantity || *in.Quantity > maxQuantity {
		errs = append(errs, FieldError{Field: "quantity", Message: "quantity must be between 1 and 20"})
	}

	if in.UnitPrice == nil {
		errs = append(errs, FieldError{Field: "unitPrice", Message: "unit price is required"})
	} else if *in.UnitPrice < 0 || *in.UnitPrice > maxUnitPrice {
		errs = append(errs, FieldError{Field: "unitPrice", Message: "invalid unit price"})
	}

	if in.TotalPrice == nil {
		errs = append(errs, FieldError{Field: "totalPrice", Message: "total price is required"})
	} else if *in.TotalPrice < 0 || *in.TotalPrice > maxTotalPrice {
		errs = append(errs, FieldError{Field: "totalPrice", Message: "invalid total price"})
	}

	if utf8.RuneCountInString(in.Notes) > maxNotesLen {
		errs = append(errs, FieldError{Field: "notes", Message: "notes are too long"})
	}

	if in.PIN != "" && !pinRe.MatchString(in.PIN) {
		errs = append(errs, FieldError{Field: "pin", Message: "pin must be 4 to 8 digits"})
	}

	if len(errs) > 0 {
		return OrderResult{Errors: errs}
	}

	sanitized := &order.CreateInput{
		CustomerName:    SanitizeText(in.CustomerName, maxNameLen),
		CustomerSurname: SanitizeText(in.CustomerSurname, maxNameLen),
		PackageSize:     pkgSize,
		Quantity:        int(*in.Quantity),
		UnitPrice:       decimal.NewFromFloat(*in.UnitPrice),
		TotalPrice:      decimal.NewFromFloat(*in.TotalPrice),
		Notes:           SanitizeText(in.Notes, maxNotesLen),
		PIN:             in.PIN,
	}

	expected := sanitized.UnitPrice.Mul(decimal.NewFromInt(int64(sanitized.Quantity)))
	if sanitized.TotalPrice.Sub(expected).Abs().GreaterThan(priceEpsilon) {
		errs = append(errs, FieldError{Field: "totalPrice", Message: "price calculation mismatch"})

		return OrderResult{Errors: errs}
	}

	return OrderResult{Valid: true, Sanitized: sanitized}
}

// SearchPayload is the untrusted body of a customer order lookup request.
type SearchPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	PIN       string `json:"pin"`
}

// SearchResult is the outcome of search input validation.
type SearchResult struct {
	Valid     bool
	Errors    []FieldError
	Sanitized *order.SearchQuery
}

// ValidateSearchInput sanitizes the names and checks the optional PIN format.
func ValidateSearchInput(in SearchPayload) SearchResult {
	var errs []FieldError

	firstName := SanitizeText(in.FirstName, maxNameLen)
	lastName := SanitizeText(in.LastName, maxNameLen)

	if firstName == "" {
		errs = append(errs, FieldError{Field: "firstName", Message: "firstName is required"})
	}
	if lastName == "" {
		errs = append(errs, FieldError{Field: "lastName", Message: "lastName is required"})
	}

	pin := strings.TrimSpace(in.PIN)
	if pin != "" && !pinRe.MatchString(pin) {
		errs = append(errs, FieldError{Field: "pin", Message: "pin must be 4 to 8 digits"})
	}

	if len(errs) > 0 {
		return SearchResult{Errors: errs}
	}

	return SearchResult{
		Valid: true,
		Sanitized: &order.SearchQuery{
			FirstName: firstName,
			LastName:  lastName,
			PIN:       pin,
		},
	}
}

// AuthPayload is the untrusted body of an admin login request.
type AuthPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Credentials is the sanitized login input. The password is passed through
// verbatim so legitimate special characters survive.
type Credentials struct {
	Username string
	Password string
}

// AuthResult is the outcome of auth input validation.
type AuthResult struct {
	Valid     bool
	Errors    []FieldError
	Sanitized *Credentials
}

// ValidateAuthInput checks presence and length bounds of the credentials.
func ValidateAuthInput(in AuthPayload) AuthResult {
	var errs []FieldError

	if in.Username == "" {
		errs = append(errs, FieldError{Field: "username", Message: "username is required"})
	} else if utf8.RuneCountInString(in.Username) > maxUsernameLen {
		errs = append(errs, FieldError{Field: "username", Message: "username is too long"})
	}

	if in.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	} else if utf8.RuneCountInString(in.Password) > maxPasswordLen {
		errs = append(errs, FieldError{Field: "password", Message: "password is too long"})
	}

	if len(errs) > 0 {
		return AuthResult{Errors: errs}
	}

	return AuthResult{
		Valid: true,
		Sanitized: &Credentials{
			Username: SanitizeText(in.Username, maxUsernameLen),
			Password: in.Password,
		},
	}
}
