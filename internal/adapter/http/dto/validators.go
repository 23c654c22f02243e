package dto

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	// NFC UIDs are 4, 7 or 10 bytes; separators are optional.
	nfcSerialRe    = regexp.MustCompile(`^[0-9A-Fa-f]{2}(?:[:\-]?[0-9A-Fa-f]{2}){3,9}$`)
	productCodeRe  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]{0,31}$`)
	requestNonceRe = regexp.MustCompile(`^[A-Za-z0-9_\-]{16,128}$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("product_code", validateProductCode)
		_ = v.RegisterValidation("nfc_serial", validateNFCSerial)
		_ = v.RegisterValidation("request_nonce", validateRequestNonce)
	}
}

func validateProductCode(fl validator.FieldLevel) bool {
	return productCodeRe.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateNFCSerial(fl validator.FieldLevel) bool {
	return nfcSerialRe.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateRequestNonce(fl validator.FieldLevel) bool {
	return requestNonceRe.MatchString(strings.TrimSpace(fl.Field().String()))
}

// SanitizeStruct trims whitespace and drops control characters from every
// exported string field of a struct pointer, descending into nested structs.
// Values end up in hashed ledger data, so they are never HTML-escaped here.
func SanitizeStruct(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Struct:
			sanitizeFields(f)
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			switch elem.Kind() {
			case reflect.String:
				elem.SetString(sanitize(elem.String()))
			case reflect.Struct:
				sanitizeFields(elem)
			}
		}
	}
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
