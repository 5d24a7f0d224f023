package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrPaymentInFlight  = errors.New("payment already in flight")
	ErrInvalidStep      = errors.New("operation not allowed in current checkout step")
	ErrCheckoutNotEmpty = errors.New("cannot check out an empty cart")
)

// ValidationError carries per-field messages for the checkout form so
// the presentation layer can surface them next to each input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}
