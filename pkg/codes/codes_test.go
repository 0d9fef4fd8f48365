package codes

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoucherCodeFormat(t *testing.T) {
	g := NewGenerator(1)
	pattern := regexp.MustCompile(`^MW-[A-Z0-9]{8}$`)

	for i := 0; i < 100; i++ {
		code := g.VoucherCode()
		assert.Regexp(t, pattern, code)
	}
}

func TestVoucherCodeDeterministicWithSeed(t *testing.T) {
	a := NewGenerator(42)
	b := NewGenerator(42)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.VoucherCode(), b.VoucherCode())
	}
}

func TestPaymentReferenceFormat(t *testing.T) {
	g := NewGenerator(1)

	ref := g.PaymentReference()
	assert.Regexp(t, regexp.MustCompile(`^MW-\d{13}-\d{4}$`), ref)
}
