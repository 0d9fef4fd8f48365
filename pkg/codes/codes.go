package codes

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const (
	codePrefix  = "MW-"
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength  = 8
)

// Generator produces voucher codes and payment references. The seed is
// injectable so tests get reproducible sequences.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// VoucherCode returns "MW-" followed by 8 uniform [A-Z0-9] characters.
// Uniqueness is enforced by the database, not here.
func (g *Generator) VoucherCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = codeCharset[g.rng.Intn(len(codeCharset))]
	}
	return codePrefix + string(buf)
}

// PaymentReference returns "MW-<unix-millis>-<4 digits>", a human-shareable
// payment identifier distinct from the row id.
func (g *Generator) PaymentReference() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return fmt.Sprintf("%s%d-%04d", codePrefix, time.Now().UnixMilli(), g.rng.Intn(10000))
}
