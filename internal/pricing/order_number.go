package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const orderNumberPrefix = "ORD"

// NewOrderNumber returns ORD-<unix millis>-<8 random hex chars>.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", orderNumberPrefix, now.UnixMilli(), strings.ToUpper(suffix))
}
