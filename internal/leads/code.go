package leads

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewLeadCode generates a short human-readable code for a lead, e.g.
// LD-20260115-4F2A. Uniqueness is guaranteed by the id, not the code; the
// code exists for humans reading dashboards and chat messages.
func NewLeadCode(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("LD-%s-%s", now.Format("20060102"), suffix)
}
