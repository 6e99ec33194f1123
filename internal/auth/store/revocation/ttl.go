package revocation

import (
	"fmt"
	"time"

	"stackwise/pkg/platform/sentinel"
)

// validateTTL rejects sessions that have already expired; there is nothing
// left to revoke.
func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("revocation ttl %s: %w", ttl, sentinel.ErrInvalidState)
	}
	return nil
}
