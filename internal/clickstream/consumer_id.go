package clickstream

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// NewConsumerID creates a unique consumer ID for Redis consumer groups.
func NewConsumerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d-%s", host, os.Getpid(), uuid.NewString()[:8])
}
