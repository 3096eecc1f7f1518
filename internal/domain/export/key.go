package export

import (
	"fmt"
	"time"
)

// ArchiveKey is trips/<id>/<UTC timestamp>.json.
func ArchiveKey(tripID string, at time.Time) string {
	return fmt.Sprintf("trips/%s/%s.json", tripID, at.UTC().Format(archiveTimeLayout))
}
