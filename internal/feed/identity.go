package feed

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/tmarshall/daybook/internal/sources"
)

// ItemID returns the deterministic id for an externally sourced candidate.
// The id is an FNV-1a 32-bit hash over the candidate's most stable
// reference (guid, falling back to link, then raw source id) and its title,
// prefixed with the source name. Re-fetching the same item always yields
// the same id, which is what makes repeated refreshes no-ops.
func ItemID(source string, c sources.Candidate) string {
	ref := c.GUID
	if ref == "" {
		ref = c.Link
	}
	if ref == "" {
		ref = c.RawSourceID
	}
	h := fnv.New32a()
	h.Write([]byte(ref))
	h.Write([]byte{0})
	h.Write([]byte(c.Title))
	return fmt.Sprintf("%s-%08x", source, h.Sum32())
}

// DailyID returns the id for a source that posts at most once per calendar
// day: the source name plus the ISO date. Content does not participate, so
// any number of refreshes on the same day map to the same id.
func DailyID(source string, day time.Time) string {
	return source + "-" + day.Format("2006-01-02")
}
