// Package telecom talks to the carrier that issues and links virtual numbers.
package telecom

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// Carrier errors
var (
	ErrCarrierUnavailable = errors.New("carrier unavailable")
	ErrLinkRejected       = errors.New("carrier rejected link")
	ErrUnknownGeoCode     = errors.New("unknown geo code")
)

// Gateway is the carrier side of provisioning. Each call may fail or block;
// implementations must return promptly once ctx is done.
type Gateway interface {
	// RequestNumber allocates a fresh number in the region named by geoCode
	RequestNumber(ctx context.Context, geoCode string) (string, error)
	// Link attaches number to the physical number and returns a carrier link reference
	Link(ctx context.Context, number, physicalNumber string) (string, error)
	// AwaitConfirmation blocks until the carrier confirms the link
	AwaitConfirmation(ctx context.Context, linkID string) error
}

// Releaser is implemented by gateways that can take back carrier state
// abandoned before it was persisted.
type Releaser interface {
	// Release takes back a number together with every link made for it
	Release(number string)
	// ReleaseLink drops one link and leaves its number issued
	ReleaseLink(linkID string)
}

// geoCodeLengths maps supported geo codes to the digit count of their numbers
var geoCodeLengths = map[string]int{
	"IN": 10,
	"US": 12,
	"UK": 9,
	"DE": 11,
	"CA": 13,
}

// NormalizeGeoCode upper-cases and trims a geo code
func NormalizeGeoCode(geoCode string) string {
	return strings.ToUpper(strings.TrimSpace(geoCode))
}

// NumberLength returns the digit count for a geo code
func NumberLength(geoCode string) (int, bool) {
	n, ok := geoCodeLengths[NormalizeGeoCode(geoCode)]
	return n, ok
}

// GeoCodes lists the supported geo codes in sorted order
func GeoCodes() []string {
	codes := make([]string, 0, len(geoCodeLengths))
	for code := range geoCodeLengths {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
