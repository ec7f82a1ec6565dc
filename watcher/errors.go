package watcher

import (
	"errors"

	"github.com/helloworldpark/tickle-stock-info/commons"
)

// Failures of the watcher. They reach callers wrapped with context;
// match them with errors.Is.
var (
	// ErrUpstreamUnavailable means a request failed or the page had no data table.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrSchemaMismatch means the listing page changed its shape.
	ErrSchemaMismatch = errors.New("listing schema mismatch")
	// ErrCompanyNotFound means no listed company has the name in the market.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrUnsupportedSegment means the market has no ticker suffix.
	ErrUnsupportedSegment = errors.New("unsupported market segment")
	// ErrNoPriceData means the provider returned no bar in the range.
	ErrNoPriceData = errors.New("no price data")
)

var newError = commons.NewTaggedWrapper("Watcher")
