package extract

import "fmt"

// NoUsableDataError is the expected terminal failure of a scan: the
// page rendered but carried neither a product name nor a plausible
// price. It wraps a short preview of the page's visible text so the
// operator can tell an Access Denied interstitial from a genuine
// layout change.
type NoUsableDataError struct {
	URL     string
	Preview string
}

func (e *NoUsableDataError) Error() string {
	return fmt.Sprintf("no usable product data extracted from %s", e.URL)
}
