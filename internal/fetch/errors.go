package fetch

import "fmt"

// FetchError reports a network or HTTP failure reaching the target page.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the request never produced a response
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// BlockedError reports an HTTP 403: the site refuses automated access.
// Callers should suggest trying a different target rather than retrying.
type BlockedError struct {
	URL string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s blocks automated access; try a different website or contact the site administrator", e.URL)
}
