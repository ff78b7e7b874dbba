package browser

import "time"

// Page is the narrow browser surface the harvesting core consumes. The
// production implementation is backed by a Playwright page; tests substitute
// a fake.
type Page interface {
	// Navigate loads a URL and waits for the page's network-idle condition
	Navigate(url string) error

	// WaitForLoadState blocks until the page reaches network idle again,
	// bounded by timeout
	WaitForLoadState(timeout time.Duration) error

	// Evaluate runs a script in the page and returns its value
	Evaluate(expression string) (interface{}, error)

	// WaitForFunction polls a predicate expression until it is truthy,
	// bounded by timeout
	WaitForFunction(expression string, timeout time.Duration) error

	// Hover moves the pointer over the element matching selector
	Hover(selector string) error

	// Click activates the element matching selector
	Click(selector string) error

	// OnResponse registers a network response listener and returns its
	// detach function. The handler fires asynchronously for every response
	// the page receives.
	OnResponse(handler func(Response)) (detach func())
}

// Response is one intercepted network response
type Response interface {
	URL() string
	Status() int
	Body() ([]byte, error)
}
