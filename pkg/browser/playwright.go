package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// playwrightPage adapts a playwright.Page to the Page interface
type playwrightPage struct {
	page       playwright.Page
	navTimeout time.Duration
}

// NewPage wraps a Playwright page for use by the harvesting core
func NewPage(page playwright.Page, navTimeout time.Duration) Page {
	return &playwrightPage{page: page, navTimeout: navTimeout}
}

func (p *playwrightPage) Navigate(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(p.navTimeout.Milliseconds())),
	})
	return err
}

func (p *playwrightPage) WaitForLoadState(timeout time.Duration) error {
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *playwrightPage) Evaluate(expression string) (interface{}, error) {
	return p.page.Evaluate(expression)
}

func (p *playwrightPage) WaitForFunction(expression string, timeout time.Duration) error {
	_, err := p.page.WaitForFunction(expression, nil, playwright.PageWaitForFunctionOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func (p *playwrightPage) Hover(selector string) error {
	return p.page.Locator(selector).Hover()
}

func (p *playwrightPage) Click(selector string) error {
	return p.page.Locator(selector).Click()
}

func (p *playwrightPage) OnResponse(handler func(Response)) func() {
	// playwright.Response satisfies the Response interface directly
	wrapped := func(response playwright.Response) {
		handler(response)
	}
	p.page.On("response", wrapped)
	return func() {
		p.page.RemoveListener("response", wrapped)
	}
}
