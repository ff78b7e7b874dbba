package browser

import (
	"github.com/playwright-community/playwright-go"

	"xhsharvest/pkg/auth"
	"xhsharvest/pkg/config"
	"xhsharvest/pkg/errors"
	"xhsharvest/pkg/logger"
)

// Manager owns the playwright lifecycle: runtime, browser, context and the
// pages opened on it. A single Manager backs one harvest session.
type Manager struct {
	cfg     *config.Config
	log     logger.Logger
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
}

// NewManager starts the playwright runtime and launches a Chromium browser
// with a fresh context. Call Stop when the session is done.
func NewManager(cfg *config.Config, log logger.Logger) (*Manager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeNavigation, "starting playwright: %v", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Browser.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, errors.Newf(errors.ErrorTypeNavigation, "launching browser: %v", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(cfg.Platform.UserAgent),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, errors.Newf(errors.ErrorTypeNavigation, "creating browser context: %v", err)
	}

	logger.LogComponentStart("browser", map[string]interface{}{
		"headless": cfg.Browser.Headless,
	})

	return &Manager{
		cfg:     cfg,
		log:     log,
		pw:      pw,
		browser: browser,
		context: context,
	}, nil
}

// NewPage opens a page on the session context.
func (m *Manager) NewPage() (Page, error) {
	page, err := m.context.NewPage()
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeNavigation, "opening page: %v", err)
	}
	return NewPage(page, m.cfg.Browser.NavigationTimeout), nil
}

// LoadCookies injects a stored cookie profile into the browser context.
// A missing profile is not an error; the session simply runs anonymous.
func (m *Manager) LoadCookies(store auth.Store, profileName string) error {
	profile, err := store.Retrieve(profileName)
	if err != nil {
		if err == auth.ErrProfileNotFound {
			m.log.WithField("profile", profileName).Debug("No stored cookies, continuing without")
			return nil
		}
		return errors.Newf(errors.ErrorTypeStorage, "loading cookie profile %q: %v", profileName, err)
	}

	cookies := make([]playwright.OptionalCookie, 0, len(profile.Cookies))
	for _, c := range profile.Cookies {
		cookie := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			HttpOnly: playwright.Bool(c.HTTPOnly),
			Secure:   playwright.Bool(c.Secure),
			SameSite: sameSiteAttribute(c.SameSite),
		}
		if c.Expires > 0 {
			cookie.Expires = playwright.Float(c.Expires)
		}
		cookies = append(cookies, cookie)
	}

	if err := m.context.AddCookies(cookies); err != nil {
		return errors.Newf(errors.ErrorTypeStorage, "injecting cookies: %v", err)
	}

	m.log.InfoWithFields("Cookie profile loaded", map[string]interface{}{
		"profile": profileName,
		"cookies": len(cookies),
	})
	return nil
}

// SaveCookies reads the context's current cookies back into the store so a
// later session can resume the same login.
func (m *Manager) SaveCookies(store auth.Store, profileName string) error {
	raw, err := m.context.Cookies()
	if err != nil {
		return errors.Newf(errors.ErrorTypeStorage, "reading context cookies: %v", err)
	}
	if len(raw) == 0 {
		m.log.WithField("profile", profileName).Debug("Context has no cookies, nothing to save")
		return nil
	}

	profile := &auth.Profile{Name: profileName, Cookies: make([]auth.Cookie, 0, len(raw))}
	for _, c := range raw {
		cookie := auth.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			cookie.SameSite = string(*c.SameSite)
		}
		profile.Cookies = append(profile.Cookies, cookie)
	}

	if err := store.Store(profile); err != nil {
		return errors.Newf(errors.ErrorTypeStorage, "saving cookie profile %q: %v", profileName, err)
	}

	m.log.InfoWithFields("Cookie profile saved", map[string]interface{}{
		"profile": profileName,
		"cookies": len(profile.Cookies),
	})
	return nil
}

// Stop tears the session down in reverse order. Errors during shutdown are
// logged, not returned.
func (m *Manager) Stop() {
	if m.context != nil {
		if err := m.context.Close(); err != nil {
			m.log.WithError(err).Warn("Closing browser context")
		}
	}
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			m.log.WithError(err).Warn("Closing browser")
		}
	}
	if m.pw != nil {
		if err := m.pw.Stop(); err != nil {
			m.log.WithError(err).Warn("Stopping playwright")
		}
	}
	logger.LogComponentStop("browser", "session complete")
}

func sameSiteAttribute(v string) *playwright.SameSiteAttribute {
	switch v {
	case "Lax", "lax":
		return playwright.SameSiteAttributeLax
	case "Strict", "strict":
		return playwright.SameSiteAttributeStrict
	case "None", "none":
		return playwright.SameSiteAttributeNone
	}
	return nil
}
