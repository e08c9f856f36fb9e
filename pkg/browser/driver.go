package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"twfollow/pkg/config"
	errs "twfollow/pkg/errors"
	"twfollow/pkg/logger"
	"twfollow/pkg/retry"
)

// Session cookie names set by twitter
const (
	AuthTokenCookie = "auth_token"
	CSRFTokenCookie = "ct0"
)

// Emergency reasons
const (
	ReasonNotConnected = "not connected"
	ReasonNotLoggedIn  = "not logged in"
)

const userIDWait = 3 * time.Second

// Element is a located DOM element. *rod.Element satisfies it.
type Element interface {
	Text() (string, error)
}

// Driver owns one Chrome page logged in as the configured account
type Driver struct {
	cfg       config.BrowserConfig
	twitter   config.TwitterConfig
	account   config.AccountConfig
	log       logger.Logger
	sessionID string

	mu         sync.Mutex
	browser    *rod.Browser
	page       *rod.Page
	controlURL string
}

// New creates a driver; call Start before any other method
func New(cfg *config.Config, log logger.Logger) *Driver {
	if log == nil {
		log = logger.GetLogger()
	}
	id := uuid.NewString()
	return &Driver{
		cfg:       cfg.Browser,
		twitter:   cfg.Twitter,
		account:   cfg.Account,
		sessionID: id,
		log:       log.WithFields(map[string]interface{}{"component": "browser", "session": id}),
	}
}

// SessionID returns the uuid identifying this browser session in logs
func (d *Driver) SessionID() string {
	return d.sessionID
}

// Start connects to debugger_url or launches Chrome, opens a page, sets the
// viewport and user agent and injects the session cookies.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.browser != nil {
		if _, err := d.browser.Version(); err == nil {
			return nil
		}
		d.log.Warn("Stale browser connection detected, reconnecting")
		_ = d.browser.Close()
		d.browser, d.page = nil, nil
	}

	attempts := d.cfg.LaunchRetries
	if attempts < 1 {
		attempts = 1
	}
	launch := retry.DefaultConfig()
	launch.MaxAttempts = attempts
	launch.Context = ctx
	launch.Logger = d.log
	browser, err := retry.DoWithResult(func() (*rod.Browser, error) {
		return d.connect(ctx)
	}, launch)
	if err != nil {
		return err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return errs.Browser("create page", err)
	}

	if d.cfg.ViewportWidth > 0 && d.cfg.ViewportHeight > 0 {
		if err := (proto.EmulationSetDeviceMetricsOverride{
			Width:             d.cfg.ViewportWidth,
			Height:            d.cfg.ViewportHeight,
			DeviceScaleFactor: 1.0,
			Mobile:            false,
		}).Call(page); err != nil {
			d.log.WithError(err).Warn("Failed to set viewport")
		}
	}

	if d.account.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: d.account.UserAgent}); err != nil {
			d.log.WithError(err).Warn("Failed to set user agent")
		}
	}

	if cookies := d.sessionCookies(); len(cookies) > 0 {
		if err := page.SetCookies(cookies); err != nil {
			_ = browser.Close()
			return errs.Browser("inject session cookies", err)
		}
	}

	d.browser = browser
	d.page = page
	d.log.InfoWithFields("Browser started", map[string]interface{}{
		"control_url": d.controlURL,
		"headless":    d.cfg.Headless,
	})
	return nil
}

func (d *Driver) connect(ctx context.Context) (*rod.Browser, error) {
	controlURL := d.cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(d.cfg.Headless)
		if d.cfg.Bin != "" {
			l = l.Bin(d.cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, errs.Browser("launch chrome", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, errs.Browser("connect to chrome", err)
	}
	d.controlURL = controlURL
	return browser, nil
}

func (d *Driver) sessionCookies() []*proto.NetworkCookieParam {
	var params []*proto.NetworkCookieParam
	add := func(name, value string, httpOnly bool) {
		if value == "" {
			return
		}
		params = append(params, &proto.NetworkCookieParam{
			Name:     name,
			Value:    value,
			Domain:   d.twitter.CookieDomain,
			Path:     "/",
			Secure:   true,
			HTTPOnly: httpOnly,
		})
	}
	add(AuthTokenCookie, d.account.AuthToken, true)
	add(CSRFTokenCookie, d.account.CSRFToken, false)
	return params
}

func (d *Driver) currentPage(ctx context.Context) (*rod.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.page == nil {
		return nil, errs.Browser("browser not started", nil)
	}
	return d.page.Context(ctx), nil
}

// ProfileURL returns the profile address of username
func (d *Driver) ProfileURL(username string) string {
	return fmt.Sprintf("%s/%s/", strings.TrimRight(d.twitter.BaseURL, "/"), username)
}

// CurrentURL returns the address of the page
func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	page, err := d.currentPage(ctx)
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", errs.Browser("read page info", err)
	}
	return info.URL, nil
}

// Navigate loads url unless the page is already there
func (d *Driver) Navigate(ctx context.Context, url string) error {
	page, err := d.currentPage(ctx)
	if err != nil {
		return err
	}

	if current, err := d.CurrentURL(ctx); err == nil && SameURL(current, url) {
		return nil
	}

	if err := page.Timeout(d.cfg.NavigationTimeout).Navigate(url); err != nil {
		return errs.Browser(fmt.Sprintf("navigate to %s", url), err)
	}
	if err := page.Timeout(d.cfg.NavigationTimeout).WaitLoad(); err != nil {
		return errs.Browser(fmt.Sprintf("wait for %s", url), err)
	}
	d.log.Debug(fmt.Sprintf("Navigated to %s", url))
	return nil
}

// SameURL compares two addresses ignoring a trailing slash
func SameURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}

// Reload reloads the page and waits for it to load
func (d *Driver) Reload(ctx context.Context) error {
	page, err := d.currentPage(ctx)
	if err != nil {
		return err
	}
	if err := page.Reload(); err != nil {
		return errs.Browser("reload page", err)
	}
	if err := page.Timeout(d.cfg.NavigationTimeout).WaitLoad(); err != nil {
		return errs.Browser("wait for reload", err)
	}
	return nil
}

// WaitVisible waits up to timeout for the element at xpath to become visible
func (d *Driver) WaitVisible(ctx context.Context, xpath string, timeout time.Duration) (Element, error) {
	page, err := d.currentPage(ctx)
	if err != nil {
		return nil, err
	}

	p := page.Timeout(timeout)
	el, err := p.ElementX(xpath)
	if err != nil {
		return nil, errs.Browser(fmt.Sprintf("element %s not found within %s", xpath, timeout), err)
	}
	if err := el.WaitVisible(); err != nil {
		return nil, errs.Browser(fmt.Sprintf("element %s not visible within %s", xpath, timeout), err)
	}
	return el.Context(ctx), nil
}

// Click clicks el
func (d *Driver) Click(ctx context.Context, el Element) error {
	rel, err := d.rodElement(ctx, el)
	if err != nil {
		return err
	}
	if err := rel.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return errs.Browser("click", err)
	}
	return nil
}

// ClickVisibly scrolls el into view before clicking it
func (d *Driver) ClickVisibly(ctx context.Context, el Element) error {
	rel, err := d.rodElement(ctx, el)
	if err != nil {
		return err
	}
	if err := rel.ScrollIntoView(); err != nil {
		return errs.Browser("scroll into view", err)
	}
	return d.Click(ctx, rel)
}

func (d *Driver) rodElement(ctx context.Context, el Element) (*rod.Element, error) {
	rel, ok := el.(*rod.Element)
	if !ok || rel == nil {
		return nil, errs.Browser(fmt.Sprintf("unsupported element %T", el), nil)
	}
	return rel.Context(ctx), nil
}

// UserID reads the numeric id of username from the profile page, opening
// it only when the page is elsewhere
func (d *Driver) UserID(ctx context.Context, username string) (string, error) {
	if err := d.Navigate(ctx, d.ProfileURL(username)); err != nil {
		return "", err
	}
	return d.readUserID(ctx, d.cfg.UserIDXPath, username)
}

// PostAuthorID reads the numeric id of username from the loaded post page
func (d *Driver) PostAuthorID(ctx context.Context, username string) (string, error) {
	return d.readUserID(ctx, d.cfg.PostAuthorXPath, username)
}

func (d *Driver) readUserID(ctx context.Context, xpath, username string) (string, error) {
	el, err := d.WaitVisible(ctx, xpath, userIDWait)
	if err != nil {
		return "", err
	}
	rel, err := d.rodElement(ctx, el)
	if err != nil {
		return "", err
	}
	id, err := rel.Attribute("data-user-id")
	if err != nil {
		return "", errs.Browser("read data-user-id", err)
	}
	if id == nil || *id == "" {
		return "", errs.Browser(fmt.Sprintf("no user id for %s", username), nil)
	}
	return *id, nil
}

// Emergency reports whether the session can no longer act: the browser is
// offline or the auth_token cookie is gone. The reason names which.
func (d *Driver) Emergency(ctx context.Context, login string) (bool, string) {
	page, err := d.currentPage(ctx)
	if err != nil {
		return true, ReasonNotConnected
	}

	res, err := page.Eval(`() => navigator.onLine`)
	if err != nil || !res.Value.Bool() {
		d.log.WithError(err).Error("Browser is offline")
		return true, ReasonNotConnected
	}

	cookies, err := page.Cookies([]string{d.twitter.BaseURL})
	if err != nil {
		d.log.WithError(err).Error("Failed to read cookies")
		return true, ReasonNotConnected
	}
	for _, c := range cookies {
		if c.Name == AuthTokenCookie && c.Value != "" {
			return false, ""
		}
	}

	d.log.Error(fmt.Sprintf("%s is not logged in", login))
	return true, ReasonNotLoggedIn
}

// Close closes the page and the browser
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	if d.page != nil {
		_ = d.page.Close()
		d.page = nil
	}
	if d.browser != nil {
		err = d.browser.Close()
		d.browser = nil
	}
	return err
}
