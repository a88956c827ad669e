package jasoseol

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-jss-crawler/internal/browser"
	"go-jss-crawler/internal/config"
	"go-jss-crawler/internal/dom"
	"go-jss-crawler/internal/logger"

	"github.com/gofrs/flock"
)

// ErrLoginFailed is the only failure that aborts a crawl.
var ErrLoginFailed = errors.New("login failed")

const lockRetry = 250 * time.Millisecond

type Credentials struct {
	ID       string
	Password string
}

// SessionManager hands out an authenticated session, logging in only when the
// saved storage state cannot be used.
type SessionManager struct {
	browser   dom.Browser
	baseURL   string
	statePath string
	creds     Credentials
	t         config.Timeouts
	shots     *browser.ScreenshotDebugger
	log       logger.Logger
}

func NewSessionManager(b dom.Browser, cfg *config.Config, shots *browser.ScreenshotDebugger, log logger.Logger) *SessionManager {
	return &SessionManager{
		browser:   b,
		baseURL:   cfg.Site.BaseURL,
		statePath: cfg.StatePath,
		creds:     Credentials{ID: cfg.LoginID, Password: cfg.LoginPassword},
		t:         cfg.Crawl.Timeouts,
		shots:     shots,
		log:       log.With(logger.String("component", "session")),
	}
}

// Ensure returns a ready session. The caller owns it and must close it.
func (m *SessionManager) Ensure(ctx context.Context) (dom.Session, error) {
	if err := os.MkdirAll(filepath.Dir(m.statePath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create state dir: %w", ErrLoginFailed, err)
	}

	//one login at a time per state file
	lock := flock.New(m.statePath + ".lock")
	if _, err := lock.TryLockContext(ctx, lockRetry); err != nil {
		return nil, fmt.Errorf("%w: lock state: %w", ErrLoginFailed, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if browser.StateUsable(m.statePath) {
		sess, err := m.browser.NewSession(m.statePath)
		if err == nil {
			m.log.Info("🍪 Restored saved session", logger.String("state", m.statePath))
			return sess, nil
		}
		m.log.Warn("⚠️ Saved session rejected, logging in again", logger.Error(err))
	}

	return m.login(ctx)
}

func (m *SessionManager) login(ctx context.Context) (dom.Session, error) {
	m.log.Info("🔐 Logging in")

	sess, err := m.browser.NewSession("")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	page, err := sess.NewPage()
	if err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	defer page.Close()

	if err := m.loginFlow(ctx, page); err != nil {
		_, _ = m.shots.CaptureAndLog(page, "login_failed", "Login failed")
		_ = sess.Close()
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	if err := sess.SaveState(m.statePath); err != nil {
		m.log.Warn("⚠️ Could not save session state", logger.Error(err))
	} else {
		m.log.Info("💾 Session state saved", logger.String("state", m.statePath))
	}

	m.log.Info("✅ Logged in")
	return sess, nil
}

func (m *SessionManager) loginFlow(ctx context.Context, page dom.Page) error {
	if m.creds.ID == "" || m.creds.Password == "" {
		return errors.New("no credentials configured (JASOSEOL_ID / JASOSEOL_PASSWORD)")
	}

	if err := page.Goto(m.baseURL, m.t.Navigation); err != nil {
		return err
	}
	m.dismissPromo(page)
	if err := ctx.Err(); err != nil {
		return err
	}

	open, err := page.Query(selLoginOpen)
	if err != nil {
		return fmt.Errorf("login button: %w", err)
	}
	if err := open.Click(m.t.Click); err != nil {
		return fmt.Errorf("click login button: %w", err)
	}
	if err := page.WaitFor(selLoginID, m.t.LoginForm); err != nil {
		return fmt.Errorf("login form: %w", err)
	}

	for _, f := range []struct{ sel, value string }{
		{selLoginID, m.creds.ID},
		{selLoginPassword, m.creds.Password},
	} {
		if err := fill(page, f.sel, f.value); err != nil {
			return err
		}
		if err := browser.RandomDelay(ctx, m.t.TypingPause/4, m.t.TypingPause); err != nil {
			return err
		}
	}

	submit, err := page.Query(selLoginSubmit)
	if err != nil {
		return fmt.Errorf("submit button: %w", err)
	}
	if err := submit.Click(m.t.Click); err != nil {
		return fmt.Errorf("click submit: %w", err)
	}

	return m.confirm(page)
}

// confirm accepts any of the signals the site gives after a good login.
func (m *SessionManager) confirm(page dom.Page) error {
	if err := page.WaitFor(selLoginSuccess, m.t.LoginConfirm); err == nil {
		m.dismissPromo(page)
		return nil
	}
	if _, err := page.Query(selPromo); err == nil {
		m.log.Debug("Login confirmed by post-login popup")
		m.dismissPromo(page)
		return nil
	}
	if strings.Contains(page.URL(), loginURLMarker) {
		m.log.Debug("Login confirmed by URL", logger.String("url", page.URL()))
		return nil
	}
	return fmt.Errorf("no login confirmation at %s", page.URL())
}

// dismissPromo closes the advertising popup, removing it outright when the
// close button does not work.
func (m *SessionManager) dismissPromo(page dom.Page) {
	if btn, err := page.Query(selPromoClose); err == nil {
		if err := btn.Click(m.t.Popup); err != nil {
			m.log.Debug("Popup close click failed", logger.Error(err))
		}
	}
	if _, err := page.Query(selPromo); err == nil {
		if err := page.Remove(selPromo); err != nil {
			m.log.Debug("Popup removal failed", logger.Error(err))
		}
	}
}

func fill(page dom.Page, selector, value string) error {
	input, err := page.Query(selector)
	if err != nil {
		return fmt.Errorf("input %q: %w", selector, err)
	}
	if err := input.Fill(value); err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}
