// Package headless fetches pages through headless Chrome via chromedp. It
// owns the single long-lived browser process the service reuses across
// requests.
package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/pbfcm/taxsale-scraper/internal/scraper"
)

// blockedResourcePatterns match static assets the scrape never needs;
// skipping them keeps navigation fast.
var blockedResourcePatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.webp", "*.ico",
	"*.css", "*.woff", "*.woff2", "*.ttf", "*.otf",
	"*.mp4", "*.webm", "*.mp3",
}

// Config controls browser behavior.
type Config struct {
	UserAgent         string
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	BlockResources    bool
	Headful           bool
}

// Fetcher implements scraper.Fetcher with one reusable browser instance.
// The browser is launched lazily on first use and relaunched if it has
// died. A mutex serializes fetches: the single session is not safe for
// concurrent use, so overlapping requests queue here.
type Fetcher struct {
	cfg    Config
	logger *zap.Logger

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// New builds a Fetcher. No browser process is started until the first Fetch.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	return &Fetcher{cfg: cfg, logger: logger}
}

// Fetch navigates the managed browser to url and returns the rendered DOM.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureSession(); err != nil {
		return "", err
	}

	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, f.cfg.NavigationTimeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	html, err := f.runTab(taskCtx, url)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("fetch canceled: %w", ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: page did not render within %s",
				scraper.ErrExtractionTimeout, f.cfg.NavigationTimeout)
		}
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	return html, nil
}

// ensureSession launches the browser on first use and relaunches it when
// the existing context has died. Callers must hold f.mu.
func (f *Fetcher) ensureSession() error {
	if f.browserCtx != nil && f.browserCtx.Err() == nil {
		return nil
	}
	f.teardown()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !f.cfg.Headful),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(1400, 900),
	)
	if f.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("%w: %v", scraper.ErrBrowserLaunch, err)
	}

	f.allocCancel = allocCancel
	f.browserCtx = browserCtx
	f.browserCancel = browserCancel
	f.logger.Info("browser session started")
	return nil
}

func (f *Fetcher) runTab(ctx context.Context, url string) (string, error) {
	var html string
	tasks := chromedp.Tasks{
		network.Enable(),
		f.setupAction(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.cfg.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, nil
}

func (f *Fetcher) setupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if f.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(f.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		if f.cfg.BlockResources {
			if err := network.SetBlockedURLs(blockedResourcePatterns).Do(ctx); err != nil {
				return fmt.Errorf("block resources: %w", err)
			}
		}
		return nil
	})
}

// teardown cancels the browser and allocator contexts. Callers must hold f.mu.
func (f *Fetcher) teardown() {
	if f.browserCancel != nil {
		f.browserCancel()
		f.browserCancel = nil
	}
	if f.allocCancel != nil {
		f.allocCancel()
		f.allocCancel = nil
	}
	f.browserCtx = nil
}

// Close shuts the browser down. Safe to call without a live session.
func (f *Fetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teardown()
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
