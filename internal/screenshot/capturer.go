// Package screenshot captures full-page renders of competitor pages
// around a detected change.
package screenshot

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"
)

const (
	navTimeout     = 30 * time.Second
	viewportWidth  = 1280
	viewportHeight = 800
)

// Capturer renders a URL and writes a full-page PNG. Implementations
// return the written path; callers degrade a failure to an empty path
// and carry on, so capture errors never abort change processing.
type Capturer interface {
	Capture(ctx context.Context, url, filename string) (string, error)
	Close() error
}

// RodCapturer drives a headless Chrome via Rod. The browser is launched
// lazily on first capture and reused across captures within a run.
type RodCapturer struct {
	dir string

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewRodCapturer creates a capturer writing images under dir.
func NewRodCapturer(dir string) *RodCapturer {
	return &RodCapturer{dir: dir}
}

// Filename returns the canonical artifact name for a competitor and
// phase ("before" or "after").
func Filename(competitorID, phase string) string {
	return competitorID + "_" + phase + ".png"
}

// Capture navigates to url, waits for load (bounded by a 30s timeout),
// and writes a full-page screenshot to dir/filename, returning the path.
func (c *RodCapturer) Capture(ctx context.Context, url, filename string) (string, error) {
	b, err := c.ensureBrowser()
	if err != nil {
		return "", err
	}

	navCtx, cancel := context.WithTimeout(ctx, navTimeout)
	defer cancel()

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", eris.Wrap(err, "screenshot: create page")
	}
	defer func() { _ = page.Close() }()

	page = page.Context(navCtx)
	if err := page.Navigate(url); err != nil {
		return "", eris.Wrapf(err, "screenshot: navigate %s", url)
	}
	if err := page.WaitLoad(); err != nil {
		return "", eris.Wrapf(err, "screenshot: wait load %s", url)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  viewportWidth,
		Height: viewportHeight,
	}); err != nil {
		return "", eris.Wrap(err, "screenshot: set viewport")
	}

	img, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", eris.Wrapf(err, "screenshot: capture %s", url)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", eris.Wrap(err, "screenshot: create output dir")
	}
	path := filepath.Join(c.dir, filename)
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", eris.Wrapf(err, "screenshot: write %s", path)
	}

	return path, nil
}

// Close shuts down the browser if one was launched.
func (c *RodCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil {
		_ = c.browser.Close()
		c.browser = nil
	}
	if c.lnch != nil {
		c.lnch.Cleanup()
		c.lnch = nil
	}
	return nil
}

func (c *RodCapturer) ensureBrowser() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil {
		return c.browser, nil
	}

	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, eris.Wrap(err, "screenshot: launch chrome")
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, eris.Wrap(err, "screenshot: connect chrome")
	}

	c.lnch = l
	c.browser = b
	return b, nil
}
