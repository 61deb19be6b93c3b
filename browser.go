package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog/log"
)

// Driver is the browser capability the bot depends on. Element queries
// report absence as an ordinary value so callers never deal with "not
// found" errors as control flow.
type Driver interface {
	Navigate(url string) error
	Title() (string, error)
	PageSource() (string, error)
	CurrentURL() (string, error)
	Element(xpath string) (Element, bool)
	ElementByName(name string) (Element, bool)
	Refresh() error
	Screenshot(path string) error
}

// Element is one located page element.
type Element interface {
	Click() error
	Input(text string) error
	Text() (string, error)
	Attribute(name string) (string, bool)
	Visible() bool
	Enabled() bool
}

// RodDriver drives a real Chrome/Chromium session via rod.
type RodDriver struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
}

// NewRodDriver launches a browser and opens one stealth page. The profile
// directory keeps Amazon session cookies across runs.
func NewRodDriver(headless bool, profileDir string) (*RodDriver, error) {
	// Leakless deadlocks on Windows, see go-rod/rod#853.
	useLeakless := runtime.GOOS != "windows"

	l := launcher.New().
		Leakless(useLeakless).
		Headless(headless)

	if profileDir != "" {
		if err := os.MkdirAll(profileDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create browser profile dir: %w", err)
		}
		l = l.UserDataDir(profileDir)
	}

	if chromePath, ok := launcher.LookPath(); ok {
		l = l.Bin(chromePath)
		log.Debug().Str("path", chromePath).Msg("Using system Chrome")
	} else {
		log.Info().Msg("System Chrome not found, downloading Chromium")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}

	return &RodDriver{browser: browser, page: page, launcher: l}, nil
}

func (d *RodDriver) Close() {
	if d.page != nil {
		d.page.Close()
	}
	if d.browser != nil {
		d.browser.Close()
	}
	if d.launcher != nil {
		d.launcher.Cleanup()
	}
}

func (d *RodDriver) Navigate(url string) error {
	if err := d.page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := d.page.Timeout(30 * time.Second).WaitLoad(); err != nil {
		return fmt.Errorf("page failed to load %s: %w", url, err)
	}
	return nil
}

func (d *RodDriver) Title() (string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.Title, nil
}

func (d *RodDriver) CurrentURL() (string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.URL, nil
}

func (d *RodDriver) PageSource() (string, error) {
	html, err := d.page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page source: %w", err)
	}
	return html, nil
}

func (d *RodDriver) Element(xpath string) (Element, bool) {
	has, el, err := d.page.HasX(xpath)
	if err != nil || !has {
		return nil, false
	}
	return &rodElement{el: el}, true
}

func (d *RodDriver) ElementByName(name string) (Element, bool) {
	return d.Element(fmt.Sprintf(`//*[@name=%q]`, name))
}

func (d *RodDriver) Refresh() error {
	if err := d.page.Reload(); err != nil {
		return fmt.Errorf("failed to refresh page: %w", err)
	}
	d.page.Timeout(30 * time.Second).WaitLoad()
	return nil
}

func (d *RodDriver) Screenshot(path string) error {
	data, err := d.page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot %s: %w", path, err)
	}
	return nil
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

// Input types text into the element and submits with Enter.
func (e *rodElement) Input(text string) error {
	if err := e.el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	if err := e.el.Input(text); err != nil {
		return err
	}
	return e.el.Type(input.Enter)
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Attribute(name string) (string, bool) {
	attr, err := e.el.Attribute(name)
	if err != nil || attr == nil {
		return "", false
	}
	return *attr, true
}

func (e *rodElement) Visible() bool {
	visible, err := e.el.Visible()
	return err == nil && visible
}

func (e *rodElement) Enabled() bool {
	disabled, err := e.el.Property("disabled")
	if err != nil {
		return false
	}
	return !disabled.Bool()
}
