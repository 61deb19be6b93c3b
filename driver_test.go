package main

import (
	"fmt"
	"os"
)

// fakeElement implements Element for tests.
type fakeElement struct {
	text     string
	attrs    map[string]string
	visible  bool
	enabled  bool
	clickErr error

	clicks int
	inputs []string
}

func (e *fakeElement) Click() error {
	e.clicks++
	return e.clickErr
}

func (e *fakeElement) Input(text string) error {
	e.inputs = append(e.inputs, text)
	return nil
}

func (e *fakeElement) Text() (string, error) {
	return e.text, nil
}

func (e *fakeElement) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *fakeElement) Visible() bool { return e.visible }
func (e *fakeElement) Enabled() bool { return e.enabled }

// fakeDriver implements Driver against canned titles, page source and
// elements. Title() consumes the titles slice one entry per call and then
// repeats the last one.
type fakeDriver struct {
	titles   []string
	titleIdx int
	source   string
	elements map[string]*fakeElement

	navErr    error
	sourceErr error

	navigated   []string
	refreshes   int
	screenshots []string
}

func (d *fakeDriver) Navigate(url string) error {
	if d.navErr != nil {
		return d.navErr
	}
	d.navigated = append(d.navigated, url)
	return nil
}

func (d *fakeDriver) Title() (string, error) {
	if len(d.titles) == 0 {
		return "", nil
	}
	title := d.titles[d.titleIdx]
	if d.titleIdx < len(d.titles)-1 {
		d.titleIdx++
	}
	return title, nil
}

func (d *fakeDriver) PageSource() (string, error) {
	if d.sourceErr != nil {
		return "", d.sourceErr
	}
	return d.source, nil
}

func (d *fakeDriver) CurrentURL() (string, error) {
	if len(d.navigated) == 0 {
		return "", nil
	}
	return d.navigated[len(d.navigated)-1], nil
}

func (d *fakeDriver) Element(xpath string) (Element, bool) {
	el, ok := d.elements[xpath]
	if !ok {
		return nil, false
	}
	return el, true
}

func (d *fakeDriver) ElementByName(name string) (Element, bool) {
	return d.Element(fmt.Sprintf(`//*[@name=%q]`, name))
}

func (d *fakeDriver) Refresh() error {
	d.refreshes++
	return nil
}

func (d *fakeDriver) Screenshot(path string) error {
	d.screenshots = append(d.screenshots, path)
	return os.WriteFile(path, []byte("png"), 0644)
}

// captureNotifier records notifications for assertions.
type captureNotifier struct {
	messages    []string
	attachments []string
}

func (n *captureNotifier) Notify(message, attachmentPath string) {
	n.messages = append(n.messages, message)
	n.attachments = append(n.attachments, attachmentPath)
}

// fixedSolver always answers with the same solution.
type fixedSolver struct {
	solution string
	err      error
}

func (s *fixedSolver) Solve(string) (string, error) {
	return s.solution, s.err
}

// testConfig returns a config with all delays zeroed so tests run fast.
func testConfig() *Config {
	config := defaultConfig()
	config.Username = "buyer@example.com"
	config.Password = "hunter2"
	config.ASINGroups = [][]string{{"B07TEST001"}}
	config.Reserves = []float64{500}
	config.PageWaitDelay = 0
	config.WeirdPageDelay = 0
	return config
}

func testBot(config *Config, driver *fakeDriver) (*Bot, *captureNotifier) {
	notifier := &captureNotifier{}
	return NewBot(config, driver, NewSolver(""), notifier, nil), notifier
}
