package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const (
	captchaFormXPath   = `//form[@action="/errors/validateCaptcha"]`
	captchaInputXPath  = `//*[@id="captchacharacters"]`
	navCartXPath       = `//*[@id="nav-cart"]`
	primeNoThanksXPath = `//*[contains(@class, "no-thanks-button")]`
)

// ptcButtonXPaths are the known "proceed to checkout" buttons on the cart
// page, in preference order.
var ptcButtonXPaths = []string{
	`//*[@id="hlb-ptc-btn-native"]`,
	`//*[@id="hlb-ptc-btn"]`,
}

// submitOrderXPaths are the known place-order buttons on the checkout
// page. More turn up over time; the list is ordered by how often each is
// seen.
var submitOrderXPaths = []string{
	`//*[@id="submitOrderButtonId"]/span/input`,
	`//*[@id="bottomSubmitOrderButtonId"]/span/input`,
}

// navigatePages classifies the live page by title and runs exactly one
// state handler. Unknown pages get diagnostics captured and are otherwise
// left alone; the iteration cap in Run ends the attempt if they persist.
func (b *Bot) navigatePages(ctx context.Context) {
	b.settle()

	title, err := b.driver.Title()
	if err != nil {
		log.Error().Err(err).Msg("Could not read page title")
		return
	}

	state := classifyTitle(title)
	log.Debug().Str("title", title).Stringer("state", state).Msg("Page classified")

	switch state {
	case PageSignIn:
		if err := b.login(ctx); err != nil {
			log.Error().Err(err).Msg("Re-login failed")
		}
	case PageCaptcha:
		b.handleCaptcha()
	case PageCart:
		b.handleCart()
	case PageCheckout:
		b.handleCheckout()
	case PageOrderComplete:
		b.handleOrderComplete()
	case PagePrime:
		b.handlePrimeSignup()
	case PageHomePage:
		// Landing back on the home page mid-checkout means something
		// went wrong; try to get back via the cart icon.
		b.handleHomePage()
	case PageDoggos:
		b.handleDoggos()
	default:
		log.Error().Str("title", title).Msg("Unknown page title, capturing diagnostics")
		b.saveScreenshot("unknown-title")
		b.savePageSource("unknown-title")
	}
}

// handleCart starts checkout. Fast path: lift the hidden cartInitiateId
// token and jump straight to the checkout URL. Fallback: click a known
// proceed-to-checkout button. Neither working costs one checkout retry.
func (b *Bot) handleCart() {
	if el, ok := b.driver.ElementByName("cartInitiateId"); ok {
		if cartID, ok := el.Attribute("value"); ok && cartID != "" {
			log.Info().Msg("Quick redirect to checkout page")
			if err := b.driver.Navigate(b.config.checkoutURL(cartID)); err == nil {
				return
			}
			log.Warn().Msg("Quick checkout redirect failed, falling back to button")
		}
	}

	log.Info().Msg("Clicking proceed to checkout")
	for _, xpath := range ptcButtonXPaths {
		if el, ok := b.driver.Element(xpath); ok {
			if err := el.Click(); err == nil {
				return
			}
		}
	}

	b.saveScreenshot("start-checkout-fail")
	log.Info().Msg("Failed to start checkout")
	if err := b.driver.Refresh(); err != nil {
		log.Error().Err(err).Msg("Refresh failed")
	}
	b.session.CheckoutRetry++
}

// handleCheckout looks for a visible, enabled place-order button and
// clicks it (test mode only logs). The page is always refreshed and the
// order retry counter bumped afterward: confirmation arrives as a title
// change on a later pass, not as a return value here.
func (b *Bot) handleCheckout() {
	var button Element
	for _, xpath := range submitOrderXPaths {
		el, ok := b.driver.Element(xpath)
		if !ok {
			log.Debug().Str("xpath", xpath).Msg("Submit button not present, trying next")
			continue
		}
		if el.Visible() && el.Enabled() {
			button = el
			break
		}
	}

	if button != nil {
		if b.config.TestMode {
			log.Info().Msg("Found place-order button, but this is a test run")
		} else {
			log.Info().Msg("Clicking place-order button")
			if err := button.Click(); err != nil {
				log.Error().Err(err).Msg("Place-order click failed")
			}
			b.settle()
		}
	}

	if err := b.driver.Refresh(); err != nil {
		log.Error().Err(err).Msg("Refresh failed")
	}
	b.session.OrderRetry++
}

func (b *Bot) handleOrderComplete() {
	log.Info().Str("asin", b.currentASIN).Msg("Order placed")
	b.saveScreenshot("order-placed")
	b.history.Record(b.currentASIN, EventOrderPlaced, 0, "")
	b.session.TryingToCheckout = false
}

func (b *Bot) handleDoggos() {
	b.notifier.Notify("You got dogs, bot may not work correctly. Ending checkout.", "")
	b.history.Record(b.currentASIN, EventCheckoutFail, 0, "site error page")
	b.session.TryingToCheckout = false
}

func (b *Bot) handlePrimeSignup() {
	log.Info().Msg("Prime offer page popped up, attempting to click No Thanks")
	if el, ok := b.driver.Element(primeNoThanksXPath); ok {
		err := el.Click()
		if err == nil {
			return
		}
		log.Error().Err(err).Msg("Could not click No Thanks")
	}
	b.notifier.Notify("Prime offer page popped up, user intervention required", "")
	b.weirdPageWait()
}

func (b *Bot) handleHomePage() {
	log.Info().Msg("On home page, trying to get back to checkout")
	if el, ok := b.driver.Element(navCartXPath); ok {
		if err := el.Click(); err == nil {
			return
		}
	}
	b.notifier.Notify("Could not click cart button, user intervention required", "")
	b.weirdPageWait()
}

// handleCaptcha runs the solver against the robot-check form. An unsolved
// or failed solve reloads the page for a fresh captcha; a missing form
// means the title lied, so just refresh.
func (b *Bot) handleCaptcha() {
	if _, ok := b.driver.Element(captchaFormXPath); !ok {
		log.Error().Msg("Captcha page does not contain captcha form, refreshing")
		b.driver.Refresh()
		return
	}

	log.Info().Msg("Stuck on a captcha, trying to solve it")

	imageURL, err := b.captchaImageURL()
	if err != nil {
		log.Error().Err(err).Msg("Could not locate captcha image, refreshing")
		b.driver.Refresh()
		b.weirdPageWait()
		return
	}

	solution, err := b.solver.Solve(imageURL)
	if err != nil {
		log.Error().Err(err).Msg("Error solving captcha, refreshing")
		b.driver.Refresh()
		b.weirdPageWait()
		return
	}
	log.Info().Str("solution", solution).Msg("Captcha solver answered")

	if solution == NotSolved {
		log.Info().Str("image", imageURL).Msg("Captcha unsolved, reloading for a new one")
		b.driver.Refresh()
		b.weirdPageWait()
		return
	}

	b.saveScreenshot("captcha")
	el, ok := b.driver.Element(captchaInputXPath)
	if !ok {
		log.Error().Msg("Captcha input field missing, refreshing")
		b.driver.Refresh()
		return
	}
	if err := el.Input(solution); err != nil {
		log.Error().Err(err).Msg("Failed to submit captcha solution")
		b.driver.Refresh()
	}
}

// captchaImageURL pulls the captcha image link out of the validateCaptcha
// form in the page source.
func (b *Bot) captchaImageURL() (string, error) {
	source, err := b.driver.PageSource()
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return "", fmt.Errorf("failed to parse captcha page: %w", err)
	}

	src, ok := doc.Find(`form[action="/errors/validateCaptcha"] img`).Attr("src")
	if !ok || src == "" {
		return "", fmt.Errorf("captcha form has no image")
	}
	return src, nil
}
