package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	accountListXPath = `//*[@id="nav-link-accountList"]`
	emailFieldXPath  = `//*[@id="ap_email"]`
	passwordXPath    = `//*[@id="ap_password"]`
	authErrorXPath   = `//*[@id="auth-error-message-box"]`
	rememberMeXPath  = `//*[@name="rememberMe"]`
	smileHelloXPath  = `//*[@id="ge-hello"]/div/span/a`
	accountLinkXPath = `//*[@id="nav-link-accountList"]/div/span`
)

// authErrorCooldown is the pause before exiting on a rejected login, so a
// bad stored password doesn't hammer the auth endpoint in a restart loop.
const authErrorCooldown = 240 * time.Second

// handleStartup makes sure the session is signed in before polling starts.
func (b *Bot) handleStartup(ctx context.Context) error {
	if b.isLoggedIn() {
		log.Info().Msg("Already logged in")
		return nil
	}

	log.Info().Msg("Not logged in, opening sign-in page")
	xpath := accountLinkXPath
	if strings.Contains(b.config.AmazonWebsite, "smile") {
		xpath = smileHelloXPath
	}
	if el, ok := b.driver.Element(xpath); ok {
		if err := el.Click(); err != nil {
			log.Error().Err(err).Msg("Could not click sign-in link")
		}
	}
	b.settle()

	return b.login(ctx)
}

// isLoggedIn reads the account widget; a sign-in greeting in any locale
// means we are not.
func (b *Bot) isLoggedIn() bool {
	el, ok := b.driver.Element(accountListXPath)
	if !ok {
		return false
	}
	text, err := el.Text()
	if err != nil {
		return false
	}
	for _, greeting := range signInGreetings {
		if strings.Contains(text, greeting) {
			return false
		}
	}
	return true
}

// login submits the stored credentials. Some flows skip the email field
// (session remembered the account), so its absence is fine. An explicit
// auth-error box is fatal: the stored credentials are wrong and retrying
// would only burn the account, so cool down and exit.
func (b *Bot) login(ctx context.Context) error {
	if el, ok := b.driver.Element(emailFieldXPath); ok {
		log.Info().Msg("Entering email")
		if err := el.Input(b.config.Username); err != nil {
			return fmt.Errorf("failed to enter email: %w", err)
		}
	} else {
		log.Info().Msg("Email not needed")
	}

	if _, ok := b.driver.Element(authErrorXPath); ok {
		log.Error().Msg("Login failed, check the username in your config")
		time.Sleep(authErrorCooldown)
		log.Fatal().Msg("Exiting after authentication error")
	}

	if el, ok := b.driver.Element(rememberMeXPath); ok {
		log.Info().Msg("Checking remember-me")
		if err := el.Click(); err != nil {
			log.Error().Err(err).Msg("Could not click remember-me")
		}
	}

	log.Info().Msg("Entering password")
	el, ok := b.driver.Element(passwordXPath)
	if !ok {
		return fmt.Errorf("password field not found on sign-in page")
	}
	if err := el.Input(b.config.Password); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}

	time.Sleep(time.Second)

	if err := b.waitForTwoFactor(ctx); err != nil {
		return err
	}

	log.Info().Str("user", b.config.Username).Msg("Logged in")
	return nil
}

// waitForTwoFactor blocks while the two-step verification page is up,
// polling the title until a human completes the challenge in the browser.
// With TwoFactorTimeout zero the wait is unbounded; either way ctx
// cancellation gets us out.
func (b *Bot) waitForTwoFactor(ctx context.Context) error {
	title, err := b.driver.Title()
	if err != nil {
		return err
	}
	if classifyTitle(title) != PageTwoFactor {
		return nil
	}

	log.Info().Msg("Enter your two-step verification code in the browser")
	b.notifier.Notify("Two-step verification required, complete it in the browser", "")

	deadline := time.Time{}
	if b.config.TwoFactorTimeout > 0 {
		deadline = time.Now().Add(b.config.TwoFactorTimeout)
	}

	for classifyTitle(title) == PageTwoFactor {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return fmt.Errorf("two-step verification not completed within %s", b.config.TwoFactorTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.config.WeirdPageDelay):
		}

		title, err = b.driver.Title()
		if err != nil {
			return err
		}
	}
	return nil
}
