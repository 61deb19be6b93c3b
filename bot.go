package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Bot owns the single browser session and the configured product groups.
// All state is mutated from one goroutine; there is no concurrency in the
// purchase flow itself.
type Bot struct {
	config   *Config
	driver   Driver
	solver   Solver
	notifier Notifier
	history  *History

	session     CheckoutSession
	currentASIN string
}

// CheckoutSession is the per-attempt retry state. It is reset before each
// stock hit and discarded when the attempt ends, one way or another.
type CheckoutSession struct {
	TryingToCheckout bool
	CheckoutRetry    int
	OrderRetry       int
	AddToCartRetry   int
}

func NewBot(config *Config, driver Driver, solver Solver, notifier Notifier, history *History) *Bot {
	return &Bot{
		config:   config,
		driver:   driver,
		solver:   solver,
		notifier: notifier,
		history:  history,
	}
}

// Run is the outer loop: poll all groups for an affordable in-stock offer,
// then drive the checkout state machine until it succeeds or a retry
// budget runs out. Each purchased (or, in test mode, exhausted) group is
// removed; Run returns when no groups remain or ctx is canceled.
func (b *Bot) Run(ctx context.Context, pollDelay time.Duration) error {
	if err := b.driver.Navigate(b.config.baseURL()); err != nil {
		return err
	}
	log.Info().Msg("Waiting for home page")
	if err := b.handleStartup(ctx); err != nil {
		return err
	}
	b.saveScreenshot("bot-started")

	for len(b.config.ASINGroups) > 0 {
		b.session = CheckoutSession{}

		asin, err := b.pollASINs(ctx, pollDelay)
		if err != nil {
			return err
		}

		b.runCheckout(ctx, asin)
	}

	log.Info().Msg("All product groups handled, shutting down")
	return nil
}

// runCheckout drives the state machine for one found item until checkout
// succeeds, a retry budget runs out, or the iteration cap trips. The cap
// is the termination guarantee: it ends the attempt even when no handler
// ever touches a counter (endless Unknown or Prime pages, say).
func (b *Bot) runCheckout(ctx context.Context, asin string) {
	b.currentASIN = asin
	b.session.TryingToCheckout = true
	iterations := 0

	for b.session.TryingToCheckout {
		b.navigatePages(ctx)

		if !b.session.TryingToCheckout {
			b.removeGroup(asin)
		} else if b.session.CheckoutRetry > b.config.MaxPTCRetries {
			log.Info().Int("retries", b.session.CheckoutRetry).Msg("Checkout-start retries exhausted, abandoning attempt")
			b.history.Record(asin, EventCheckoutFail, 0, "proceed-to-checkout retries exhausted")
			b.session.TryingToCheckout = false
		} else if b.session.OrderRetry > b.config.MaxPYORetries {
			log.Info().Int("retries", b.session.OrderRetry).Msg("Place-order retries exhausted, abandoning attempt")
			b.history.Record(asin, EventCheckoutFail, 0, "place-order retries exhausted")
			if b.config.TestMode {
				b.removeGroup(asin)
			}
			b.session.TryingToCheckout = false
		}

		iterations++
		if iterations > b.config.MaxCheckoutLoops {
			log.Warn().Int("iterations", iterations).Msg("Checkout loop cap reached, abandoning attempt")
			b.session.TryingToCheckout = false
		}
	}
}

// pollASINs cycles through every group until some ASIN has an affordable
// in-stock offer (and is in the cart). Scrape errors count as "no decision
// this cycle" and are retried after the delay.
func (b *Bot) pollASINs(ctx context.Context, delay time.Duration) (string, error) {
	for {
		for i := range b.config.ASINGroups {
			for _, asin := range b.config.ASINGroups[i] {
				if err := ctx.Err(); err != nil {
					return "", err
				}

				inCart, err := b.checkStock(asin, b.config.Reserves[i])
				if err != nil {
					log.Error().Err(err).Str("asin", asin).Msg("Stock check failed, will retry")
				}
				if inCart {
					return asin, nil
				}

				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(delay):
				}
			}
		}
	}
}

// removeGroup drops the whole group containing asin, keeping ASINGroups
// and Reserves aligned.
func (b *Bot) removeGroup(asin string) {
	for i := range b.config.ASINGroups {
		for _, a := range b.config.ASINGroups[i] {
			if a == asin {
				b.config.ASINGroups = append(b.config.ASINGroups[:i], b.config.ASINGroups[i+1:]...)
				b.config.Reserves = append(b.config.Reserves[:i], b.config.Reserves[i+1:]...)
				return
			}
		}
	}
}

func (b *Bot) settle() {
	time.Sleep(b.config.PageWaitDelay)
}

func (b *Bot) weirdPageWait() {
	time.Sleep(b.config.WeirdPageDelay)
}
