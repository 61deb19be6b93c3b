package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// freeShippingPhrase marks offers whose shipping is waived above an order
// threshold. US storefront wording only.
const freeShippingPhrase = "FREE Shipping on orders over"

const (
	offerAddToCartSelector = `input[name="submit.addToCart"]`
	offerPriceSelector     = `.a-size-large.a-color-price.olpOfferPrice.a-text-bold`
	offerShippingSelector  = `.a-color-secondary`
)

// Offer is one seller's row on the offer-listing page, scraped fresh on
// every check and never persisted.
type Offer struct {
	PriceText    string
	ShippingText string
}

// checkStock scans the offer listing for asin and, when an offer's total
// is at or under reserve (or within a cent of it), clicks its add-to-cart
// affordance and verifies the cart page came up. The cent tolerance is
// deliberate: near-miss deals at the boundary must not be dropped over
// display rounding.
//
// Returns (true, nil) once the item is in the cart, (false, nil) when no
// qualifying offer exists or add-to-cart retries run out, and (false, err)
// when the scrape itself failed and no decision could be made.
func (b *Bot) checkStock(asin string, reserve float64) (bool, error) {
	b.session.AddToCartRetry = 0
	for {
		if b.session.AddToCartRetry > b.config.MaxATCRetries {
			log.Info().Str("asin", asin).Msg("Max add-to-cart retries hit, returning to stock polling")
			return false, nil
		}

		offers, err := b.scrapeOffers(asin)
		if err != nil {
			return false, err
		}

		clicked := false
		for i, offer := range offers {
			price, ok := parsePrice(offer.PriceText)
			if !ok {
				// Unreadable price, treat the whole listing as
				// suspect rather than guess.
				return false, nil
			}

			shipping := b.shippingAmount(offer.ShippingText)
			if !qualifies(price, shipping, reserve) {
				continue
			}

			log.Info().
				Str("asin", asin).
				Float64("price", price).
				Float64("shipping", shipping).
				Float64("reserve", reserve).
				Msg("Item in stock and under reserve, clicking add to cart")

			if err := b.clickAddToCart(i); err != nil {
				log.Error().Err(err).Str("asin", asin).Msg("Add-to-cart click failed")
				return false, err
			}
			b.settle()

			title, err := b.driver.Title()
			if err != nil {
				return false, err
			}
			if classifyTitle(title) == PageCart {
				b.history.Record(asin, EventStockHit, price+shipping, offer.PriceText)
				return true, nil
			}

			log.Info().Str("asin", asin).Str("title", title).Msg("Did not land on cart, retrying check")
			clicked = true
			break
		}

		if !clicked {
			return false, nil
		}
		b.session.AddToCartRetry++
	}
}

// scrapeOffers loads the offer listing and reads the parallel rows of
// add-to-cart buttons, prices and shipping texts out of the rendered DOM.
func (b *Bot) scrapeOffers(asin string) ([]Offer, error) {
	if err := b.driver.Navigate(b.config.offerListingURL(asin)); err != nil {
		return nil, err
	}

	source, err := b.driver.PageSource()
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("failed to parse offer listing for %s: %w", asin, err)
	}

	buttons := doc.Find(offerAddToCartSelector)
	prices := doc.Find(offerPriceSelector)
	shippings := doc.Find(offerShippingSelector)

	var offers []Offer
	buttons.Each(func(i int, _ *goquery.Selection) {
		if i >= prices.Length() {
			return
		}
		offer := Offer{PriceText: strings.TrimSpace(prices.Eq(i).Text())}
		if i < shippings.Length() {
			offer.ShippingText = strings.TrimSpace(shippings.Eq(i).Text())
		}
		offers = append(offers, offer)
	})

	log.Debug().Str("asin", asin).Int("offers", len(offers)).Msg("Offer listing scraped")
	return offers, nil
}

// shippingAmount resolves an offer's shipping cost. The free-over-threshold
// phrase wins over any number in the text; unreadable shipping or disabled
// shipping accounting both count as zero.
func (b *Bot) shippingAmount(text string) float64 {
	if strings.Contains(text, freeShippingPhrase) {
		return 0
	}
	amount, ok := parsePrice(text)
	if !ok || !b.config.CheckShipping {
		return 0
	}
	return amount
}

// qualifies applies the reserve comparison with its one-cent boundary
// tolerance.
func qualifies(price, shipping, reserve float64) bool {
	total := price + shipping
	return total <= reserve || math.Abs(total-reserve) <= 0.01
}

// clickAddToCart clicks the i-th add-to-cart button via the live driver
// (the scrape only read the static HTML). XPath is 1-indexed.
func (b *Bot) clickAddToCart(i int) error {
	xpath := fmt.Sprintf(`(//*[@name="submit.addToCart"])[%d]`, i+1)
	el, ok := b.driver.Element(xpath)
	if !ok {
		return fmt.Errorf("add-to-cart button %d vanished before click", i)
	}
	return el.Click()
}
