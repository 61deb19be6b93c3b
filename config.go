package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config is the autobuy configuration loaded from amazon_config.json.
// ASINGroups and Reserves are parallel slices: group i is bought when any
// ASIN in ASINGroups[i] has an offer at or under Reserves[i].
type Config struct {
	Username      string
	Password      string
	AmazonWebsite string
	ASINGroups    [][]string
	Reserves      []float64

	// Optional integration endpoints. Empty disables the integration.
	WebhookURL  string
	RedisAddr   string
	RedisStream string
	SolverURL   string
	HistoryPath string

	// Runtime knobs, flag-settable.
	Headless      bool
	CheckShipping bool
	TestMode      bool

	// Retry budgets and delays. MaxCheckoutLoops is the hard backstop on
	// the inner checkout loop, independent of the per-state counters.
	MaxCheckoutLoops int
	MaxPTCRetries    int
	MaxPYORetries    int
	MaxATCRetries    int
	PageWaitDelay    time.Duration
	WeirdPageDelay   time.Duration

	// TwoFactorTimeout bounds the wait for manual two-step verification.
	// Zero keeps the historical behavior of waiting forever.
	TwoFactorTimeout time.Duration
}

func defaultConfig() *Config {
	return &Config{
		AmazonWebsite:    "smile.amazon.com",
		RedisStream:      "swoop:notifications",
		MaxCheckoutLoops: 20,
		MaxPTCRetries:    3,
		MaxPYORetries:    3,
		MaxATCRetries:    3,
		PageWaitDelay:    500 * time.Millisecond,
		WeirdPageDelay:   5 * time.Second,
	}
}

// rawConfig mirrors the fixed fields of the JSON file; the per-group
// asin_list_N / reserve_N keys are dynamic and read from the raw map.
type rawConfig struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	AmazonWebsite string `json:"amazon_website"`
	ASINGroupsN   int    `json:"asin_groups"`
	WebhookURL    string `json:"webhook_url"`
	RedisAddr     string `json:"redis_addr"`
	RedisStream   string `json:"redis_stream"`
	SolverURL     string `json:"solver_url"`
	HistoryPath   string `json:"history_path"`
}

// LoadConfig reads and validates the autobuy config file. Any missing or
// malformed required field is an error; the operator has to fix the file,
// so callers treat a non-nil error as fatal.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fixed rawConfig
	if err := json.Unmarshal(data, &fixed); err != nil {
		return nil, fmt.Errorf("config file %s is not valid JSON: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config file %s is not valid JSON: %w", path, err)
	}

	config := defaultConfig()
	config.Username = fixed.Username
	config.Password = fixed.Password
	if fixed.AmazonWebsite != "" {
		config.AmazonWebsite = fixed.AmazonWebsite
	}
	config.WebhookURL = fixed.WebhookURL
	config.RedisAddr = fixed.RedisAddr
	if fixed.RedisStream != "" {
		config.RedisStream = fixed.RedisStream
	}
	config.SolverURL = fixed.SolverURL
	config.HistoryPath = fixed.HistoryPath

	// Credentials may come from the environment instead of the file,
	// typically via a .env loaded at startup.
	if v := os.Getenv("SWOOP_USERNAME"); v != "" {
		config.Username = v
	}
	if v := os.Getenv("SWOOP_PASSWORD"); v != "" {
		config.Password = v
	}

	if config.Username == "" {
		return nil, fmt.Errorf("config %s: username is required", path)
	}
	if config.Password == "" {
		return nil, fmt.Errorf("config %s: password is required", path)
	}
	if fixed.ASINGroupsN <= 0 {
		return nil, fmt.Errorf("config %s: asin_groups must be a positive integer", path)
	}

	for n := 1; n <= fixed.ASINGroupsN; n++ {
		listKey := fmt.Sprintf("asin_list_%d", n)
		reserveKey := fmt.Sprintf("reserve_%d", n)

		listRaw, ok := raw[listKey]
		if !ok {
			return nil, fmt.Errorf("config %s: missing %s", path, listKey)
		}
		var asins []string
		if err := json.Unmarshal(listRaw, &asins); err != nil {
			return nil, fmt.Errorf("config %s: %s must be an array of strings: %w", path, listKey, err)
		}
		if len(asins) == 0 {
			return nil, fmt.Errorf("config %s: %s is empty", path, listKey)
		}

		reserveRaw, ok := raw[reserveKey]
		if !ok {
			return nil, fmt.Errorf("config %s: missing %s", path, reserveKey)
		}
		var reserve float64
		if err := json.Unmarshal(reserveRaw, &reserve); err != nil {
			return nil, fmt.Errorf("config %s: %s must be a number: %w", path, reserveKey, err)
		}
		if reserve < 0 {
			return nil, fmt.Errorf("config %s: %s must not be negative", path, reserveKey)
		}

		config.ASINGroups = append(config.ASINGroups, asins)
		config.Reserves = append(config.Reserves, reserve)
	}

	return config, nil
}

// URL templates for the target storefront.
func (c *Config) baseURL() string {
	return fmt.Sprintf("https://%s/", c.AmazonWebsite)
}

func (c *Config) offerListingURL(asin string) string {
	url := fmt.Sprintf("https://%s/gp/offer-listing/%s/ref=olp_f_new&f_new=true", c.AmazonWebsite, asin)
	if !c.CheckShipping {
		url += "&f_freeShipping=on"
	}
	return url
}

func (c *Config) checkoutURL(cartID string) string {
	return fmt.Sprintf(
		"https://%s/gp/cart/desktop/go-to-checkout.html/ref=ox_sc_proceed?partialCheckoutCart=1&isToBeGiftWrappedBefore=0&proceedToRetailCheckout=Proceed+to+checkout&proceedToCheckout=1&cartInitiateId=%s",
		c.AmazonWebsite, cartID)
}
