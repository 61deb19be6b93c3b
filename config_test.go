package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "amazon_config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"username": "buyer@example.com",
		"password": "hunter2",
		"amazon_website": "amazon.co.uk",
		"asin_groups": 2,
		"asin_list_1": ["B07XGS1P5K", "B07XGS2Q6L"],
		"reserve_1": 500.00,
		"asin_list_2": ["B08FAKE001"],
		"reserve_2": 42.50
	}`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Username != "buyer@example.com" {
		t.Errorf("Expected username 'buyer@example.com', got '%s'", config.Username)
	}
	if config.AmazonWebsite != "amazon.co.uk" {
		t.Errorf("Expected website 'amazon.co.uk', got '%s'", config.AmazonWebsite)
	}
	if len(config.ASINGroups) != 2 || len(config.Reserves) != 2 {
		t.Fatalf("Expected 2 parallel groups, got %d groups / %d reserves",
			len(config.ASINGroups), len(config.Reserves))
	}
	if len(config.ASINGroups[0]) != 2 || config.ASINGroups[0][0] != "B07XGS1P5K" {
		t.Errorf("Group 1 not loaded correctly: %v", config.ASINGroups[0])
	}
	if config.Reserves[1] != 42.50 {
		t.Errorf("Expected reserve_2 42.50, got %v", config.Reserves[1])
	}

	// Tunable defaults
	if config.MaxCheckoutLoops != 20 {
		t.Errorf("Expected MaxCheckoutLoops 20, got %d", config.MaxCheckoutLoops)
	}
	if config.MaxPTCRetries != 3 || config.MaxPYORetries != 3 || config.MaxATCRetries != 3 {
		t.Errorf("Expected retry budgets of 3, got %d/%d/%d",
			config.MaxPTCRetries, config.MaxPYORetries, config.MaxATCRetries)
	}
}

func TestLoadConfigDefaultWebsite(t *testing.T) {
	path := writeConfig(t, `{
		"username": "u",
		"password": "p",
		"asin_groups": 1,
		"asin_list_1": ["B07XGS1P5K"],
		"reserve_1": 100
	}`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.AmazonWebsite != "smile.amazon.com" {
		t.Errorf("Expected default website 'smile.amazon.com', got '%s'", config.AmazonWebsite)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"username": `},
		{"missing username", `{"password": "p", "asin_groups": 1, "asin_list_1": ["A"], "reserve_1": 1}`},
		{"missing password", `{"username": "u", "asin_groups": 1, "asin_list_1": ["A"], "reserve_1": 1}`},
		{"missing asin_groups", `{"username": "u", "password": "p"}`},
		{"missing asin_list", `{"username": "u", "password": "p", "asin_groups": 1, "reserve_1": 1}`},
		{"missing reserve", `{"username": "u", "password": "p", "asin_groups": 1, "asin_list_1": ["A"]}`},
		{"empty asin_list", `{"username": "u", "password": "p", "asin_groups": 1, "asin_list_1": [], "reserve_1": 1}`},
		{"negative reserve", `{"username": "u", "password": "p", "asin_groups": 1, "asin_list_1": ["A"], "reserve_1": -5}`},
		{"non-numeric reserve", `{"username": "u", "password": "p", "asin_groups": 1, "asin_list_1": ["A"], "reserve_1": "cheap"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("Expected error for %s, got nil", tt.name)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, `{
		"username": "file-user",
		"password": "file-pass",
		"asin_groups": 1,
		"asin_list_1": ["A"],
		"reserve_1": 1
	}`)

	t.Setenv("SWOOP_USERNAME", "env-user")
	t.Setenv("SWOOP_PASSWORD", "env-pass")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Username != "env-user" || config.Password != "env-pass" {
		t.Errorf("Expected env credentials to win, got %s/%s", config.Username, config.Password)
	}
}

func TestOfferListingURL(t *testing.T) {
	config := testConfig()
	config.AmazonWebsite = "smile.amazon.com"

	config.CheckShipping = false
	url := config.offerListingURL("B07XGS1P5K")
	want := "https://smile.amazon.com/gp/offer-listing/B07XGS1P5K/ref=olp_f_new&f_new=true&f_freeShipping=on"
	if url != want {
		t.Errorf("offerListingURL = %s, want %s", url, want)
	}

	config.CheckShipping = true
	url = config.offerListingURL("B07XGS1P5K")
	want = "https://smile.amazon.com/gp/offer-listing/B07XGS1P5K/ref=olp_f_new&f_new=true"
	if url != want {
		t.Errorf("offerListingURL with shipping = %s, want %s", url, want)
	}
}

func TestCheckoutURL(t *testing.T) {
	config := testConfig()
	config.AmazonWebsite = "smile.amazon.com"

	url := config.checkoutURL("abc123")
	if url != "https://smile.amazon.com/gp/cart/desktop/go-to-checkout.html/ref=ox_sc_proceed?partialCheckoutCart=1&isToBeGiftWrappedBefore=0&proceedToRetailCheckout=Proceed+to+checkout&proceedToCheckout=1&cartInitiateId=abc123" {
		t.Errorf("unexpected checkout URL: %s", url)
	}
}
