package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// timestampedFilename appends an MM-DD-YYYY_HH_MM_SS timestamp between the
// name and the extension, e.g. screenshot-captcha_01-02-2026_15_04_05.png.
func timestampedFilename(name, extension string) string {
	date := time.Now().Format("01-02-2006_15_04_05")
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return name + "_" + date + extension
}

// saveScreenshot captures the current page to a timestamped PNG and pushes
// it to the notification channel. Diagnostics only; failures never stop the
// flow.
func (b *Bot) saveScreenshot(label string) string {
	fileName := timestampedFilename("screenshot-"+label, ".png")

	if err := b.driver.Screenshot(fileName); err != nil {
		log.Error().Err(err).Str("label", label).Msg("Error taking screenshot")
		return ""
	}

	b.notifier.Notify(label, fileName)
	return fileName
}

// savePageSource dumps the live DOM to a timestamped HTML file, capturing
// state changes from JS since the original response.
func (b *Bot) savePageSource(label string) {
	fileName := timestampedFilename(label+"_source", "html")

	source, err := b.driver.PageSource()
	if err != nil {
		log.Error().Err(err).Str("label", label).Msg("Error reading page source")
		return
	}
	if err := os.WriteFile(fileName, []byte(source), 0644); err != nil {
		log.Error().Err(err).Str("file", fileName).Msg("Error writing page source")
	}
}
