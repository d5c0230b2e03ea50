package scraper

import "errors"

// ErrBrowserLaunch indicates the headless browser process could not be
// started (missing binary, resource exhaustion).
var ErrBrowserLaunch = errors.New("browser launch failed")

// ErrExtractionTimeout indicates the target page did not render its
// content within the navigation timeout.
var ErrExtractionTimeout = errors.New("extraction timed out")
