package overlay

import "net/url"

// Suppression of the widget's built-in share control happens on three
// layers. The cover panels (geometry.go) are the only guaranteed one;
// the CSS rules and postMessage commands below are advisory guesses at
// selectors and command shapes the embedded widget might honor, and may
// silently do nothing on any given widget version.

// HideCommand is one guessed postMessage payload sent into the embedded
// frame.
type HideCommand map[string]interface{}

// HideCommands returns the command shapes tried against the frame.
func HideCommands() []HideCommand {
	return []HideCommand{
		{"type": "hide-share-button"},
		{"type": "config", "payload": map[string]interface{}{"showShareButton": false}},
		{"action": "hideShareButton"},
		{"type": "webchat-config", "config": map[string]interface{}{"enableShare": false}},
		{"type": "customize", "css": ".share-button { display: none !important; }"},
	}
}

// SuppressionSelectors returns the CSS selectors targeting likely
// renditions of the built-in share control.
func SuppressionSelectors() []string {
	return []string{
		`[class*="share"]`,
		`[aria-label*="share" i]`,
		`[title*="share" i]`,
		`button[class*="Share"]`,
		`[data-testid*="share"]`,
	}
}

// SuppressionCSS returns the injected rule set hiding every selector.
func SuppressionCSS() string {
	css := ""
	for _, sel := range SuppressionSelectors() {
		css += sel + " { display: none !important; visibility: hidden !important; }\n"
	}
	return css
}

// ShareTarget is one destination in the app-owned share menu that
// replaces the suppressed control.
type ShareTarget struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Kind string `json:"kind"` // "link" or "clipboard"
}

// ShareTargets builds the share menu for a given page URL and message.
func ShareTargets(pageURL, message string) []ShareTarget {
	return []ShareTarget{
		{Name: "WhatsApp", Kind: "link", URL: "https://wa.me/?text=" + url.QueryEscape(message+" "+pageURL)},
		{Name: "Facebook", Kind: "link", URL: "https://www.facebook.com/sharer/sharer.php?u=" + url.QueryEscape(pageURL)},
		{Name: "X", Kind: "link", URL: "https://twitter.com/intent/tweet?text=" + url.QueryEscape(message) + "&url=" + url.QueryEscape(pageURL)},
		{Name: "Copy link", Kind: "clipboard"},
	}
}
