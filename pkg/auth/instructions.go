package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowCookieExtractionGuide writes instructions for copying the twitter
// session cookies out of a logged-in browser
func ShowCookieExtractionGuide(w io.Writer) {
	rule := strings.Repeat("=", 80)
	lines := []string{
		rule,
		"📚 TWITTER COOKIE EXTRACTION GUIDE",
		rule,
		"",
		"twfollow drives a browser logged in with your twitter session cookies.",
		"",
		"🌐 STEP 1: Log in at https://twitter.com in your usual browser",
		"",
		"🔧 STEP 2: Open Developer Tools (F12, or Cmd+Option+I on Mac)",
		"",
		"🍪 STEP 3: Application tab (Chrome) or Storage tab (Firefox) → Cookies → https://twitter.com",
		"",
		"🔑 STEP 4: Copy these values:",
		"   auth_token   40 hex characters, HttpOnly",
		"   ct0          the CSRF token, usually 32 or 160 characters",
		"",
		"💡 TIPS:",
		"   • Copy the value only, without quotes or semicolons",
		"   • Logging out of the browser invalidates auth_token",
		"",
		"⚠️  These cookies give full access to the account. Never share them.",
		rule,
		"",
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// ShowQuickExtractGuide writes the one-line version of the guide
func ShowQuickExtractGuide(w io.Writer) {
	fmt.Fprintln(w, "\n🍪 Quick Guide: F12 → Application → Cookies → https://twitter.com")
	fmt.Fprintln(w, "   Need: auth_token=... and ct0=...")
	fmt.Fprintln(w, "   Type 'help' for detailed instructions")
}
