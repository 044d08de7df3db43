package backend

import (
	"net/http"
	"regexp"
	"strings"
)

var mobileUA = regexp.MustCompile(`(?i)android|webos|iphone|ipad|ipod|blackberry|iemobile|opera mini|mobile`)

// IsMobile reports whether the browser behind r looks like a mobile device,
// from its user agent or the Sec-CH-UA-Mobile client hint.
func IsMobile(r *http.Request) bool {
	if r == nil {
		return false
	}
	if strings.TrimSpace(r.Header.Get("Sec-CH-UA-Mobile")) == "?1" {
		return true
	}
	return mobileUA.MatchString(r.UserAgent())
}
