package utils

import (
	"net/url"
)

// IsValidUrl reports whether str is an absolute http(s) url
func IsValidUrl(str string) bool {
	u, err := url.Parse(str)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
