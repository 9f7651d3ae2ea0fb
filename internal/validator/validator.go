// Package validator checks URL syntax before any network activity happens.
package validator

import (
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"tldrgram/internal/domain"
	"unicode"

	"golang.org/x/net/idna"
)

const (
	youTubeMarker = "youtube.com"
	maxHostLength = 253
	maxPort       = 65535
)

var hostLabelRe = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)

// IsValid reports whether s is an absolute http(s) URL with a well-formed host.
func IsValid(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}

	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}

	if u.Opaque != "" || u.Host == "" {
		return false
	}

	if port := u.Port(); port != "" {
		n, convErr := strconv.Atoi(port)
		if convErr != nil || n < 1 || n > maxPort {
			return false
		}
	} else if strings.HasSuffix(u.Host, ":") {
		return false
	}

	return validHost(u.Hostname())
}

// Classify tags s by platform. It does not validate.
func Classify(s string) domain.TargetURL {
	s = strings.TrimSpace(s)

	kind := domain.KindGeneric
	if strings.Contains(s, youTubeMarker) {
		kind = domain.KindYouTube
	}

	return domain.TargetURL{Raw: s, Kind: kind}
}

func validHost(host string) bool {
	if host == "" {
		return false
	}

	if net.ParseIP(host) != nil {
		return true
	}

	if strings.EqualFold(host, "localhost") {
		return true
	}

	// Internationalized names are checked in their punycode form.
	host, err := idna.Lookup.ToASCII(host)
	if err != nil || len(host) > maxHostLength {
		return false
	}

	labels := strings.Split(strings.TrimSuffix(host, "."), ".")
	if len(labels) < 2 {
		return false
	}

	for _, label := range labels {
		if !hostLabelRe.MatchString(label) {
			return false
		}
	}

	tld := labels[len(labels)-1]
	for _, r := range tld {
		if !unicode.IsDigit(r) {
			return true
		}
	}

	return false
}
