package utils

import (
	"net/url"
	"strings"
)

// ResolveURL makes ref absolute against host. Protocol-relative refs get http.
func ResolveURL(host, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "//") {
		return "http:" + ref, nil
	}

	base, err := url.Parse(host)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(u).String(), nil
}
