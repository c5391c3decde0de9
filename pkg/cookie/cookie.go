// Package cookie provides implementations of the apicall.CookieReader interface.
package cookie

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Static is a fixed set of cookies, name -> value.
type Static map[string]string

// Cookie returns the first matching cookie, names are compared in lexical order.
func (s Static) Cookie(_ context.Context, match func(name string) bool) (string, bool) {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if match(name) {
			return s[name], true
		}
	}
	return "", false
}

// ParseDocumentCookie parses cookies in the browser "document.cookie" format, for example "a=1; b=2".
func ParseDocumentCookie(str string) (Static, error) {
	out := make(Static)
	str = strings.TrimSpace(str)
	if str == "" {
		return out, nil
	}
	cookies, err := http.ParseCookie(str)
	if err != nil {
		return nil, fmt.Errorf(`cannot parse cookies "%s": %w`, str, err)
	}
	for _, c := range cookies {
		out[c.Name] = c.Value
	}
	return out, nil
}

// JarReader reads cookies stored in the jar for the URL.
type JarReader struct {
	jar http.CookieJar
	url *url.URL
}

func NewJarReader(jar http.CookieJar, urlStr string) (JarReader, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return JarReader{}, fmt.Errorf(`url "%s" is not valid: %w`, urlStr, err)
	}
	return JarReader{jar: jar, url: u}, nil
}

// Cookie returns the first matching cookie in the jar order.
func (r JarReader) Cookie(_ context.Context, match func(name string) bool) (string, bool) {
	for _, c := range r.jar.Cookies(r.url) {
		if match(c.Name) {
			return c.Value, true
		}
	}
	return "", false
}

// NewJar creates a cookie jar with the public suffix list, so cookies cannot be set for a whole top level domain.
func NewJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}
