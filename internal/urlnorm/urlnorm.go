// Package urlnorm приводит пользовательский ввод к абсолютному URL закладки.
package urlnorm

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalidURL возвращается, если строку не удалось разобрать как абсолютный URL.
var ErrInvalidURL = errors.New("invalid URL")

const defaultScheme = "https://"

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

var defaultPorts = map[string]string{"http": "80", "https": "443"}

// Normalize обрезает пробелы, добавляет https:// при отсутствии схемы
// и возвращает каноническую запись URL.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidURL
	}
	if !schemeRe.MatchString(trimmed) {
		trimmed = defaultScheme + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Host == "" || u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidURL, raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host, err := asciiHost(u.Hostname())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	port := u.Port()
	if port == defaultPorts[u.Scheme] {
		port = ""
	}
	switch {
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		u.Host = "[" + host + "]"
	default:
		u.Host = host
	}
	if u.Path == "" && u.RawPath == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// asciiHost переводит имя хоста в punycode. IP-адреса не меняются.
func asciiHost(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return strings.ToLower(host), nil
	}
	return idna.Lookup.ToASCII(host)
}
