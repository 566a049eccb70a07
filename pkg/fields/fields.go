// Package fields cleans and classifies raw form input before it reaches the models.
package fields

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// DateLayout is the date format accepted from forms.
const DateLayout = "02/01/2006"

// ErrInvalidDate is returned by CleanDate for input that is not a calendar date.
var ErrInvalidDate = errors.New("fields: invalid date")

var (
	strictPolicy *bluemonday.Policy
	ugcPolicy    *bluemonday.Policy
	validate     *validator.Validate
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		ugcPolicy = bluemonday.UGCPolicy()
		ugcPolicy.RequireNoFollowOnLinks(true)

		validate = validator.New()
	})
}

// CleanString trims the value and strips every HTML tag.
func CleanString(s string) string {
	initPolicies()
	return strings.TrimSpace(strictPolicy.Sanitize(strings.TrimSpace(s)))
}

// SanitizeHTML keeps user-content formatting (paragraphs, links, lists, code)
// and drops scripts, event handlers and unsafe URLs. Used on rendered markdown.
func SanitizeHTML(s string) string {
	initPolicies()
	return ugcPolicy.Sanitize(s)
}

// NotEmpty reports whether the value has any non-blank content.
func NotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

func IsEmail(s string) bool {
	initPolicies()
	return s != "" && validate.Var(s, "email") == nil
}

func IsURL(s string) bool {
	initPolicies()
	return s != "" && validate.Var(s, "url") == nil
}

func IsInt(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

// CleanInt parses a base-10 integer. Anything unparsable is 0.
func CleanInt(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

// IsBool reports whether the value is one of the accepted boolean words
// (1/0, true/false, on/off, yes/no).
func IsBool(s string) bool {
	_, ok := parseBool(s)
	return ok
}

// CleanBool is true for 1, true, on and yes; false for everything else.
func CleanBool(s string) bool {
	b, _ := parseBool(s)
	return b
}

func parseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true, true
	case "0", "false", "off", "no":
		return false, true
	default:
		return false, false
	}
}

// IsDate reports whether the value is a real DD/MM/YYYY calendar date.
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(s))
	return err == nil
}

// CleanDate converts DD/MM/YYYY (or an already clean YYYY-MM-DD) to YYYY-MM-DD.
func CleanDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), nil
		}
	}
	return "", errors.Wrapf(ErrInvalidDate, "%q", s)
}

// Process cleans every form field, typing each by the first matching rule:
// email (string), integer (int64), date (YYYY-MM-DD string), URL (string),
// boolean word (bool), otherwise a cleaned string. Only the first value of a
// repeated key is kept.
func Process(form url.Values) map[string]any {
	out := make(map[string]any, len(form))
	for key, values := range form {
		if len(values) == 0 {
			continue
		}
		out[key] = classify(values[0])
	}
	return out
}

func classify(raw string) any {
	v := strings.TrimSpace(raw)
	switch {
	case IsEmail(v):
		return v
	case IsInt(v):
		return CleanInt(v)
	case IsDate(v):
		d, _ := CleanDate(v)
		return d
	case IsURL(v):
		return v
	case IsBool(v):
		return CleanBool(v)
	default:
		return CleanString(v)
	}
}
