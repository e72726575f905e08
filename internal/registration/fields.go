package registration

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"golang.org/x/text/language"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z0-9-]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)
	idnaProfile  = idna.Lookup
)

const (
	reasonNotString = "must be a string"
	reasonNotList   = "must be a list of strings"

	// maxEmailLength follows RFC 5321.
	maxEmailLength = 254
	// maxPasswordBytes is the longest input bcrypt accepts.
	maxPasswordBytes = 72
)

// isAbsent treats null and whitespace-only strings as a missing value.
func isAbsent(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func parseText(raw any) (any, string) {
	s, ok := raw.(string)
	if !ok {
		return nil, reasonNotString
	}
	return strings.TrimSpace(s), ""
}

// parseTextMax is parseText with a limit in characters on the trimmed value.
func parseTextMax(n int) func(raw any) (any, string) {
	reason := fmt.Sprintf("must be at most %d characters", n)
	return func(raw any) (any, string) {
		value, bad := parseText(raw)
		if bad != "" {
			return nil, bad
		}
		if utf8.RuneCountInString(value.(string)) > n {
			return nil, reason
		}
		return value, ""
	}
}

func parsePassword(raw any) (any, string) {
	value, bad := parseText(raw)
	if bad != "" {
		return nil, bad
	}
	if len(value.(string)) > maxPasswordBytes {
		return nil, fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)
	}
	return value, ""
}

func parseEmail(raw any) (any, string) {
	s, ok := raw.(string)
	if !ok {
		return nil, reasonNotString
	}
	email := strings.ToLower(strings.TrimSpace(s))
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" || !isDomainValid(domain) {
		return nil, "enter a valid email address"
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return nil, "enter a valid email address"
	}
	email = local + "@" + asciiDomain
	if len(email) > maxEmailLength {
		return nil, fmt.Sprintf("must be at most %d characters", maxEmailLength)
	}
	if !emailPattern.MatchString(email) {
		return nil, "enter a valid email address"
	}
	return email, ""
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

func parsePhone(raw any) (any, string) {
	s, ok := raw.(string)
	if !ok {
		return nil, reasonNotString
	}
	compact := compactPhone(s)
	if !phonePattern.MatchString(compact) {
		return nil, "must be a phone number of 9 to 15 digits, optionally prefixed with +"
	}
	return compact, ""
}

// compactPhone drops the separators people commonly type inside numbers.
func compactPhone(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}

func parseLanguage(raw any) (any, string) {
	s, ok := raw.(string)
	if !ok {
		return nil, reasonNotString
	}
	code := strings.ToLower(strings.TrimSpace(s))
	if len(code) != 2 {
		return nil, "must be a two-letter ISO 639-1 language code"
	}
	base, err := language.ParseBase(code)
	if err != nil {
		return nil, fmt.Sprintf("unknown language code %q", code)
	}
	return base.String(), ""
}

func parseEnum(options ...string) func(raw any) (any, string) {
	allowed := make(map[string]struct{}, len(options))
	for _, opt := range options {
		allowed[opt] = struct{}{}
	}
	reason := "must be one of: " + strings.Join(options, ", ")
	return func(raw any) (any, string) {
		s, ok := raw.(string)
		if !ok {
			return nil, reasonNotString
		}
		value := strings.ToLower(strings.TrimSpace(s))
		if _, ok := allowed[value]; !ok {
			return nil, reason
		}
		return value, ""
	}
}

// parseStringList accepts at most maxItems non-blank strings of up to
// maxLen characters each.
func parseStringList(maxItems, maxLen int) func(raw any) (any, string) {
	return func(raw any) (any, string) {
		var items []string
		switch v := raw.(type) {
		case []string:
			items = v
		case []any:
			items = make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, reasonNotList
				}
				items = append(items, s)
			}
		default:
			return nil, reasonNotList
		}
		if len(items) > maxItems {
			return nil, fmt.Sprintf("must have at most %d items", maxItems)
		}
		return trimItems(items, maxLen)
	}
}

func trimItems(items []string, maxLen int) (any, string) {
	out := make([]string, 0, len(items))
	for i, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Sprintf("item %d must not be blank", i)
		}
		if utf8.RuneCountInString(item) > maxLen {
			return nil, fmt.Sprintf("item %d must be at most %d characters", i, maxLen)
		}
		out = append(out, item)
	}
	return out, ""
}
