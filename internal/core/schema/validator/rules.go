package validator

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/chorm-dev/chorm/internal/core/schema/domain"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidPattern  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)
)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsUUID reports whether s is a v1-v5 UUID.
func IsUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// IsIPv4 reports whether s is a dotted-quad IPv4 address. Each octet is
// range-checked by the parser.
func IsIPv4(s string) bool {
	if strings.Count(s, ".") != 3 {
		return false
	}
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}

// IsIPv6 reports whether s is a canonical or compressed IPv6 address.
func IsIPv6(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && strings.Contains(s, ":")
}

// IsURL reports whether s parses as an absolute URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Rule is one predicate+message pair for ad hoc value validation.
type Rule struct {
	Check   func(value interface{}) bool
	Message string
}

// NewRule composes a rule from a predicate and a failure message.
func NewRule(check func(value interface{}) bool, message string) Rule {
	return Rule{Check: check, Message: message}
}

// ApplyRules applies rules in order against a value, short-circuiting on
// the first failure with the field name attached.
func ApplyRules(field string, value interface{}, rules ...Rule) error {
	for _, rule := range rules {
		if !rule.Check(value) {
			return &domain.ValidationError{Field: field, Message: rule.Message}
		}
	}
	return nil
}
