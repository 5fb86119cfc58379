package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	domainconfig "github.com/felixgeelhaar/sgr-go/domain/config"
)

var (
	// ${VAR}, ${VAR:-default}, ${VAR:?message}
	bracketPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*|:\?[^}]*)?\}`)

	// $VAR
	simplePattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// Expander expands environment references in configuration text.
// Supported patterns:
//   - ${VAR} - expands to the value of VAR
//   - ${VAR:-default} - expands to VAR or "default" if unset or empty
//   - ${VAR:?message} - fails if VAR is unset or empty
//   - $VAR - simple expansion
type Expander struct {
	// Lookup resolves a variable (default: os.LookupEnv).
	Lookup func(string) (string, bool)
	// Strict fails on any unset variable, not only ${VAR:?} references.
	Strict bool
}

// NewExpander creates an expander reading the process environment.
func NewExpander(strict bool) *Expander {
	return &Expander{Lookup: os.LookupEnv, Strict: strict}
}

// Expand expands every reference in input. Missing required variables are
// reported together in one ErrMissingEnvVar error.
func (e *Expander) Expand(input string) (string, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var missing []string

	result := bracketPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := bracketPattern.FindStringSubmatch(match)
		name, modifier := sub[1], sub[2]
		value, exists := lookup(name)

		switch {
		case strings.HasPrefix(modifier, ":-"):
			if !exists || value == "" {
				return modifier[2:]
			}
		case strings.HasPrefix(modifier, ":?"):
			if !exists || value == "" {
				missing = append(missing, fmt.Sprintf("%s: %s", name, modifier[2:]))
				return match
			}
		case !exists:
			if e.Strict {
				missing = append(missing, name)
			}
			return ""
		}
		return value
	})

	result = simplePattern.ReplaceAllStringFunc(result, func(match string) string {
		name := match[1:]
		value, exists := lookup(name)
		if !exists {
			if e.Strict {
				missing = append(missing, name)
			}
			return ""
		}
		return value
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", domainconfig.ErrMissingEnvVar, strings.Join(missing, ", "))
	}
	return result, nil
}

// ExpandEnv expands references against the process environment, leaving
// unset variables empty.
func ExpandEnv(input string) string {
	result, err := NewExpander(false).Expand(input)
	if err != nil {
		return input
	}
	return result
}

// ExpandEnvStrict expands references and returns an error for missing variables.
func ExpandEnvStrict(input string) (string, error) {
	return NewExpander(true).Expand(input)
}
