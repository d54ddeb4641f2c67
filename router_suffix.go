package lactoserv

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// suffixSeparators is the set of characters allowed to introduce a
// suffix pattern's literal tail.
const suffixSeparators = ".-_+"

// suffixPattern is one parsed entry of a SuffixRouter: either the
// fallthrough ("*") or a literal suffix string (e.g. ".beep-bop").
type suffixPattern struct {
	raw           string
	isFallthrough bool
	suffix        string
	application   string
}

func parseSuffixPattern(pattern, application string) (suffixPattern, error) {
	if !strings.HasPrefix(pattern, "*") {
		return suffixPattern{}, fmt.Errorf("lactoserv: suffix pattern %q must start with '*'", pattern)
	}

	rest := pattern[1:]
	if rest == "" {
		return suffixPattern{raw: pattern, isFallthrough: true, application: application}, nil
	}

	sep := rest[0]
	if !strings.ContainsRune(suffixSeparators, rune(sep)) {
		return suffixPattern{}, fmt.Errorf("lactoserv: suffix pattern %q has invalid separator %q", pattern, sep)
	}

	chars := rest[1:]
	if chars == "" {
		return suffixPattern{}, fmt.Errorf("lactoserv: suffix pattern %q has no characters after separator", pattern)
	}

	for _, token := range strings.Split(chars, ".") {
		if token == "" || !validSuffixToken(token) {
			return suffixPattern{}, fmt.Errorf("lactoserv: suffix pattern %q has invalid token %q", pattern, token)
		}
	}

	return suffixPattern{raw: pattern, suffix: rest, application: application}, nil
}

func validSuffixToken(token string) bool {
	for i := 0; i < len(token); i++ {
		b := token[i]
		isAlnum := (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
		if !isAlnum && b != '-' && b != '_' {
			return false
		}
	}
	return true
}

// SuffixRouter dispatches by matching the longest registered suffix
// pattern against the final path component of the dispatch's extra path.
type SuffixRouter struct {
	name            string
	apps            *ApplicationManager
	patterns        []suffixPattern
	fallthroughApp  string
	hasFallthrough  bool
	handleDirectory bool
}

// SuffixRoute is one suffix-pattern -> application binding.
type SuffixRoute struct {
	Pattern     string
	Application string
}

// NewSuffixRouter builds a SuffixRouter named name. handleDirectories
// when true, the suffix check applies to the
// component preceding a trailing empty component instead of the final
// component itself.
func NewSuffixRouter(name string, apps *ApplicationManager, routes []SuffixRoute, handleDirectories bool) (*SuffixRouter, error) {
	sr := &SuffixRouter{name: name, apps: apps, handleDirectory: handleDirectories}

	for _, r := range routes {
		if _, ok := apps.Get(r.Application); !ok {
			return nil, fmt.Errorf("lactoserv: suffix router %s: unknown application %q", name, r.Application)
		}

		p, err := parseSuffixPattern(r.Pattern, r.Application)
		if err != nil {
			return nil, err
		}

		if p.isFallthrough {
			if sr.hasFallthrough {
				return nil, fmt.Errorf("lactoserv: suffix router %s: duplicate fallthrough pattern", name)
			}
			sr.hasFallthrough = true
			sr.fallthroughApp = p.application
			continue
		}

		sr.patterns = append(sr.patterns, p)
	}

	return sr, nil
}

// Name returns the router's application name.
func (sr *SuffixRouter) Name() string { return sr.name }

// Handle matches the final (or, if configured, penultimate) extra path
// component against the registered suffix patterns, longest match
// wins, ties broken by pattern length then lexical order.
func (sr *SuffixRouter) Handle(ctx context.Context, req *Request, info DispatchInfo) (HandlerResult, error) {
	extra := info.Extra.Path()
	if len(extra) == 0 {
		return NotHandled, nil
	}

	component := extra[len(extra)-1]
	if sr.handleDirectory && component == "" && len(extra) >= 2 {
		component = extra[len(extra)-2]
	}

	var candidates []suffixPattern
	for _, p := range sr.patterns {
		if strings.HasSuffix(component, p.suffix) {
			candidates = append(candidates, p)
		}
	}

	appName := sr.fallthroughApp
	ok := sr.hasFallthrough

	if len(candidates) > 0 {
		sort.SliceStable(candidates, func(i, j int) bool {
			if len(candidates[i].suffix) != len(candidates[j].suffix) {
				return len(candidates[i].suffix) > len(candidates[j].suffix)
			}
			return candidates[i].raw < candidates[j].raw
		})
		appName = candidates[0].application
		ok = true
	}

	if !ok {
		return NotHandled, nil
	}

	app, found := sr.apps.Get(appName)
	if !found {
		return NotHandled, nil
	}

	return app.Handle(ctx, req, info)
}
