package parser

import (
	"regexp"

	"farerules/internal/domain"
)

var (
	reFromTo      = regexp.MustCompile(`\bFROM\s+([A-Z]{3})\b.{0,20}\bTO\s+([A-Z]{3})\b`)
	reOrigin      = regexp.MustCompile(`\bORIGIN\b[:\s]+([A-Z]{3})`)
	reDestination = regexp.MustCompile(`\bDEST(?:INATION)?\b[:\s]+([A-Z]{3})`)
	reCodePair    = regexp.MustCompile(`\b([A-Z]{3})\s*[-/ ]\s*([A-Z]{3})\b`)
	reFareCalc    = regexp.MustCompile(`FARE\s+CALCULATION.*?\n([^\n]{0,200})`)
	reFareCalcEnd = regexp.MustCompile(`(?m)^\s*:\s*([^\n]*END[^\n]*)$`)
	reLetterRun   = regexp.MustCompile(`[A-Z]+`)
)

// RouteMatcher is one route resolution strategy. It reports ok only when it
// produced a complete origin/destination pair.
type RouteMatcher func(t Text) (origin, dest string, ok bool)

type namedMatcher struct {
	name  string
	match RouteMatcher
}

func (p *Parser) defaultRouteMatchers() []namedMatcher {
	return []namedMatcher{
		{name: "directional", match: p.matchDirectional},
		{name: "labeled", match: p.matchLabeled},
		{name: "adjacent_pair", match: p.matchAdjacentPair},
		{name: "fare_calculation", match: p.matchFareCalculation},
	}
}

// ResolveRoute runs the route matchers in order and returns "ORIG-DEST" from
// the first one that succeeds, or domain.UnknownRoute.
func (p *Parser) ResolveRoute(t Text) string {
	route, _ := p.resolveRoute(t)
	return route
}

func (p *Parser) resolveRoute(t Text) (route, strategy string) {
	for _, m := range p.routeMatchers {
		if origin, dest, ok := m.match(t); ok {
			return origin + "-" + dest, m.name
		}
	}
	return domain.UnknownRoute, ""
}

func (p *Parser) bothLocations(a, b string) bool {
	return p.tables.IsLocation(a) && p.tables.IsLocation(b)
}

// matchDirectional handles "FROM POM ... TO LAE" with a short gap.
func (p *Parser) matchDirectional(t Text) (string, string, bool) {
	m := reFromTo.FindStringSubmatch(t.Upper)
	if m == nil || !p.bothLocations(m[1], m[2]) {
		return "", "", false
	}
	return m[1], m[2], true
}

// matchLabeled handles "ORIGIN: POM" together with "DEST: LAE".
func (p *Parser) matchLabeled(t Text) (string, string, bool) {
	o := reOrigin.FindStringSubmatch(t.Upper)
	d := reDestination.FindStringSubmatch(t.Upper)
	if o == nil || d == nil || !p.bothLocations(o[1], d[1]) {
		return "", "", false
	}
	return o[1], d[1], true
}

// matchAdjacentPair takes the first "POM-LAE", "POM/LAE" or "POM LAE" pair
// where neither side is a stopword and both are known locations.
func (p *Parser) matchAdjacentPair(t Text) (string, string, bool) {
	for _, m := range reCodePair.FindAllStringSubmatch(t.Upper, -1) {
		a, b := m[1], m[2]
		if p.tables.IsStopword(a) || p.tables.IsStopword(b) {
			continue
		}
		if p.bothLocations(a, b) {
			return a, b, true
		}
	}
	return "", "", false
}

// matchFareCalculation reads the fare calculation line, e.g.
// "MAG CG WWK238.00PGK238.00END", and takes the first two location tokens.
func (p *Parser) matchFareCalculation(t Text) (string, string, bool) {
	var line string
	if m := reFareCalc.FindStringSubmatch(t.Upper); m != nil {
		line = m[1]
	}
	if line == "" {
		if m := reFareCalcEnd.FindStringSubmatch(t.Upper); m != nil {
			line = m[1]
		}
	}
	if line == "" {
		return "", "", false
	}

	var found []string
	for _, tok := range reLetterRun.FindAllString(line, -1) {
		if len(tok) != 3 || !p.tables.IsLocation(tok) || p.tables.IsStopword(tok) || p.isCurrency(tok) {
			continue
		}
		found = append(found, tok)
		if len(found) == 2 {
			return found[0], found[1], true
		}
	}
	return "", "", false
}
