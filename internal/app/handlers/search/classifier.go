package search

import (
	"context"
	"regexp"
	"strings"
)

// QueryKind labels how a free-text search should be handled.
type QueryKind string

const (
	KindSimple  QueryKind = "simple"
	KindComplex QueryKind = "complex"
)

// Classifier decides whether a raw query needs structured interpretation.
// It is deliberately an interface so the heuristic can be swapped without
// touching call sites.
type Classifier interface {
	Classify(ctx context.Context, raw string) QueryKind
}

// HeuristicClassifier applies cheap regex heuristics: a query mentioning
// prices, seat counts, dates or multiple constraint words is complex,
// everything else is a plain make/model/city lookup.
type HeuristicClassifier struct{}

var (
	pricePattern      = regexp.MustCompile(`(?i)(under|below|above|over|between)?\s*[$€]\s*\d+|\d+\s*(eur|euro|usd|per\s+day)`)
	seatPattern       = regexp.MustCompile(`(?i)\b(\d+)\s*(seat|seats|seater|people|persons)\b`)
	datePattern       = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	constraintPattern = regexp.MustCompile(`(?i)\b(automatic|manual|electric|hybrid|diesel|petrol|near|cheap|luxury)\b`)
	priceCapPattern   = regexp.MustCompile(`(?i)(?:under|below|max|[$€])\s*[$€]?\s*(\d+)`)
)

func (HeuristicClassifier) Classify(ctx context.Context, raw string) QueryKind {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return KindSimple
	}
	hits := 0
	if pricePattern.MatchString(raw) {
		hits += 2
	}
	if seatPattern.MatchString(raw) {
		hits++
	}
	if datePattern.MatchString(raw) {
		hits++
	}
	hits += len(constraintPattern.FindAllString(raw, -1))
	if hits >= 2 || pricePattern.MatchString(raw) {
		return KindComplex
	}
	return KindSimple
}
