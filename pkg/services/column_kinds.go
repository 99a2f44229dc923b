// Package services implements the query planning and analytics pipeline.
package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/docquery-inc/docquery-engine/pkg/models"
)

// Shared pattern set for kind inference, temporal guardrails, and intent
// detection. Compiled once; all matchers are stateless.
var (
	quarterRe  = regexp.MustCompile(`(?i)\bq([1-4])\b`)
	yearRe     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	dateLikeRe = regexp.MustCompile(`^\s*\d{4}-\d{2}-\d{2}([ T]\d{2}:\d{2}:\d{2}(\.\d+)?)?\s*$`)
	numberRe   = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	nonDigitRe = regexp.MustCompile(`[^\d.\-]`)
	tokenRe    = regexp.MustCompile(`[^a-z0-9_]+`)
)

var temporalNameHints = []string{"date", "year", "month", "quarter", "week", "day"}

var monthAbbrevs = []string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// looksLikeNumber reports whether a sampled cell reads as a numeric value
// once thousands separators and stray symbols are stripped.
func looksLikeNumber(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	cleaned := nonDigitRe.ReplaceAllString(strings.ReplaceAll(s, ",", ""), "")
	return numberRe.MatchString(cleaned)
}

// looksLikeDate reports whether a sampled cell reads as an ISO date/datetime
// or mentions a month name.
func looksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if dateLikeRe.MatchString(s) {
		return true
	}
	low := strings.ToLower(s)
	for _, m := range monthAbbrevs {
		if strings.Contains(low, m) {
			return true
		}
	}
	return false
}

// normalizeTokens lowercases and splits a string into identifier-ish tokens
// for lexical overlap scoring.
func normalizeTokens(s string) []string {
	cleaned := strings.TrimSpace(tokenRe.ReplaceAllString(strings.ToLower(s), " "))
	if cleaned == "" {
		return nil
	}
	return strings.Fields(cleaned)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range normalizeTokens(s) {
		set[tok] = true
	}
	return set
}

// InferColumnKinds classifies each header from its name and up to 8 sampled
// values. Header-name signals win over value signals: a q1..q4 token tags the
// column as that fiscal quarter, and date/year/month/quarter/week/day tokens
// tag it temporal. Otherwise all-numeric samples make it a number, a majority
// of date-like samples (at least 2) make it temporal, and everything else is
// text. Kinds are recomputed per call and never persisted.
func InferColumnKinds(headers []string, samples []models.SampleRow) []models.ColumnSchema {
	columns := make([]models.ColumnSchema, len(headers))
	for i, h := range headers {
		var vals []string
		for _, row := range samples {
			if v := row[h]; v != "" {
				vals = append(vals, v)
			}
			if len(vals) == 8 {
				break
			}
		}
		columns[i] = models.ColumnSchema{ID: i, Name: h, Kind: inferKind(h, vals)}
	}
	return columns
}

func inferKind(header string, vals []string) models.ColumnKind {
	name := strings.ToLower(header)

	if m := quarterRe.FindStringSubmatch(name); m != nil {
		q, _ := strconv.Atoi(m[1])
		return models.PeriodKind(q)
	}
	for _, hint := range temporalNameHints {
		if strings.Contains(name, hint) {
			return models.KindTemporal
		}
	}

	if len(vals) > 0 {
		allNumbers := true
		dateLike := 0
		for _, v := range vals {
			if !looksLikeNumber(v) {
				allNumbers = false
			}
			if looksLikeDate(v) {
				dateLike++
			}
		}
		if allNumbers {
			return models.KindNumber
		}
		threshold := len(vals) / 2
		if threshold < 2 {
			threshold = 2
		}
		if dateLike >= threshold {
			return models.KindTemporal
		}
	}
	return models.KindText
}
