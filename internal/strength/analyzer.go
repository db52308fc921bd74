// Package strength scores passwords with a fixed-weight heuristic and
// proposes stronger variants of weak ones.
package strength

import (
	"strings"
	"unicode"

	"github.com/nbutton23/zxcvbn-go"
)

// PolicyVersion identifies the rule table below. Bump it whenever a weight,
// threshold or rule changes, since stored ratings depend on it.
const PolicyVersion = 1

const (
	MaxScore = 10

	strongThreshold = 8
	mediumThreshold = 5

	uniquenessRatio = 0.7
	maxRun          = 3

	// zxcvbn slows down sharply on long inputs.
	maxEstimateLen = 50
)

const symbolSet = "!@#$%^&*()_+-=[]{}|;:,.<>?"

var weakSubstrings = []string{"123", "abc", "qwe", "password", "admin"}

// Rating is the qualitative bucket for a score.
type Rating string

const (
	Weak   Rating = "weak"
	Medium Rating = "medium"
	Strong Rating = "strong"
)

// RatingFor maps a score onto the rating thresholds.
func RatingFor(score int) Rating {
	switch {
	case score >= strongThreshold:
		return Strong
	case score >= mediumThreshold:
		return Medium
	default:
		return Weak
	}
}

// Report is the result of Analyze. Entropy and CrackTime are informational
// and never feed into Score or Rating.
type Report struct {
	Score         int      `json:"score"`
	MaxScore      int      `json:"max_score"`
	Rating        Rating   `json:"rating"`
	Suggestions   []string `json:"suggestions"`
	PolicyVersion int      `json:"policy_version"`
	Entropy       float64  `json:"entropy_bits"`
	CrackTime     string   `json:"crack_time,omitempty"`
}

type profile struct {
	runes    []rune
	hasLower bool
	hasUpper bool
	hasDigit bool
	hasSym   bool
	distinct int
	common   bool
}

type rule struct {
	points     func(p *profile) int
	suggestion string
}

// rules are evaluated in order; suggestion order follows this table.
var rules = []rule{
	{
		points: func(p *profile) int {
			switch n := len(p.runes); {
			case n >= 12:
				return 2
			case n >= 8:
				return 1
			}
			return 0
		},
		suggestion: "Use at least 8 characters (12+ recommended)",
	},
	{
		points:     func(p *profile) int { return award(p.hasLower, 1) },
		suggestion: "Include lowercase letters (a-z)",
	},
	{
		points:     func(p *profile) int { return award(p.hasUpper, 1) },
		suggestion: "Include uppercase letters (A-Z)",
	},
	{
		points:     func(p *profile) int { return award(p.hasDigit, 1) },
		suggestion: "Include numbers (0-9)",
	},
	{
		points:     func(p *profile) int { return award(p.hasSym, 2) },
		suggestion: "Include special characters (!@#$%^&*)",
	},
	{
		points: func(p *profile) int {
			n := len(p.runes)
			return award(n > 0 && float64(p.distinct) >= float64(n)*uniquenessRatio, 1)
		},
		suggestion: "Avoid repeating characters",
	},
	{
		points:     func(p *profile) int { return award(len(p.runes) > 0 && !p.common, 1) },
		suggestion: `Avoid common patterns like "123", "abc", or repeated characters`,
	},
}

// Analyze scores password against the rule table. It is total over all
// strings; the empty string fails every rule.
func Analyze(password string) Report {
	p := newProfile(password)

	score := 0
	suggestions := make([]string, 0, len(rules))
	for _, r := range rules {
		pts := r.points(p)
		if pts == 0 {
			suggestions = append(suggestions, r.suggestion)
			continue
		}
		score += pts
	}
	score = min(score, MaxScore)

	report := Report{
		Score:         score,
		MaxScore:      MaxScore,
		Rating:        RatingFor(score),
		Suggestions:   suggestions,
		PolicyVersion: PolicyVersion,
	}

	if len(p.runes) > 0 {
		sample := p.runes
		if len(sample) > maxEstimateLen {
			sample = sample[:maxEstimateLen]
		}
		est := zxcvbn.PasswordStrength(string(sample), nil)
		report.Entropy = est.Entropy
		report.CrackTime = est.CrackTimeDisplay
	}

	return report
}

func newProfile(password string) *profile {
	p := &profile{runes: []rune(password)}

	seen := make(map[rune]struct{}, len(p.runes))
	for _, r := range p.runes {
		switch {
		case r >= 'a' && r <= 'z':
			p.hasLower = true
		case r >= 'A' && r <= 'Z':
			p.hasUpper = true
		case r >= '0' && r <= '9':
			p.hasDigit = true
		case strings.ContainsRune(symbolSet, r):
			p.hasSym = true
		}
		seen[r] = struct{}{}
	}
	p.distinct = len(seen)
	p.common = hasCommonPattern(p.runes)

	return p
}

func hasCommonPattern(runes []rune) bool {
	lower := strings.ToLower(string(runes))
	for _, s := range weakSubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}

	run := 1
	for i := 1; i < len(runes); i++ {
		if unicode.ToLower(runes[i]) == unicode.ToLower(runes[i-1]) {
			run++
			if run >= maxRun {
				return true
			}
			continue
		}
		run = 1
	}
	return false
}

func award(ok bool, pts int) int {
	if ok {
		return pts
	}
	return 0
}
