package match

import (
	"strings"

	"github.com/DhawalShankar/vartalang-sub001/internal/db"
)

// Scoring weights. Fixed constants of the design, not configurable at call
// time; the total is the raw unweighted sum, so MaxScore is 130 rather
// than 100.
const (
	WeightLanguageMatch  = 50 // requester's learn-set intersects candidate's known set
	WeightMutualExchange = 30 // candidate's learn-set intersects requester's known set
	WeightRoleComplement = 20 // exactly one learner and one teacher
	WeightSameRegion     = 10 // exact region string match
	WeightPerInterest    = 5  // per shared interest
	InterestCap          = 20 // shared-interest component cap

	MaxScore = WeightLanguageMatch + WeightMutualExchange + WeightRoleComplement +
		WeightSameRegion + InterestCap
)

// Profile is the immutable snapshot the scorer operates on. Known holds
// language names only: fluency is ignored for compatibility scoring.
type Profile struct {
	ID             uint64
	Role           string
	Region         string
	LearnPrimary   string
	LearnSecondary string
	Known          []string
	Interests      []string
}

// Breakdown explains a score, one field per component. Re-displayed to
// users as "why you matched", so field names are part of the API.
type Breakdown struct {
	LanguageMatch   int `json:"languageMatch"`
	MutualExchange  int `json:"mutualExchange"`
	RoleComplement  int `json:"roleComplement"`
	SameRegion      int `json:"sameRegion"`
	SharedInterests int `json:"sharedInterests"`
}

// ProfileFromUser builds a scoring snapshot from a stored user.
func ProfileFromUser(u *db.User) Profile {
	known := make([]string, 0, len(u.KnownLanguages))
	for _, kl := range u.KnownLanguages {
		known = append(known, kl.Language)
	}
	return Profile{
		ID:             u.ID,
		Role:           u.Role,
		Region:         u.Region,
		LearnPrimary:   u.LearnPrimary,
		LearnSecondary: u.LearnSecondary,
		Known:          known,
		Interests:      u.Interests,
	}
}

// Score computes the affinity between a requesting profile and a candidate.
// Deterministic and side-effect free: identical inputs always yield the
// identical total and breakdown. A malformed profile (missing region, empty
// language sets) degrades the affected component to zero rather than
// failing; there are no error conditions.
func Score(requester, candidate Profile) (int, Breakdown) {
	var b Breakdown

	if intersects(learnSet(requester), languageSet(candidate.Known)) {
		b.LanguageMatch = WeightLanguageMatch
	}
	if intersects(learnSet(candidate), languageSet(requester.Known)) {
		b.MutualExchange = WeightMutualExchange
	}
	if complementaryRoles(requester.Role, candidate.Role) {
		b.RoleComplement = WeightRoleComplement
	}
	if requester.Region != "" && requester.Region == candidate.Region {
		b.SameRegion = WeightSameRegion
	}

	shared := intersectionSize(candidate.Interests, requester.Interests)
	b.SharedInterests = shared * WeightPerInterest
	if b.SharedInterests > InterestCap {
		b.SharedInterests = InterestCap
	}

	total := b.LanguageMatch + b.MutualExchange + b.RoleComplement +
		b.SameRegion + b.SharedInterests
	return total, b
}

// learnSet collects a profile's learn languages (primary plus optional
// secondary), normalized.
func learnSet(p Profile) map[string]struct{} {
	set := make(map[string]struct{}, 2)
	for _, lang := range []string{p.LearnPrimary, p.LearnSecondary} {
		if k := normalize(lang); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

func languageSet(langs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(langs))
	for _, lang := range langs {
		if k := normalize(lang); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

func intersects(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

func intersectionSize(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		if k := normalize(s); k != "" {
			set[k] = struct{}{}
		}
	}
	n := 0
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		k := normalize(s)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := set[k]; ok {
			n++
		}
	}
	return n
}

func complementaryRoles(a, b string) bool {
	return (a == db.RoleLearner && b == db.RoleTeacher) ||
		(a == db.RoleTeacher && b == db.RoleLearner)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
