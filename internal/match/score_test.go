package match_test

import (
	"testing"

	"github.com/DhawalShankar/vartalang-sub001/internal/db"
	"github.com/DhawalShankar/vartalang-sub001/internal/match"

	"github.com/stretchr/testify/assert"
)

func learnerProfile() match.Profile {
	return match.Profile{
		ID:             1,
		Role:           db.RoleLearner,
		Region:         "Maharashtra",
		LearnPrimary:   "Hindi",
		LearnSecondary: "English",
		Known:          []string{"English"},
		Interests:      []string{"Movies"},
	}
}

func teacherProfile() match.Profile {
	return match.Profile{
		ID:           2,
		Role:         db.RoleTeacher,
		Region:       "Maharashtra",
		LearnPrimary: "English",
		Known:        []string{"Hindi"},
		Interests:    []string{"Movies", "Hiking"},
	}
}

// TestScoreReferencePair walks the documented example: Hindi match (+50),
// mutual English exchange (+30), learner/teacher (+20), same region (+10),
// one shared interest (+5) = 115.
func TestScoreReferencePair(t *testing.T) {
	total, b := match.Score(learnerProfile(), teacherProfile())

	assert.Equal(t, match.WeightLanguageMatch, b.LanguageMatch)
	assert.Equal(t, match.WeightMutualExchange, b.MutualExchange)
	assert.Equal(t, match.WeightRoleComplement, b.RoleComplement)
	assert.Equal(t, match.WeightSameRegion, b.SameRegion)
	assert.Equal(t, 5, b.SharedInterests)
	assert.Equal(t, 115, total)
}

func TestScoreDeterministic(t *testing.T) {
	req, cand := learnerProfile(), teacherProfile()

	firstTotal, firstBreakdown := match.Score(req, cand)
	for i := 0; i < 10; i++ {
		total, breakdown := match.Score(req, cand)
		assert.Equal(t, firstTotal, total)
		assert.Equal(t, firstBreakdown, breakdown)
	}
}

func TestScoreBounds(t *testing.T) {
	empty := match.Profile{}
	total, _ := match.Score(empty, empty)
	assert.Equal(t, 0, total, "two empty profiles share nothing")

	// maximal overlap including more shared interests than the cap covers
	a := match.Profile{
		Role:         db.RoleLearner,
		Region:       "Lisbon",
		LearnPrimary: "Portuguese",
		Known:        []string{"German"},
		Interests:    []string{"a", "b", "c", "d", "e", "f"},
	}
	b := match.Profile{
		Role:         db.RoleTeacher,
		Region:       "Lisbon",
		LearnPrimary: "German",
		Known:        []string{"Portuguese"},
		Interests:    []string{"a", "b", "c", "d", "e", "f"},
	}
	total, breakdown := match.Score(a, b)
	assert.Equal(t, match.InterestCap, breakdown.SharedInterests)
	assert.Equal(t, match.MaxScore, total)
	assert.Equal(t, 130, match.MaxScore)
}

// TestScoreMissingRegionDegrades: a malformed profile loses the affected
// component instead of failing the call.
func TestScoreMissingRegionDegrades(t *testing.T) {
	req := learnerProfile()
	cand := teacherProfile()
	req.Region = ""
	cand.Region = ""

	total, b := match.Score(req, cand)
	assert.Equal(t, 0, b.SameRegion, "two empty regions must not count as a match")
	assert.Equal(t, 105, total)
}

func TestScoreSameRoleNoComplement(t *testing.T) {
	req := learnerProfile()
	cand := teacherProfile()
	cand.Role = db.RoleLearner

	_, b := match.Score(req, cand)
	assert.Equal(t, 0, b.RoleComplement)
}

func TestScoreLanguageNamesIgnoreCase(t *testing.T) {
	req := learnerProfile()
	req.LearnPrimary = "hindi"
	cand := teacherProfile()
	cand.Known = []string{"HINDI"}

	_, b := match.Score(req, cand)
	assert.Equal(t, match.WeightLanguageMatch, b.LanguageMatch)
}

func TestScoreDuplicateInterestsCountOnce(t *testing.T) {
	req := learnerProfile()
	req.Interests = []string{"Movies", "Movies", "movies"}
	cand := teacherProfile()

	_, b := match.Score(req, cand)
	assert.Equal(t, 5, b.SharedInterests)
}

func TestProfileFromUserFlattensFluency(t *testing.T) {
	u := &db.User{
		ID:   7,
		Role: db.RoleTeacher,
		KnownLanguages: []db.KnownLanguage{
			{Language: "Hindi", Fluency: db.FluencyAdvanced},
			{Language: "Marathi", Fluency: db.FluencyNative},
		},
	}
	p := match.ProfileFromUser(u)
	assert.Equal(t, []string{"Hindi", "Marathi"}, p.Known)
	assert.Equal(t, uint64(7), p.ID)
}
