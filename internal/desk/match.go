package desk

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/noah-isme/regdesk-api/internal/models"
)

// MatchCollege reports whether the characters of filter appear in name in order,
// ignoring case. Every prefix of name matches.
func MatchCollege(filter, name string) bool {
	if filter == "" {
		return true
	}
	return fuzzy.MatchFold(filter, name)
}

// FilterColleges keeps the colleges matching filter, ordered by id.
func FilterColleges(colleges []models.College, filter string) []models.College {
	result := make([]models.College, 0, len(colleges))
	for _, c := range colleges {
		if MatchCollege(filter, c.Name) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
