package desk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/regdesk-api/internal/models"
)

func TestMatchCollege(t *testing.T) {
	assert.True(t, MatchCollege("", "anything"))
	assert.True(t, MatchCollege("GEC", "GEC Kannur"))
	assert.True(t, MatchCollege("gec", "GEC Kannur"))
	assert.True(t, MatchCollege("GEC KANNUR", "GEC Kannur"))
	assert.True(t, MatchCollege("gec kn", "GEC Kannur"))
	assert.True(t, MatchCollege("nitc", "NIT Calicut"))
	assert.False(t, MatchCollege("xyz", "GEC Kannur"))
	assert.False(t, MatchCollege("Kannur GEC", "GEC Kannur"))
}

func TestFilterCollegesOrdersByID(t *testing.T) {
	colleges := []models.College{
		{ID: 1003, Name: "GEC Thrissur"},
		{ID: 1001, Name: "NIT Calicut"},
		{ID: 1002, Name: "GEC Kannur"},
	}

	got := FilterColleges(colleges, "GEC")
	assert.Equal(t, []models.College{{ID: 1002, Name: "GEC Kannur"}, {ID: 1003, Name: "GEC Thrissur"}}, got)

	all := FilterColleges(colleges, "")
	assert.Len(t, all, 3)
	assert.Equal(t, int64(1001), all[0].ID)

	assert.Empty(t, FilterColleges(colleges, "zzz"))
}
