package invoke

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindSuggestion_CloseMatchAutoCorrects(t *testing.T) {
	s := FindSuggestion("list_isues", []string{"list_issues", "create_issue", "list_teams"})
	assert.Equal(t, "list_issues", s.Name)
	assert.True(t, s.AutoCorrect)
}

func TestFindSuggestion_ShortNameNeedsTighterDistance(t *testing.T) {
	// "get" -> "set" is distance 1 on a 3-char name: still within the <=1
	// short-name threshold.
	s := FindSuggestion("get", []string{"set", "delete", "fetch"})
	assert.Equal(t, "set", s.Name)
	assert.True(t, s.AutoCorrect)

	// "gwt" -> "fetch" is distance 4, beyond even the suggestion threshold
	// of 3, so nothing matches.
	s2 := FindSuggestion("gwt", []string{"fetch"})
	assert.Empty(t, s2.Name)
}

func TestFindSuggestion_FarMatchSuggestsWithoutAutoCorrect(t *testing.T) {
	// "lstissuesxy" -> "listissues" is distance 3: past the auto-correct
	// threshold of 2 for an 11-char name, within the suggestion threshold.
	s := FindSuggestion("lst_issues_xy", []string{"list_issues"})
	assert.Equal(t, "list_issues", s.Name)
	assert.False(t, s.AutoCorrect)
}

func TestFindSuggestion_AmbiguousTieYieldsNoSuggestion(t *testing.T) {
	s := FindSuggestion("list_isue", []string{"list_issue", "list_isme"})
	assert.Empty(t, s.Name, "two equally-close candidates must not auto-guess")
}

func TestFindSuggestion_NoCandidatesIsEmpty(t *testing.T) {
	s := FindSuggestion("anything", nil)
	assert.Empty(t, s.Name)
}
