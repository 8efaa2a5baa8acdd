package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictCloneKeepsEmptyLists(t *testing.T) {
	c := Conflict{
		ID:                  "c1",
		Suggestions:         []Suggestion{{ID: "sug-1", Mutations: []Mutation{}}},
		ModificationHistory: []ModificationRecord{},
	}

	out := c.Clone()
	require.NotNil(t, out.ModificationHistory)
	require.NotNil(t, out.Suggestions[0].Mutations)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"modificationHistory":[]`)
	assert.Contains(t, string(raw), `"mutations":[]`)
}

func TestConflictCloneIsDeep(t *testing.T) {
	c := Conflict{
		Suggestions:         []Suggestion{{ID: "sug-1", Data: map[string]interface{}{"day": 1}, Mutations: []Mutation{{TargetID: "s1"}}}},
		ModificationHistory: []ModificationRecord{{ID: "m1"}},
		ExtractedInfo:       map[string]string{"teacherName": "Ada"},
	}

	out := c.Clone()
	out.Suggestions[0].Mutations[0].TargetID = "s2"
	out.Suggestions[0].Data["day"] = 2
	out.ModificationHistory[0].ID = "m2"
	out.ExtractedInfo["teacherName"] = "Bo"

	assert.Equal(t, "s1", c.Suggestions[0].Mutations[0].TargetID)
	assert.Equal(t, 1, c.Suggestions[0].Data["day"])
	assert.Equal(t, "m1", c.ModificationHistory[0].ID)
	assert.Equal(t, "Ada", c.ExtractedInfo["teacherName"])
}
