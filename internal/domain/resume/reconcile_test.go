package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func id(v int64) *int64 { return &v }

func TestReconcile_EmptySubmissionWipesEverything(t *testing.T) {
	plan := Reconcile[Experience]([]int64{3, 1, 2}, nil)

	assert.Equal(t, []int64{1, 2, 3}, plan.Delete)
	assert.Empty(t, plan.Update)
	assert.Empty(t, plan.Insert)
}

func TestReconcile_PartialCollection(t *testing.T) {
	incoming := []Experience{
		{ID: id(5), CompanyName: "Acme (renamed)"},
		{CompanyName: "Globex"},
	}

	plan := Reconcile([]int64{5, 7}, incoming)

	assert.Equal(t, []int64{7}, plan.Delete)
	if assert.Len(t, plan.Update, 1) {
		assert.Equal(t, int64(5), *plan.Update[0].ID)
		assert.Equal(t, "Acme (renamed)", plan.Update[0].CompanyName)
	}
	if assert.Len(t, plan.Insert, 1) {
		assert.Nil(t, plan.Insert[0].ID)
		assert.Equal(t, "Globex", plan.Insert[0].CompanyName)
	}
}

func TestReconcile_UnknownIDIsInsertedNotUpdated(t *testing.T) {
	// 99 belongs to somebody else or no longer exists.
	plan := Reconcile([]int64{1}, []Skill{{ID: id(99), SkillName: "Go"}})

	assert.Equal(t, []int64{1}, plan.Delete)
	assert.Empty(t, plan.Update)
	assert.Len(t, plan.Insert, 1)
}

func TestReconcile_NothingStored(t *testing.T) {
	plan := Reconcile[Project](nil, []Project{{ProjectName: "careerfolio"}})

	assert.Empty(t, plan.Delete)
	assert.Len(t, plan.Insert, 1)
	assert.False(t, plan.Empty())
}

func TestReconcile_UnchangedCollection(t *testing.T) {
	plan := Reconcile([]int64{1, 2}, []Education{{ID: id(1)}, {ID: id(2)}})

	assert.Empty(t, plan.Delete)
	assert.Len(t, plan.Update, 2)
	assert.Empty(t, plan.Insert)
}

func TestSnapshot_Missing(t *testing.T) {
	full := Snapshot{
		Experiences: []Experience{},
		Educations:  []Education{},
		Projects:    []Project{},
		Skills:      []Skill{},
	}
	assert.Empty(t, full.Missing(), "empty collections count as submitted")

	partial := Snapshot{Profile: &ProfilePatch{}, Educations: []Education{}}
	assert.Equal(t, []Collection{Experiences, Projects, Skills}, partial.Missing())
}
