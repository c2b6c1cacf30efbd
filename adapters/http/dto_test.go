package http

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/careerfolio/internal/domain/resume"
)

func TestBulkUpdateRequest_ToSnapshot(t *testing.T) {
	t.Run("omitted collections stay nil", func(t *testing.T) {
		var req BulkUpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"profile":{"nickname":"neo"},"skills":[{"skill_name":"Go"}]}`), &req))

		snap := req.ToSnapshot()
		assert.Equal(t, []resume.Collection{resume.Experiences, resume.Educations, resume.Projects}, snap.Missing())
		require.Len(t, snap.Skills, 1)
		assert.Equal(t, "Go", snap.Skills[0].SkillName)
	})

	t.Run("explicit empty arrays are submitted", func(t *testing.T) {
		var req BulkUpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"experiences":[],"educations":[],"projects":[],"skills":[]}`), &req))

		snap := req.ToSnapshot()
		assert.Empty(t, snap.Missing())
		assert.NotNil(t, snap.Experiences)
		assert.Empty(t, snap.Experiences)
		assert.Nil(t, snap.Profile)
	})
}
