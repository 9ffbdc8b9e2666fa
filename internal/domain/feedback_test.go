package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelwise/labelwise-api/internal/domain"
)

func TestNewClientFeedback(t *testing.T) {
	t.Parallel()

	t.Run("valid approval", func(t *testing.T) {
		t.Parallel()

		feedback, err := domain.NewClientFeedback(1, 9, domain.FeedbackActionApprove,
			"looks good", "Globex", "ops@globex.example")

		require.NoError(t, err)
		assert.Equal(t, int64(1), feedback.ProjectID)
		assert.Equal(t, int64(9), feedback.TaskID)
		assert.Equal(t, domain.FeedbackActionApprove, feedback.Action)
		assert.False(t, feedback.CreatedAt.IsZero())
	})

	t.Run("unknown action", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewClientFeedback(1, 9, "escalate", "", "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidFeedbackAction)
	})
}

func TestFeedbackActionTargetStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.TaskStatusClientApproved, domain.FeedbackActionApprove.TargetStatus())
	assert.Equal(t, domain.TaskStatusClientRejected, domain.FeedbackActionReject.TargetStatus())
}
