package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"folio/pkg/models"
)

func TestApplyVote_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		state     models.VoteState
		requested models.Vote
		want      models.VoteState
	}{
		{
			name:      "fresh downvote",
			state:     models.VoteState{Upvotes: 10, Downvotes: 2, ViewerVote: models.VoteNone, Score: 8},
			requested: models.VoteDown,
			want:      models.VoteState{Upvotes: 10, Downvotes: 3, ViewerVote: models.VoteDown, Score: 7},
		},
		{
			name:      "fresh upvote",
			state:     models.VoteState{Upvotes: 0, Downvotes: 0, ViewerVote: models.VoteNone},
			requested: models.VoteUp,
			want:      models.VoteState{Upvotes: 1, Downvotes: 0, ViewerVote: models.VoteUp, Score: 1},
		},
		{
			name:      "toggle off upvote",
			state:     models.VoteState{Upvotes: 5, Downvotes: 1, ViewerVote: models.VoteUp, Score: 4},
			requested: models.VoteUp,
			want:      models.VoteState{Upvotes: 4, Downvotes: 1, ViewerVote: models.VoteNone, Score: 3},
		},
		{
			name:      "switch up to down",
			state:     models.VoteState{Upvotes: 5, Downvotes: 1, ViewerVote: models.VoteUp, Score: 4},
			requested: models.VoteDown,
			want:      models.VoteState{Upvotes: 4, Downvotes: 2, ViewerVote: models.VoteDown, Score: 2},
		},
		{
			name:      "explicit clear of a downvote",
			state:     models.VoteState{Upvotes: 3, Downvotes: 4, ViewerVote: models.VoteDown, Score: -1},
			requested: models.VoteNone,
			want:      models.VoteState{Upvotes: 3, Downvotes: 3, ViewerVote: models.VoteNone, Score: 0},
		},
		{
			name:      "clear when nothing was cast",
			state:     models.VoteState{Upvotes: 2, Downvotes: 2, ViewerVote: models.VoteNone},
			requested: models.VoteNone,
			want:      models.VoteState{Upvotes: 2, Downvotes: 2, ViewerVote: models.VoteNone, Score: 0},
		},
		{
			name:      "empty request treated as clear",
			state:     models.VoteState{Upvotes: 7, Downvotes: 0, ViewerVote: models.VoteUp, Score: 7},
			requested: "",
			want:      models.VoteState{Upvotes: 6, Downvotes: 0, ViewerVote: models.VoteNone, Score: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyVote(tt.state, tt.requested))
		})
	}
}

func TestApplyVote_ToggleIsItsOwnInverse(t *testing.T) {
	start := models.VoteState{Upvotes: 12, Downvotes: 4, ViewerVote: models.VoteNone, Score: 8}

	once := ApplyVote(start, models.VoteUp)
	back := ApplyVote(once, models.VoteUp)

	assert.Equal(t, start, back)
}

func TestApplyVote_DoesNotMutateInput(t *testing.T) {
	state := models.VoteState{Upvotes: 1, Downvotes: 1, ViewerVote: models.VoteUp, Score: 0}

	ApplyVote(state, models.VoteDown)

	assert.Equal(t, models.VoteState{Upvotes: 1, Downvotes: 1, ViewerVote: models.VoteUp, Score: 0}, state)
}
