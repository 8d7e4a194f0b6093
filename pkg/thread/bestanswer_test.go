package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/pkg/models"
)

func bestAnswerFixture() (models.Post, []models.Reply) {
	prev := "r5"
	post := models.Post{ID: "post-1", UserID: 42, BestAnswerID: &prev}
	replies := []models.Reply{
		reply("r1", "", 0, 0, 0),
		reply("r2", "r1", 1, 0, 0),
		reply("r5", "", 2, 0, 0),
	}
	replies[2].IsBestAnswer = true
	return post, replies
}

func countFlags(replies []models.Reply) int {
	n := 0
	for _, r := range replies {
		if r.IsBestAnswer {
			n++
		}
	}
	return n
}

func TestSetBestAnswer_MovesFlag(t *testing.T) {
	post, replies := bestAnswerFixture()

	newPost, out, err := SetBestAnswer(post, replies, "r2", 42)

	require.NoError(t, err)
	require.NotNil(t, newPost.BestAnswerID)
	assert.Equal(t, "r2", *newPost.BestAnswerID)
	assert.True(t, out[1].IsBestAnswer)
	assert.False(t, out[2].IsBestAnswer)
	assert.Equal(t, 1, countFlags(out))
}

func TestSetBestAnswer_HealsDuplicateFlags(t *testing.T) {
	post, replies := bestAnswerFixture()
	replies[0].IsBestAnswer = true // stale inconsistent state

	_, out, err := SetBestAnswer(post, replies, "r2", 42)

	require.NoError(t, err)
	assert.Equal(t, 1, countFlags(out))
	assert.True(t, out[1].IsBestAnswer)
}

func TestSetBestAnswer_Idempotent(t *testing.T) {
	post, replies := bestAnswerFixture()

	p1, r1, err := SetBestAnswer(post, replies, "r2", 42)
	require.NoError(t, err)
	p2, r2, err := SetBestAnswer(p1, r1, "r2", 42)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, r1, r2)
}

func TestSetBestAnswer_DeniedForNonAuthor(t *testing.T) {
	post, replies := bestAnswerFixture()

	newPost, out, err := SetBestAnswer(post, replies, "r2", 7)

	assert.ErrorIs(t, err, ErrPermissionDenied)
	// Nothing changed.
	assert.Equal(t, post, newPost)
	assert.Equal(t, replies, out)
	assert.True(t, out[2].IsBestAnswer)
}

func TestSetBestAnswer_DoesNotMutateInput(t *testing.T) {
	post, replies := bestAnswerFixture()

	_, _, err := SetBestAnswer(post, replies, "r2", 42)

	require.NoError(t, err)
	assert.True(t, replies[2].IsBestAnswer)
	assert.False(t, replies[1].IsBestAnswer)
	assert.Equal(t, "r5", *post.BestAnswerID)
}
