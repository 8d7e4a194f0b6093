package thread

import (
	"errors"

	"folio/pkg/models"
)

// ErrPermissionDenied is returned when someone other than the post author
// tries to change the best answer.
var ErrPermissionDenied = errors.New("only the post author can mark a best answer")

// SetBestAnswer marks targetReplyID as the post's canonical answer and
// returns the patched post plus a new reply slice. The flag is re-derived
// across the whole collection, not just toggled on the previous holder, so
// any stale duplicate flags are healed on the way. Idempotent.
func SetBestAnswer(post models.Post, replies []models.Reply, targetReplyID string, actorID int) (models.Post, []models.Reply, error) {
	if actorID != post.UserID {
		return post, replies, ErrPermissionDenied
	}

	patched := post
	id := targetReplyID
	patched.BestAnswerID = &id

	out := make([]models.Reply, len(replies))
	for i, r := range replies {
		r.IsBestAnswer = r.ID == targetReplyID
		out[i] = r
	}
	return patched, out, nil
}
