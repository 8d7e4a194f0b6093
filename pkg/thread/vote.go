package thread

import "folio/pkg/models"

// ApplyVote runs one vote transition for a single viewer against a single
// subject and returns the new tally. Requesting the vote the viewer already
// holds toggles it off; requesting VoteNone (or an empty vote) clears it.
//
// The prior vote is always retracted before the new one lands, so counters
// never go negative as long as they were built by this same function.
func ApplyVote(state models.VoteState, requested models.Vote) models.VoteState {
	next := state

	switch state.ViewerVote {
	case models.VoteUp:
		next.Upvotes--
	case models.VoteDown:
		next.Downvotes--
	}

	final := requested
	if requested == state.ViewerVote || requested == "" {
		final = models.VoteNone
	}

	switch final {
	case models.VoteUp:
		next.Upvotes++
	case models.VoteDown:
		next.Downvotes++
	}

	next.ViewerVote = final
	next.Score = next.Upvotes - next.Downvotes
	return next
}
