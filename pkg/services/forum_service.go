package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"folio/pkg/broker"
	"folio/pkg/cache"
	"folio/pkg/models"
	"folio/pkg/repository"
	"folio/pkg/thread"
)

type ForumService interface {
	ListPosts(limit, offset, viewerID int) ([]models.Post, error)
	Thread(postID string, viewerID int, order thread.Order, maxDepth int) (models.Thread, error)
	CreatePost(title, content, author string, userID int) (models.Post, error)
	CreateReply(postID string, parentReplyID *string, content, author string, userID int) (models.Reply, error)
	Vote(userID int, subjectID string, requested models.Vote) (models.VoteState, error)
	MarkBestAnswer(actorID int, postID, replyID string) (models.Post, error)
	DeletePost(userID int, postID string) error
	DeleteReply(userID int, replyID string) error
}

type forumService struct {
	repo   repository.ForumRepository
	redis  *cache.Redis
	events *broker.Broker
}

func NewForumService(repo repository.ForumRepository, redis *cache.Redis, events *broker.Broker) ForumService {
	return &forumService{repo: repo, redis: redis, events: events}
}

func (s *forumService) ListPosts(limit, offset, viewerID int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	cacheKey := fmt.Sprintf("forum:posts:%d:%d:v%d", limit, offset, viewerID)
	var cached []models.Post
	if s.redis.Get(cacheKey, &cached) {
		return cached, nil
	}

	posts, err := s.repo.ListPosts(viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("could not load posts")
	}

	s.redis.Set(cacheKey, posts, 15*time.Second)
	return posts, nil
}

// Thread loads a post and shapes its flat reply collection for display:
// build the forest, bound its depth, then order every list.
func (s *forumService) Thread(postID string, viewerID int, order thread.Order, maxDepth int) (models.Thread, error) {
	if maxDepth < 0 {
		maxDepth = thread.DefaultMaxDepth
	}

	cacheKey := fmt.Sprintf("forum:thread:%s:%s:d%d:v%d", postID, order, maxDepth, viewerID)
	var cached models.Thread
	if s.redis.Get(cacheKey, &cached) {
		return cached, nil
	}

	post, err := s.repo.GetPost(postID, viewerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Thread{}, fmt.Errorf("post not found")
		}
		return models.Thread{}, fmt.Errorf("could not load post")
	}

	flat, err := s.repo.Replies(postID, viewerID)
	if err != nil {
		return models.Thread{}, fmt.Errorf("could not load replies")
	}

	roots := thread.BuildTree(flat)
	roots = thread.Flatten(roots, maxDepth)
	roots = thread.SortForest(roots, order)

	t := models.Thread{
		Post:         post,
		Replies:      roots,
		TotalReplies: thread.CountReplies(roots),
	}

	s.redis.Set(cacheKey, t, 30*time.Second)
	return t, nil
}

func (s *forumService) CreatePost(title, content, author string, userID int) (models.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return models.Post{}, fmt.Errorf("title and content required")
	}
	if len(title) > 300 {
		return models.Post{}, fmt.Errorf("title too long (max 300)")
	}
	if len(content) > 10000 {
		return models.Post{}, fmt.Errorf("content too long (max 10000)")
	}

	post := models.Post{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		Author:     author,
		UserID:     userID,
		ViewerVote: models.VoteNone,
	}

	post, err := s.repo.CreatePost(post)
	if err != nil {
		return models.Post{}, fmt.Errorf("could not create post")
	}

	s.redis.DelPattern("forum:posts:*")
	s.events.PublishEvent("forum.post.created", post)
	return post, nil
}

func (s *forumService) CreateReply(postID string, parentReplyID *string, content, author string, userID int) (models.Reply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Reply{}, fmt.Errorf("content required")
	}
	if len(content) > 10000 {
		return models.Reply{}, fmt.Errorf("content too long (max 10000)")
	}

	reply := models.Reply{
		ID:            uuid.NewString(),
		PostID:        postID,
		ParentReplyID: parentReplyID,
		Content:       content,
		Author:        author,
		UserID:        userID,
		ViewerVote:    models.VoteNone,
	}

	reply, err := s.repo.CreateReply(reply)
	if err != nil {
		return models.Reply{}, fmt.Errorf("post not found")
	}

	s.repo.IncrementReplyCount(postID)

	s.invalidateThread(postID)
	s.events.PublishEvent("forum.reply.created", reply)
	return reply, nil
}

// Vote runs one transition of the vote state machine against a post or a
// reply and persists the outcome.
func (s *forumService) Vote(userID int, subjectID string, requested models.Vote) (models.VoteState, error) {
	switch requested {
	case models.VoteUp, models.VoteDown, models.VoteNone, "":
	default:
		return models.VoteState{}, fmt.Errorf("invalid vote %q", requested)
	}

	up, down, err := s.repo.Tally(subjectID)
	if err != nil {
		return models.VoteState{}, fmt.Errorf("subject not found")
	}

	state := models.VoteState{
		Upvotes:    up,
		Downvotes:  down,
		ViewerVote: s.repo.ViewerVote(userID, subjectID),
		Score:      up - down,
	}

	next := thread.ApplyVote(state, requested)

	if next.ViewerVote == models.VoteNone {
		err = s.repo.ClearVote(userID, subjectID)
	} else {
		err = s.repo.SaveVote(userID, subjectID, next.ViewerVote)
	}
	if err != nil {
		return models.VoteState{}, fmt.Errorf("could not save vote")
	}
	if err := s.repo.UpdateTally(subjectID, next.Upvotes, next.Downvotes); err != nil {
		return models.VoteState{}, fmt.Errorf("could not save vote")
	}

	s.redis.DelPattern("forum:posts:*")
	s.redis.DelPattern("forum:thread:*")
	s.events.PublishEvent("forum.vote.updated", map[string]interface{}{
		"subject_id": subjectID,
		"upvotes":    next.Upvotes,
		"downvotes":  next.Downvotes,
		"score":      next.Score,
	})
	return next, nil
}

// MarkBestAnswer asks the engine for the patched state — the engine owns
// the author-only rule and the exclusivity invariant — then persists it.
func (s *forumService) MarkBestAnswer(actorID int, postID, replyID string) (models.Post, error) {
	post, err := s.repo.GetPost(postID, actorID)
	if err != nil {
		return models.Post{}, fmt.Errorf("post not found")
	}

	flat, err := s.repo.Replies(postID, actorID)
	if err != nil {
		return models.Post{}, fmt.Errorf("could not load replies")
	}

	found := false
	for _, r := range flat {
		if r.ID == replyID {
			found = true
			break
		}
	}
	if !found {
		return models.Post{}, fmt.Errorf("reply not found")
	}

	patched, _, err := thread.SetBestAnswer(post, flat, replyID, actorID)
	if err != nil {
		return models.Post{}, err
	}

	if err := s.repo.SetBestAnswer(postID, replyID); err != nil {
		return models.Post{}, fmt.Errorf("could not save best answer")
	}

	s.invalidateThread(postID)
	s.events.PublishEvent("forum.bestanswer.set", map[string]string{
		"post_id":  postID,
		"reply_id": replyID,
	})
	return patched, nil
}

func (s *forumService) DeletePost(userID int, postID string) error {
	if err := s.repo.DeletePost(postID, userID); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("post not found or not yours")
		}
		return err
	}

	s.redis.DelPattern("forum:posts:*")
	s.invalidateThread(postID)
	s.events.PublishEvent("forum.post.deleted", map[string]string{"post_id": postID})
	return nil
}

// DeleteReply removes one reply only. Its children keep their dangling
// parent pointer and surface as roots on the next tree build.
func (s *forumService) DeleteReply(userID int, replyID string) error {
	postID, err := s.repo.DeleteReply(replyID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("reply not found or not yours")
		}
		return err
	}

	s.repo.DecrementReplyCount(postID)
	s.invalidateThread(postID)
	s.events.PublishEvent("forum.reply.deleted", map[string]string{
		"post_id":  postID,
		"reply_id": replyID,
	})
	return nil
}

func (s *forumService) invalidateThread(postID string) {
	s.redis.DelPattern(fmt.Sprintf("forum:thread:%s:*", postID))
	s.redis.DelPattern("forum:posts:*")
}
