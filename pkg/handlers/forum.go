package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"folio/pkg/envelope"
	"folio/pkg/hub"
	"folio/pkg/models"
	"folio/pkg/services"
	"folio/pkg/thread"
)

type ForumHandler struct {
	svc services.ForumService
	hub *hub.Hub
}

func NewForum(svc services.ForumService, h *hub.Hub) *ForumHandler {
	return &ForumHandler{svc: svc, hub: h}
}

// RegisterActions exposes the read/vote paths to websocket clients; the
// desktop app keeps a thread open over the socket while reading.
func (h *ForumHandler) RegisterActions() {
	h.hub.On("forum.thread", h.wsThread)
	h.hub.On("forum.vote", h.wsVote)
}

// GET /forum/posts?limit=30&offset=0
func (h *ForumHandler) ListPosts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 30)
	offset := c.QueryInt("offset", 0)
	viewerID, _ := c.Locals("user_id").(int)

	posts, err := h.svc.ListPosts(limit, offset, viewerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return c.JSON(posts)
}

// GET /forum/posts/:id?sort=best&depth=3
func (h *ForumHandler) GetThread(c *fiber.Ctx) error {
	postID := c.Params("id")
	viewerID, _ := c.Locals("user_id").(int)
	order := thread.ParseOrder(c.Query("sort"))
	maxDepth := c.QueryInt("depth", thread.DefaultMaxDepth)

	t, err := h.svc.Thread(postID, viewerID, order, maxDepth)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(t)
}

// POST /forum/posts
func (h *ForumHandler) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	userID, _ := c.Locals("user_id").(int)
	username, _ := c.Locals("username").(string)

	post, err := h.svc.CreatePost(req.Title, req.Content, username, userID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(post)
}

// POST /forum/posts/:id/replies
func (h *ForumHandler) CreateReply(c *fiber.Ctx) error {
	var req struct {
		Content       string  `json:"content"`
		ParentReplyID *string `json:"parent_reply_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	userID, _ := c.Locals("user_id").(int)
	username, _ := c.Locals("username").(string)

	reply, err := h.svc.CreateReply(c.Params("id"), req.ParentReplyID, req.Content, username, userID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(reply)
}

// POST /forum/vote
func (h *ForumHandler) Vote(c *fiber.Ctx) error {
	var req struct {
		SubjectID string      `json:"subject_id"`
		Vote      models.Vote `json:"vote"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	userID, _ := c.Locals("user_id").(int)

	state, err := h.svc.Vote(userID, req.SubjectID, req.Vote)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(state)
}

// POST /forum/posts/:id/best-answer
func (h *ForumHandler) MarkBestAnswer(c *fiber.Ctx) error {
	var req struct {
		ReplyID string `json:"reply_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	userID, _ := c.Locals("user_id").(int)

	post, err := h.svc.MarkBestAnswer(userID, c.Params("id"), req.ReplyID)
	if err != nil {
		if errors.Is(err, thread.ErrPermissionDenied) {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(post)
}

// DELETE /forum/posts/:id
func (h *ForumHandler) DeletePost(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int)

	if err := h.svc.DeletePost(userID, c.Params("id")); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// DELETE /forum/replies/:id
func (h *ForumHandler) DeleteReply(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int)

	if err := h.svc.DeleteReply(userID, c.Params("id")); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *ForumHandler) wsThread(env envelope.Envelope) {
	type threadReq struct {
		PostID string `json:"post_id"`
		Sort   string `json:"sort"`
		Depth  *int   `json:"depth"`
	}
	req, err := envelope.ParseData[threadReq](env)
	if err != nil || req.PostID == "" {
		h.hub.ReplyError(env, 400, "post_id required")
		return
	}

	maxDepth := thread.DefaultMaxDepth
	if req.Depth != nil {
		maxDepth = *req.Depth
	}

	t, err := h.svc.Thread(req.PostID, env.UserID, thread.ParseOrder(req.Sort), maxDepth)
	if err != nil {
		h.hub.ReplyError(env, statusFor(err), err.Error())
		return
	}
	h.hub.Reply(env, t)
}

func (h *ForumHandler) wsVote(env envelope.Envelope) {
	if env.UserID <= 0 {
		h.hub.ReplyError(env, 401, "login required")
		return
	}

	type voteReq struct {
		SubjectID string      `json:"subject_id"`
		Vote      models.Vote `json:"vote"`
	}
	req, err := envelope.ParseData[voteReq](env)
	if err != nil || req.SubjectID == "" {
		h.hub.ReplyError(env, 400, "subject_id required")
		return
	}

	state, err := h.svc.Vote(env.UserID, req.SubjectID, req.Vote)
	if err != nil {
		h.hub.ReplyError(env, statusFor(err), err.Error())
		return
	}
	h.hub.Reply(env, state)
}

// statusFor maps the service layer's soft-failure messages onto HTTP
// status codes.
func statusFor(err error) int {
	if strings.Contains(err.Error(), "not found") {
		return 404
	}
	return 400
}
