package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReply_CarriesIdentityAndRouting(t *testing.T) {
	req := New("forum.thread", "forum")
	req.UserID = 7
	req.UserUUID = "uuid-7"
	req.Username = "reader"

	reply, err := NewReply(req, map[string]string{"post_id": "p1"})

	require.NoError(t, err)
	assert.Equal(t, "forum.thread.result", reply.Action)
	assert.Equal(t, req.ID, reply.ReplyTo)
	assert.Equal(t, 7, reply.UserID)
	assert.Equal(t, "uuid-7", reply.UserUUID)
	assert.Equal(t, "reader", reply.Username)
}

func TestMarshalRoundTrip(t *testing.T) {
	env, err := NewEvent("forum.vote.updated", "forum", map[string]int{"score": 3})
	require.NoError(t, err)

	raw, err := env.Marshal()
	require.NoError(t, err)

	back, err := Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, env.ID, back.ID)
	assert.Equal(t, env.Action, back.Action)

	payload, err := ParseData[map[string]int](back)
	require.NoError(t, err)
	assert.Equal(t, 3, payload["score"])
}

func TestNewError(t *testing.T) {
	req := New("forum.vote", "forum")
	req.UserID = 7

	errEnv := NewError(req, 403, "only the post author can mark a best answer")

	assert.Equal(t, "forum.vote.error", errEnv.Action)
	assert.Equal(t, req.ID, errEnv.ReplyTo)
	require.NotNil(t, errEnv.Error)
	assert.Equal(t, 403, errEnv.Error.Code)
}

func TestGenerateID_Unique(t *testing.T) {
	a := New("x", "y")
	b := New("x", "y")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 16)
}
