package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type friendshipView struct {
	ID          uint   `json:"id"`
	RequesterID uint   `json:"requesterId"`
	RecipientID uint   `json:"recipientId"`
	Status      string `json:"status"`
	Requester   *struct {
		Username string `json:"username"`
	} `json:"requester"`
}

type summaryView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func TestFriends_RequestAcceptList(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	w := do(t, e.api, http.MethodPost, "/friends", map[string]any{"userId": alice, "target": "bob"}, "")
	requireStatus(t, w, http.StatusOK)
	f := decode[friendshipView](t, w)
	assert.Equal(t, "PENDING", f.Status)
	assert.Equal(t, bob, f.RecipientID)

	// a numeric target names the user by id; the reverse edge already exists
	w = do(t, e.api, http.MethodPost, "/friends", map[string]any{"userId": bob, "target": alice}, "")
	requireStatus(t, w, http.StatusConflict)
	assert.Equal(t, "Friend request already exists", decode[errBody](t, w).Error)

	w = do(t, e.api, http.MethodPost, "/friends", map[string]any{"userId": alice, "target": "alice@example.com"}, "")
	requireStatus(t, w, http.StatusBadRequest)

	w = do(t, e.api, http.MethodGet, "/friends?userId="+itoa(bob), nil, "")
	requireStatus(t, w, http.StatusOK)
	list := decode[struct {
		Friends []summaryView    `json:"friends"`
		Pending []friendshipView `json:"pending"`
	}](t, w)
	assert.Empty(t, list.Friends)
	require.Len(t, list.Pending, 1)
	require.NotNil(t, list.Pending[0].Requester)
	assert.Equal(t, "alice", list.Pending[0].Requester.Username)

	w = do(t, e.api, http.MethodGet, "/friends/sent?userId="+itoa(alice), nil, "")
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, decode[[]friendshipView](t, w), 1)

	w = do(t, e.api, http.MethodPatch, "/friends/"+itoa(f.ID)+"/accept", map[string]any{"userId": alice}, "")
	requireStatus(t, w, http.StatusForbidden)

	w = do(t, e.api, http.MethodPatch, "/friends/"+itoa(f.ID)+"/accept", map[string]any{"userId": bob}, "")
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "ACCEPTED", decode[friendshipView](t, w).Status)

	w = do(t, e.api, http.MethodPatch, "/friends/"+itoa(f.ID)+"/accept", map[string]any{"userId": bob}, "")
	requireStatus(t, w, http.StatusBadRequest)

	w = do(t, e.api, http.MethodGet, "/friends?userId="+itoa(bob), nil, "")
	requireStatus(t, w, http.StatusOK)
	list = decode[struct {
		Friends []summaryView    `json:"friends"`
		Pending []friendshipView `json:"pending"`
	}](t, w)
	assert.Equal(t, []summaryView{{ID: alice, Username: "alice"}}, list.Friends)
	assert.Empty(t, list.Pending)

	w = do(t, e.api, http.MethodGet, "/friends?userId="+itoa(alice), nil, "")
	requireStatus(t, w, http.StatusOK)
	list = decode[struct {
		Friends []summaryView    `json:"friends"`
		Pending []friendshipView `json:"pending"`
	}](t, w)
	assert.Equal(t, []summaryView{{ID: bob, Username: "bob"}}, list.Friends)

	w = do(t, e.api, http.MethodGet, "/friends", nil, "")
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Missing or invalid userId", decode[errBody](t, w).Error)

	w = do(t, e.api, http.MethodDelete, "/friends/"+itoa(f.ID)+"?userId="+itoa(alice), nil, "")
	requireStatus(t, w, http.StatusOK)
	w = do(t, e.api, http.MethodDelete, "/friends/"+itoa(f.ID)+"?userId="+itoa(alice), nil, "")
	requireStatus(t, w, http.StatusNotFound)
}

func TestChat_MessagesBlocksAndUnread(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	send := func(from, to uint, content string) int {
		return do(t, e.api, http.MethodPost, "/messages", map[string]any{
			"senderId": from, "receiverId": to, "content": content,
		}, "").Code
	}
	assert.Equal(t, http.StatusOK, send(alice, bob, "hi bob"))
	assert.Equal(t, http.StatusOK, send(alice, bob, "still there?"))
	assert.Equal(t, http.StatusBadRequest, send(alice, alice, "me"))
	assert.Equal(t, http.StatusNotFound, send(alice, 99, "ghost"))

	w := do(t, e.api, http.MethodGet, "/messages/unread/total?userId="+itoa(bob), nil, "")
	requireStatus(t, w, http.StatusOK)
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["count"])

	w = do(t, e.api, http.MethodGet, "/messages/unread/by-conversation?userId="+itoa(bob), nil, "")
	requireStatus(t, w, http.StatusOK)
	by := decode[[]struct {
		FromUserID uint  `json:"fromUserId"`
		Count      int64 `json:"count"`
	}](t, w)
	require.Len(t, by, 1)
	assert.Equal(t, alice, by[0].FromUserID)
	assert.Equal(t, int64(2), by[0].Count)

	w = do(t, e.api, http.MethodGet, "/messages/"+itoa(alice)+"?userId="+itoa(bob), nil, "")
	requireStatus(t, w, http.StatusOK)
	msgs := decode[[]struct {
		Content string `json:"content"`
	}](t, w)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi bob", msgs[0].Content)

	w = do(t, e.api, http.MethodGet, "/messages/abc?userId="+itoa(bob), nil, "")
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Invalid userId(s)", decode[errBody](t, w).Error)

	w = do(t, e.api, http.MethodPatch, "/messages/read", map[string]any{"senderId": alice, "userId": bob}, "")
	requireStatus(t, w, http.StatusOK)
	read := decode[map[string]any](t, w)
	assert.Equal(t, true, read["success"])
	assert.EqualValues(t, 2, read["updated"])

	w = do(t, e.api, http.MethodGet, "/conversations?userId="+itoa(bob), nil, "")
	requireStatus(t, w, http.StatusOK)
	convs := decode[[]struct {
		UserID  uint   `json:"userId"`
		Content string `json:"content"`
	}](t, w)
	require.Len(t, convs, 1)
	assert.Equal(t, alice, convs[0].UserID)
	assert.Equal(t, "still there?", convs[0].Content)

	// bob blocks alice; both directions are refused
	w = do(t, e.api, http.MethodPost, "/block", map[string]any{"blockerId": bob, "blockedId": alice}, "")
	requireStatus(t, w, http.StatusOK)
	w = do(t, e.api, http.MethodPost, "/block", map[string]any{"blockerId": bob, "blockedId": alice}, "")
	requireStatus(t, w, http.StatusOK)

	w = do(t, e.api, http.MethodPost, "/messages", map[string]any{"senderId": alice, "receiverId": bob, "content": "?"}, "")
	requireStatus(t, w, http.StatusForbidden)
	assert.Equal(t, "Receiver blocked sender.", decode[errBody](t, w).Error)
	w = do(t, e.api, http.MethodPost, "/messages", map[string]any{"senderId": bob, "receiverId": alice, "content": "?"}, "")
	requireStatus(t, w, http.StatusForbidden)
	assert.Equal(t, "Sender blocked receiver.", decode[errBody](t, w).Error)

	w = do(t, e.api, http.MethodGet, "/block?userId="+itoa(bob), nil, "")
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, []summaryView{{ID: alice, Username: "alice"}}, decode[[]summaryView](t, w))

	w = do(t, e.api, http.MethodDelete, "/block", map[string]any{"blockerId": bob, "blockedId": alice}, "")
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "User unblocked successfully.", decode[map[string]string](t, w)["message"])
	w = do(t, e.api, http.MethodDelete, "/block", map[string]any{"blockerId": bob, "blockedId": alice}, "")
	requireStatus(t, w, http.StatusNotFound)

	assert.Equal(t, http.StatusOK, send(alice, bob, "friends again"))
}

func TestMatches_RecordAndStats(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	w := do(t, e.api, http.MethodPost, "/matches", map[string]any{
		"player1Id": alice, "player2Id": bob, "player1Score": 5, "player2Score": 0,
	}, "")
	requireStatus(t, w, http.StatusOK)
	m := decode[struct {
		ID      uint   `json:"id"`
		Status  string `json:"status"`
		Player2 *summaryView
	}](t, w)
	assert.Equal(t, "DONE", m.Status)

	w = do(t, e.api, http.MethodPost, "/matches", map[string]any{
		"player1Id": alice, "player2Name": "Guest", "player1Score": 0, "player2Score": 0,
	}, "")
	requireStatus(t, w, http.StatusOK)

	w = do(t, e.api, http.MethodPost, "/matches", map[string]any{
		"player1Id": alice, "player2Id": bob, "player2Name": "Guest", "player1Score": 1, "player2Score": 0,
	}, "")
	requireStatus(t, w, http.StatusBadRequest)

	w = do(t, e.api, http.MethodGet, "/matches/"+itoa(bob), nil, "")
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = do(t, e.api, http.MethodGet, "/matches", nil, "")
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	w = do(t, e.api, http.MethodGet, "/matches/abc", nil, "")
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Invalid playerId provided", decode[errBody](t, w).Error)

	w = do(t, e.api, http.MethodGet, "/users/bob", nil, "")
	requireStatus(t, w, http.StatusOK)
	u := decode[userView](t, w)
	require.NotNil(t, u.Stats)
	assert.Equal(t, 1, u.Stats.Losses)
}
