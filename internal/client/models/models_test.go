package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_AcceptsLegacyID(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"u1","firstName":"Ada","lastName":"Lovelace","postsCount":3}`), &u))

	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "Ada Lovelace", u.FullName())
	assert.Equal(t, 3, u.PostsCount)
}

func TestUser_PrefersID(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","_id":"b"}`), &u))
	assert.Equal(t, "a", u.ID)
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ada", User{FirstName: "Ada"}.FullName())
	assert.Equal(t, "Lovelace", User{LastName: "Lovelace"}.FullName())
	assert.Equal(t, "", User{}.FullName())
}

func TestAuthPayload_SplitsUserAndTokens(t *testing.T) {
	body := `{"_id":"u1","email":"ada@example.com","token":"A","refreshToken":"R"}`

	var p AuthPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, "u1", p.User.ID)
	assert.Equal(t, "ada@example.com", p.User.Email)
	assert.Equal(t, Credential{AccessToken: "A", RefreshToken: "R"}, p.Credential())
}

func TestNotification_PostReference(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bare id", `{"_id":"n1","post":"p1"}`, "p1"},
		{"object", `{"_id":"n1","post":{"_id":"p2"}}`, "p2"},
		{"object with id", `{"_id":"n1","post":{"id":"p3"}}`, "p3"},
		{"null", `{"_id":"n1","post":null}`, ""},
		{"absent", `{"_id":"n1"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Notification
			require.NoError(t, json.Unmarshal([]byte(tt.body), &n))
			assert.Equal(t, "n1", n.ID)
			assert.Equal(t, tt.want, n.PostID)
		})
	}
}

func TestPost_AuthorName(t *testing.T) {
	assert.Equal(t, "Unknown", Post{}.AuthorName())
	assert.Equal(t, "Unknown", Post{Author: &Author{}}.AuthorName())
	assert.Equal(t, "Ada Lovelace", Post{Author: &Author{FirstName: "Ada", LastName: "Lovelace"}}.AuthorName())
}

func TestPostPage_NullNextPage(t *testing.T) {
	var p PostPage
	require.NoError(t, json.Unmarshal([]byte(`{"data":[{"_id":"p1","content":"hi"}],"page":2,"nextPage":null}`), &p))

	require.Len(t, p.Data, 1)
	assert.Equal(t, "p1", p.Data[0].ID)
	assert.Nil(t, p.NextPage)
}

func TestComment_AuthorName(t *testing.T) {
	assert.Equal(t, "Anonymous", Comment{}.AuthorName())
	assert.Equal(t, "Bob", Comment{User: &CommentUser{Name: "Bob"}}.AuthorName())
}
