/*
SPDX-License-Identifier: Apache-2.0
*/

package depress_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/depress-xyz/depress/core/chaincode/depress"
	"github.com/depress-xyz/depress/core/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postAddress(t *testing.T, topic string, author *identity) program.ID {
	addr, _, err := depress.PostAddress(program.ProgramID, topic, author.address)
	require.NoError(t, err)
	return addr
}

func getPost(t *testing.T, h *harness, addr program.ID) *depress.Post {
	res := h.invoke(nil, "getPost", addr.String())
	requireOK(t, res)
	post := &depress.Post{}
	require.NoError(t, json.Unmarshal(res.Payload, post))
	return post
}

func TestAddPost(t *testing.T) {
	h := newHarness(t, depress.New(nil))
	alice := newIdentity(t, "alice")

	requireOK(t, h.invoke(alice, "addPost", "gm", "good morning"))
	addr := postAddress(t, "gm", alice)

	events := h.events()
	require.Len(t, events, 1)
	assert.Contains(t, string(events[0].Payload), "Post "+addr.String()+" created by "+alice.address.String())

	post := getPost(t, h, addr)
	assert.Equal(t, depress.KindPost, post.ObjectType)
	assert.Equal(t, addr, post.Address)
	assert.Equal(t, alice.address, post.Author)
	assert.Equal(t, "gm", post.Topic)
	assert.Equal(t, "good morning", post.Content)
	assert.Zero(t, post.Likes)
	assert.Zero(t, post.Dislikes)

	_, bump, err := depress.PostAddress(program.ProgramID, "gm", alice.address)
	require.NoError(t, err)
	assert.Equal(t, bump, post.Bump)
}

func TestAddPostValidation(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		content string
		number  uint32
	}{
		{name: "TopicTooLong", topic: strings.Repeat("t", 33), content: "c", number: 6000},
		{name: "ContentTooLong", topic: "t", content: strings.Repeat("c", 501), number: 6001},
		{name: "TopicEmpty", topic: "", content: "c", number: 6007},
		{name: "ContentEmpty", topic: "t", content: "", number: 6008},
		{name: "MultiByteTopicTooLong", topic: strings.Repeat("é", 17), content: "c", number: 6000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, depress.New(nil))
			res := h.invoke(newIdentity(t, "alice"), "addPost", tt.topic, tt.content)
			requireErrorNumber(t, res, tt.number)
			assert.Empty(t, h.stub.State)
		})
	}
}

func TestAddPostLimits(t *testing.T) {
	h := newHarness(t, depress.New(nil))
	alice := newIdentity(t, "alice")
	requireOK(t, h.invoke(alice, "addPost", strings.Repeat("t", 32), strings.Repeat("c", 500)))
}

func TestAddPostTwice(t *testing.T) {
	h := newHarness(t, depress.New(nil))
	alice := newIdentity(t, "alice")
	bob := newIdentity(t, "bob")

	requireOK(t, h.invoke(alice, "addPost", "gm", "first"))
	requireErrorNumber(t, h.invoke(alice, "addPost", "gm", "second"), 3000)

	// the author is part of the address
	requireOK(t, h.invoke(bob, "addPost", "gm", "mine"))
	assert.Equal(t, "first", getPost(t, h, postAddress(t, "gm", alice)).Content)
}

func TestGetPosts(t *testing.T) {
	h := newHarness(t, depress.New(nil))
	alice := newIdentity(t, "alice")
	bob := newIdentity(t, "bob")

	res := h.invoke(nil, "getPosts")
	requireOK(t, res)
	assert.JSONEq(t, "[]", string(res.Payload))

	requireOK(t, h.invoke(alice, "addPost", "one", "1"))
	requireOK(t, h.invoke(alice, "addPost", "two", "2"))
	requireOK(t, h.invoke(bob, "addPost", "one", "3"))
	requireOK(t, h.invoke(bob, "addComment", postAddress(t, "one", alice).String(), "nice"))

	res = h.invoke(nil, "getPosts")
	requireOK(t, res)
	var posts []*depress.PostSummary
	require.NoError(t, json.Unmarshal(res.Payload, &posts))
	require.Len(t, posts, 3)

	var contents []string
	for _, p := range posts {
		contents = append(contents, p.Content)
	}
	assert.ElementsMatch(t, []string{"1", "2", "3"}, contents)

	var fields []map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Payload, &fields))
	for _, f := range fields {
		var keys []string
		for k := range f {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, []string{"address", "author", "topic", "content", "likes", "dislikes"}, keys)
	}
}

func TestGetPostsOrderedByAddressBytes(t *testing.T) {
	h := newHarness(t, depress.New(nil))
	alice := newIdentity(t, "alice")

	for i := 0; i < 64; i++ {
		requireOK(t, h.invoke(alice, "addPost", fmt.Sprintf("topic-%d", i), "content"))
	}

	res := h.invoke(nil, "getPosts")
	requireOK(t, res)
	var posts []*depress.PostSummary
	require.NoError(t, json.Unmarshal(res.Payload, &posts))
	require.Len(t, posts, 64)
	for i := 1; i < len(posts); i++ {
		require.Negative(t, bytes.Compare(posts[i-1].Address[:], posts[i].Address[:]), "posts %d and %d are out of order", i-1, i)
	}
}

func TestGetPostErrors(t *testing.T) {
	h := newHarness(t, depress.New(nil))
	alice := newIdentity(t, "alice")

	requireErrorNumber(t, h.invoke(nil, "getPost", postAddress(t, "gm", alice).String()), 3012)
	requireErrorNumber(t, h.invoke(nil, "getPost", "not-base58-0OIl"), 102)
	requireErrorNumber(t, h.invoke(nil, "getPost"), 102)
}

func TestRemovePost(t *testing.T) {
	h := newHarness(t, depress.New(nil))
	alice := newIdentity(t, "alice")
	bob := newIdentity(t, "bob")

	requireOK(t, h.invoke(alice, "addPost", "gm", "good morning"))
	post := postAddress(t, "gm", alice).String()
	requireOK(t, h.invoke(bob, "likePost", post))
	requireOK(t, h.invoke(bob, "addComment", post, "gm to you"))
	requireOK(t, h.invoke(alice, "addComment", post, "thanks"))

	res := h.invoke(alice, "getComments", post)
	requireOK(t, res)
	var comments []*depress.Comment
	require.NoError(t, json.Unmarshal(res.Payload, &comments))
	require.Len(t, comments, 2)
	requireOK(t, h.invoke(alice, "dislikeComment", comments[0].Address.String()))

	// bob holds no post under this topic
	requireErrorNumber(t, h.invoke(bob, "removePost", "gm"), 3012)

	h.events()
	requireOK(t, h.invoke(alice, "removePost", "gm"))
	events := h.events()
	require.Len(t, events, 1)
	assert.Contains(t, string(events[0].Payload), "removed with 2 comments")

	assert.Empty(t, h.stub.State, "post, comments, reactions and indexes must all be closed")
	requireErrorNumber(t, h.invoke(nil, "getPost", post), 3012)

	// the topic is free again
	requireOK(t, h.invoke(alice, "addPost", "gm", "again"))
}
