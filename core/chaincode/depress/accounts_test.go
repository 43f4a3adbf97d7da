/*
SPDX-License-Identifier: Apache-2.0
*/

package depress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	post := &Post{}
	c := counters{likes: &post.Likes, dislikes: &post.Dislikes}

	require.NoError(t, c.add(Like))
	require.NoError(t, c.add(Dislike))
	require.NoError(t, c.add(Dislike))
	assert.EqualValues(t, 1, post.Likes)
	assert.EqualValues(t, 2, post.Dislikes)

	require.NoError(t, c.remove(Like))
	assert.Equal(t, ErrMinLikesReached, c.remove(Like))
	require.NoError(t, c.remove(Dislike))
	require.NoError(t, c.remove(Dislike))
	assert.Equal(t, ErrMinDislikesReached, c.remove(Dislike))

	post.Likes = ^uint64(0)
	post.Dislikes = ^uint64(0)
	assert.Equal(t, ErrMaxLikesReached, c.add(Like))
	assert.Equal(t, ErrMaxDislikesReached, c.add(Dislike))

	assert.EqualError(t, c.add("meh"), `unknown reaction kind "meh"`)
	assert.EqualError(t, c.remove("meh"), `unknown reaction kind "meh"`)
}

func TestValidatePost(t *testing.T) {
	assert.NoError(t, validatePost("t", "c"))
	assert.Equal(t, ErrTopicEmpty, validatePost("", ""))
	assert.Equal(t, ErrTopicTooLong, validatePost(string(make([]byte, 33)), "c"))
	assert.Equal(t, ErrContentEmpty, validatePost("t", ""))
	assert.Equal(t, ErrContentTooLong, validatePost("t", string(make([]byte, 501))))
}

func TestValidateComment(t *testing.T) {
	assert.NoError(t, validateComment("c"))
	assert.Equal(t, ErrCommentEmpty, validateComment(""))
	assert.Equal(t, ErrCommentTooLong, validateComment(string(make([]byte, 501))))
}
