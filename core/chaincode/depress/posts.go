/*
SPDX-License-Identifier: Apache-2.0
*/

package depress

import (
	"bytes"
	"encoding/json"
	"sort"

	perrors "github.com/depress-xyz/depress/common/errors"
	"github.com/depress-xyz/depress/core/program"
	"github.com/pkg/errors"
)

// PostAddress derives the address of the post author published under topic.
func PostAddress(programID program.ID, topic string, author program.ID) (program.ID, uint8, error) {
	return program.FindProgramAddress([][]byte{[]byte(topic), []byte(postSeed), author.Bytes()}, programID)
}

// AddPostAccounts is resolved for addPost.
type AddPostAccounts struct {
	Author program.ID
	Post   program.ID
	Bump   uint8
}

// AddPost publishes a new post. An author can hold one post per topic.
func AddPost(ctx *Context, accounts AddPostAccounts, topic, content string) error {
	if err := validatePost(topic, content); err != nil {
		return err
	}

	post := &Post{
		ObjectType: KindPost,
		Address:    accounts.Post,
		Author:     accounts.Author,
		Topic:      topic,
		Content:    content,
		Bump:       accounts.Bump,
	}
	if err := ctx.Ledger.Init(KindPost, accounts.Post, post); err != nil {
		return err
	}
	ctx.Msg("Post %s created by %s", accounts.Post, accounts.Author)
	return nil
}

func validatePost(topic, content string) error {
	switch {
	case len(topic) == 0:
		return ErrTopicEmpty
	case len(topic) > maxTopicLength:
		return ErrTopicTooLong
	case len(content) == 0:
		return ErrContentEmpty
	case len(content) > maxContentLength:
		return ErrContentTooLong
	}
	return nil
}

func addPostHandler(ctx *Context, args []string) ([]byte, error) {
	topic, content := args[0], args[1]
	// the topic doubles as a seed, reject it before derivation
	if err := validatePost(topic, content); err != nil {
		return nil, err
	}

	author, err := ctx.Signer()
	if err != nil {
		return nil, err
	}
	addr, bump, err := PostAddress(ctx.ProgramID, topic, author)
	if err != nil {
		return nil, errors.WithMessage(perrors.ErrAccountInvalidAddress, err.Error())
	}

	return nil, AddPost(ctx, AddPostAccounts{Author: author, Post: addr, Bump: bump}, topic, content)
}

// RemovePostAccounts is resolved for removePost.
type RemovePostAccounts struct {
	Author program.ID
	Post   *Post
}

// RemovePost closes the post together with its comments and every reaction
// on the post or its comments.
func RemovePost(ctx *Context, accounts RemovePostAccounts) error {
	post := accounts.Post
	if !post.Author.Equals(accounts.Author) {
		return ErrUnauthorized
	}

	comments, err := ctx.Ledger.Children(postCommentIndex, post.Address)
	if err != nil {
		return err
	}
	for _, comment := range comments {
		if err := closeReactions(ctx, comment); err != nil {
			return err
		}
		if err := ctx.Ledger.Close(KindComment, comment); err != nil {
			return err
		}
		if err := ctx.Ledger.Unindex(postCommentIndex, post.Address, comment); err != nil {
			return err
		}
	}
	if err := closeReactions(ctx, post.Address); err != nil {
		return err
	}
	if err := ctx.Ledger.Close(KindPost, post.Address); err != nil {
		return err
	}

	ctx.Msg("Post %s removed with %d comments", post.Address, len(comments))
	return nil
}

func removePostHandler(ctx *Context, args []string) ([]byte, error) {
	topic := args[0]
	if len(topic) == 0 {
		return nil, ErrTopicEmpty
	}
	if len(topic) > maxTopicLength {
		return nil, ErrTopicTooLong
	}

	author, err := ctx.Signer()
	if err != nil {
		return nil, err
	}
	addr, _, err := PostAddress(ctx.ProgramID, topic, author)
	if err != nil {
		return nil, errors.WithMessage(perrors.ErrAccountInvalidAddress, err.Error())
	}

	post := &Post{}
	if err := ctx.Ledger.Load(KindPost, addr, post); err != nil {
		return nil, err
	}
	return nil, RemovePost(ctx, RemovePostAccounts{Author: author, Post: post})
}

// closeReactions closes every reaction indexed under target. Counters of
// the target are left alone since the target is being closed as well.
func closeReactions(ctx *Context, target program.ID) error {
	reactions, err := ctx.Ledger.Children(targetReactionIndex, target)
	if err != nil {
		return err
	}
	for _, reaction := range reactions {
		if err := ctx.Ledger.Close(KindReaction, reaction); err != nil {
			return err
		}
		if err := ctx.Ledger.Unindex(targetReactionIndex, target, reaction); err != nil {
			return err
		}
	}
	return nil
}

// PostSummary is the entry getPosts returns for each post.
type PostSummary struct {
	Address  program.ID `json:"address"`
	Author   program.ID `json:"author"`
	Topic    string     `json:"topic"`
	Content  string     `json:"content"`
	Likes    uint64     `json:"likes"`
	Dislikes uint64     `json:"dislikes"`
}

// getPostsHandler lists all posts ordered by the bytes of their address.
// State keys hold base58 text, whose order differs when lengths differ.
func getPostsHandler(ctx *Context, _ []string) ([]byte, error) {
	posts, err := ctx.Ledger.Posts()
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool {
		return bytes.Compare(posts[i].Address[:], posts[j].Address[:]) < 0
	})

	summaries := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, PostSummary{
			Address:  p.Address,
			Author:   p.Author,
			Topic:    p.Topic,
			Content:  p.Content,
			Likes:    p.Likes,
			Dislikes: p.Dislikes,
		})
	}
	return marshalPayload(summaries)
}

func getPostHandler(ctx *Context, args []string) ([]byte, error) {
	addr, err := parseAddress(args[0])
	if err != nil {
		return nil, err
	}
	post := &Post{}
	if err := ctx.Ledger.Load(KindPost, addr, post); err != nil {
		return nil, err
	}
	return marshalPayload(post)
}

func marshalPayload(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal response")
	}
	return b, nil
}
