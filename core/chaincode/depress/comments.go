/*
SPDX-License-Identifier: Apache-2.0
*/

package depress

import (
	"crypto/sha256"

	perrors "github.com/depress-xyz/depress/common/errors"
	"github.com/depress-xyz/depress/core/program"
	"github.com/pkg/errors"
)

// CommentAddress derives the address of a comment. The content is hashed
// into the seed so that an author may comment on a post more than once.
func CommentAddress(programID program.ID, author program.ID, content string, post program.ID) (program.ID, uint8, error) {
	digest := sha256.Sum256([]byte(content))
	return program.FindProgramAddress([][]byte{[]byte(commentSeed), author.Bytes(), digest[:], post.Bytes()}, programID)
}

// AddCommentAccounts is resolved for addComment.
type AddCommentAccounts struct {
	Author  program.ID
	Post    *Post
	Comment program.ID
	Bump    uint8
}

// AddComment attaches a comment to an existing post.
func AddComment(ctx *Context, accounts AddCommentAccounts, content string) error {
	if err := validateComment(content); err != nil {
		return err
	}

	comment := &Comment{
		ObjectType: KindComment,
		Address:    accounts.Comment,
		Author:     accounts.Author,
		Post:       accounts.Post.Address,
		Content:    content,
		Bump:       accounts.Bump,
	}
	if err := ctx.Ledger.Init(KindComment, accounts.Comment, comment); err != nil {
		return err
	}
	if err := ctx.Ledger.Index(postCommentIndex, accounts.Post.Address, accounts.Comment); err != nil {
		return err
	}
	ctx.Msg("Comment %s added to post %s", accounts.Comment, accounts.Post.Address)
	return nil
}

func validateComment(content string) error {
	if len(content) == 0 {
		return ErrCommentEmpty
	}
	if len(content) > maxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}

func addCommentHandler(ctx *Context, args []string) ([]byte, error) {
	postAddr, err := parseAddress(args[0])
	if err != nil {
		return nil, err
	}
	content := args[1]
	if err := validateComment(content); err != nil {
		return nil, err
	}

	author, err := ctx.Signer()
	if err != nil {
		return nil, err
	}
	post := &Post{}
	if err := ctx.Ledger.Load(KindPost, postAddr, post); err != nil {
		return nil, err
	}
	addr, bump, err := CommentAddress(ctx.ProgramID, author, content, postAddr)
	if err != nil {
		return nil, errors.WithMessage(perrors.ErrAccountInvalidAddress, err.Error())
	}

	return nil, AddComment(ctx, AddCommentAccounts{
		Author:  author,
		Post:    post,
		Comment: addr,
		Bump:    bump,
	}, content)
}

// RemoveCommentAccounts is resolved for removeComment.
type RemoveCommentAccounts struct {
	Author  program.ID
	Comment *Comment
}

// RemoveComment closes a comment and its reactions. Only the author of the
// comment may remove it.
func RemoveComment(ctx *Context, accounts RemoveCommentAccounts) error {
	comment := accounts.Comment
	if !comment.Author.Equals(accounts.Author) {
		return ErrUnauthorized
	}

	if err := closeReactions(ctx, comment.Address); err != nil {
		return err
	}
	if err := ctx.Ledger.Close(KindComment, comment.Address); err != nil {
		return err
	}
	if err := ctx.Ledger.Unindex(postCommentIndex, comment.Post, comment.Address); err != nil {
		return err
	}
	ctx.Msg("Comment %s removed from post %s", comment.Address, comment.Post)
	return nil
}

func removeCommentHandler(ctx *Context, args []string) ([]byte, error) {
	addr, err := parseAddress(args[0])
	if err != nil {
		return nil, err
	}
	author, err := ctx.Signer()
	if err != nil {
		return nil, err
	}
	comment := &Comment{}
	if err := ctx.Ledger.Load(KindComment, addr, comment); err != nil {
		return nil, err
	}
	return nil, RemoveComment(ctx, RemoveCommentAccounts{Author: author, Comment: comment})
}

func getCommentsHandler(ctx *Context, args []string) ([]byte, error) {
	postAddr, err := parseAddress(args[0])
	if err != nil {
		return nil, err
	}
	exists, err := ctx.Ledger.Exists(KindPost, postAddr)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.WithMessagef(perrors.ErrAccountNotInitialized, "%s %s", KindPost, postAddr)
	}

	addrs, err := ctx.Ledger.Children(postCommentIndex, postAddr)
	if err != nil {
		return nil, err
	}
	comments := make([]*Comment, 0, len(addrs))
	for _, addr := range addrs {
		comment := &Comment{}
		if err := ctx.Ledger.Load(KindComment, addr, comment); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return marshalPayload(comments)
}
