/*
SPDX-License-Identifier: Apache-2.0
*/

package depress

import (
	perrors "github.com/depress-xyz/depress/common/errors"
	"github.com/depress-xyz/depress/core/program"
	"github.com/pkg/errors"
)

// HandlerFunc executes an instruction once its arguments have been counted
// and its signer, if any, resolved.
type HandlerFunc func(ctx *Context, args []string) ([]byte, error)

// Instruction describes an entry in the program's instruction table.
type Instruction struct {
	Name    string
	Args    int
	Signer  bool
	Handler HandlerFunc
}

// Instructions returns the names of all instructions the program accepts.
func (c *Chaincode) Instructions() []string {
	names := make([]string, 0, len(c.instructions))
	for name := range c.instructions {
		names = append(names, name)
	}
	return names
}

func instructionTable() map[string]*Instruction {
	table := []*Instruction{
		{Name: "initialize", Args: 0, Handler: initializeHandler},

		{Name: "addPost", Args: 2, Signer: true, Handler: addPostHandler},
		{Name: "removePost", Args: 1, Signer: true, Handler: removePostHandler},
		{Name: "likePost", Args: 1, Signer: true, Handler: reactToPostHandler(Like)},
		{Name: "dislikePost", Args: 1, Signer: true, Handler: reactToPostHandler(Dislike)},
		{Name: "removePostReaction", Args: 1, Signer: true, Handler: removePostReactionHandler},

		{Name: "addComment", Args: 2, Signer: true, Handler: addCommentHandler},
		{Name: "removeComment", Args: 1, Signer: true, Handler: removeCommentHandler},
		{Name: "likeComment", Args: 1, Signer: true, Handler: reactToCommentHandler(Like)},
		{Name: "dislikeComment", Args: 1, Signer: true, Handler: reactToCommentHandler(Dislike)},
		{Name: "removeCommentReaction", Args: 1, Signer: true, Handler: removeCommentReactionHandler},

		{Name: "getPosts", Args: 0, Handler: getPostsHandler},
		{Name: "getPost", Args: 1, Handler: getPostHandler},
		{Name: "getComments", Args: 1, Handler: getCommentsHandler},
		{Name: "getReaction", Args: 1, Signer: true, Handler: getReactionHandler},
	}

	instructions := map[string]*Instruction{}
	for _, ix := range table {
		instructions[ix.Name] = ix
	}
	return instructions
}

func parseAddress(arg string) (program.ID, error) {
	addr, err := program.Parse(arg)
	if err != nil {
		return program.ID{}, errors.WithMessage(perrors.ErrInstructionDidNotDeserialize, err.Error())
	}
	return addr, nil
}
