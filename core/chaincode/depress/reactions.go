/*
SPDX-License-Identifier: Apache-2.0
*/

package depress

import (
	perrors "github.com/depress-xyz/depress/common/errors"
	"github.com/depress-xyz/depress/core/program"
	"github.com/pkg/errors"
)

// ReactionAddress derives the address of the reaction author holds on
// target. kind is the account kind of the target, post or comment.
func ReactionAddress(programID program.ID, kind string, author, target program.ID) (program.ID, uint8, error) {
	seed := postReactionSeed
	if kind == KindComment {
		seed = commentReactionSeed
	}
	return program.FindProgramAddress([][]byte{[]byte(seed), author.Bytes(), target.Bytes()}, programID)
}

// ReactAccounts is resolved for the like and dislike instructions. Target
// is the post or comment being reacted to, Counters points into it and Save
// writes it back.
type ReactAccounts struct {
	Author     program.ID
	TargetKind string
	Target     program.ID
	Counters   counters
	Reaction   program.ID
	Bump       uint8
	Save       func() error
}

// React records the author's reaction on the target and bumps the matching
// counter.
func React(ctx *Context, accounts ReactAccounts, kind ReactionKind) error {
	if err := accounts.Counters.add(kind); err != nil {
		return err
	}

	reaction := &Reaction{
		ObjectType: KindReaction,
		Address:    accounts.Reaction,
		Author:     accounts.Author,
		Target:     accounts.Target,
		Kind:       kind,
		Bump:       accounts.Bump,
	}
	if err := ctx.Ledger.Init(KindReaction, accounts.Reaction, reaction); err != nil {
		return err
	}
	if err := ctx.Ledger.Index(targetReactionIndex, accounts.Target, accounts.Reaction); err != nil {
		return err
	}
	if err := accounts.Save(); err != nil {
		return err
	}
	ctx.Msg("%s %s on %s %s", accounts.Author, kind, accounts.TargetKind, accounts.Target)
	return nil
}

// RemoveReactionAccounts is resolved for the reaction removal instructions.
type RemoveReactionAccounts struct {
	Author     program.ID
	TargetKind string
	Target     program.ID
	Counters   counters
	Reaction   *Reaction
	Save       func() error
}

// RemoveReaction closes the author's reaction and reverts its counter.
func RemoveReaction(ctx *Context, accounts RemoveReactionAccounts) error {
	reaction := accounts.Reaction
	if !reaction.Author.Equals(accounts.Author) {
		return ErrUnauthorized
	}
	if err := accounts.Counters.remove(reaction.Kind); err != nil {
		return err
	}

	if err := ctx.Ledger.Close(KindReaction, reaction.Address); err != nil {
		return err
	}
	if err := ctx.Ledger.Unindex(targetReactionIndex, accounts.Target, reaction.Address); err != nil {
		return err
	}
	if err := accounts.Save(); err != nil {
		return err
	}
	ctx.Msg("%s removed %s on %s %s", accounts.Author, reaction.Kind, accounts.TargetKind, accounts.Target)
	return nil
}

// target is a loaded post or comment seen through its counters.
type target struct {
	kind     string
	address  program.ID
	counters counters
	save     func() error
}

func loadTarget(ctx *Context, kind string, arg string) (*target, error) {
	addr, err := parseAddress(arg)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindPost:
		post := &Post{}
		if err := ctx.Ledger.Load(KindPost, addr, post); err != nil {
			return nil, err
		}
		return &target{
			kind:     KindPost,
			address:  addr,
			counters: counters{likes: &post.Likes, dislikes: &post.Dislikes},
			save:     func() error { return ctx.Ledger.Store(KindPost, addr, post) },
		}, nil
	case KindComment:
		comment := &Comment{}
		if err := ctx.Ledger.Load(KindComment, addr, comment); err != nil {
			return nil, err
		}
		return &target{
			kind:     KindComment,
			address:  addr,
			counters: counters{likes: &comment.Likes, dislikes: &comment.Dislikes},
			save:     func() error { return ctx.Ledger.Store(KindComment, addr, comment) },
		}, nil
	default:
		return nil, errors.Errorf("unknown reaction target kind %q", kind)
	}
}

func reactHandler(targetKind string, kind ReactionKind) HandlerFunc {
	return func(ctx *Context, args []string) ([]byte, error) {
		t, err := loadTarget(ctx, targetKind, args[0])
		if err != nil {
			return nil, err
		}
		author, err := ctx.Signer()
		if err != nil {
			return nil, err
		}
		addr, bump, err := ReactionAddress(ctx.ProgramID, targetKind, author, t.address)
		if err != nil {
			return nil, errors.WithMessage(perrors.ErrAccountInvalidAddress, err.Error())
		}

		return nil, React(ctx, ReactAccounts{
			Author:     author,
			TargetKind: t.kind,
			Target:     t.address,
			Counters:   t.counters,
			Reaction:   addr,
			Bump:       bump,
			Save:       t.save,
		}, kind)
	}
}

func removeReactionHandler(targetKind string) HandlerFunc {
	return func(ctx *Context, args []string) ([]byte, error) {
		t, err := loadTarget(ctx, targetKind, args[0])
		if err != nil {
			return nil, err
		}
		author, err := ctx.Signer()
		if err != nil {
			return nil, err
		}
		reaction, err := loadReaction(ctx, targetKind, t.address)
		if err != nil {
			return nil, err
		}

		return nil, RemoveReaction(ctx, RemoveReactionAccounts{
			Author:     author,
			TargetKind: t.kind,
			Target:     t.address,
			Counters:   t.counters,
			Reaction:   reaction,
			Save:       t.save,
		})
	}
}

func loadReaction(ctx *Context, targetKind string, targetAddr program.ID) (*Reaction, error) {
	author, err := ctx.Signer()
	if err != nil {
		return nil, err
	}
	addr, _, err := ReactionAddress(ctx.ProgramID, targetKind, author, targetAddr)
	if err != nil {
		return nil, errors.WithMessage(perrors.ErrAccountInvalidAddress, err.Error())
	}
	reaction := &Reaction{}
	if err := ctx.Ledger.Load(KindReaction, addr, reaction); err != nil {
		return nil, err
	}
	return reaction, nil
}

func reactToPostHandler(kind ReactionKind) HandlerFunc    { return reactHandler(KindPost, kind) }
func reactToCommentHandler(kind ReactionKind) HandlerFunc { return reactHandler(KindComment, kind) }

var (
	removePostReactionHandler    = removeReactionHandler(KindPost)
	removeCommentReactionHandler = removeReactionHandler(KindComment)
)

// getReactionHandler returns the signer's reaction on a post or comment.
func getReactionHandler(ctx *Context, args []string) ([]byte, error) {
	targetAddr, err := parseAddress(args[0])
	if err != nil {
		return nil, err
	}

	for _, kind := range []string{KindPost, KindComment} {
		reaction, err := loadReaction(ctx, kind, targetAddr)
		if err == nil {
			return marshalPayload(reaction)
		}
		if errors.Cause(err) != perrors.ErrAccountNotInitialized {
			return nil, err
		}
	}
	return nil, errors.WithMessagef(perrors.ErrAccountNotInitialized, "%s on %s", KindReaction, targetAddr)
}
