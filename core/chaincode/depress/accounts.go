/*
SPDX-License-Identifier: Apache-2.0
*/

package depress

import (
	"encoding/json"

	perrors "github.com/depress-xyz/depress/common/errors"
	"github.com/depress-xyz/depress/core/program"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/pkg/errors"
)

// Account kinds. The kind is stored in each document as docType and is part
// of the account's state key.
const (
	KindPost     = "post"
	KindComment  = "comment"
	KindReaction = "reaction"
)

const (
	accountIndex        = "account"
	postCommentIndex    = "post~comment"
	targetReactionIndex = "target~reaction"
	postSeed            = "POST_SEED"
	commentSeed         = "COMMENT_SEED"
	postReactionSeed    = "POST_REACTION_SEED"
	commentReactionSeed = "COMMENT_REACTION_SEED"
	maxTopicLength      = 32
	maxContentLength    = 500
	maxCommentLength    = 500
)

// an index entry only needs its key; a nil value would delete it
var indexValue = []byte{0x00}

// Post is a topic and body published by its author.
type Post struct {
	ObjectType string     `json:"docType"`
	Address    program.ID `json:"address"`
	Author     program.ID `json:"author"`
	Topic      string     `json:"topic"`
	Content    string     `json:"content"`
	Likes      uint64     `json:"likes"`
	Dislikes   uint64     `json:"dislikes"`
	Bump       uint8      `json:"bump"`
}

// Comment is attached to a post.
type Comment struct {
	ObjectType string     `json:"docType"`
	Address    program.ID `json:"address"`
	Author     program.ID `json:"author"`
	Post       program.ID `json:"post"`
	Content    string     `json:"content"`
	Likes      uint64     `json:"likes"`
	Dislikes   uint64     `json:"dislikes"`
	Bump       uint8      `json:"bump"`
}

type ReactionKind string

const (
	Like    ReactionKind = "like"
	Dislike ReactionKind = "dislike"
)

// Reaction records that a signer liked or disliked a post or comment. A
// signer holds at most one reaction per target.
type Reaction struct {
	ObjectType string       `json:"docType"`
	Address    program.ID   `json:"address"`
	Author     program.ID   `json:"author"`
	Target     program.ID   `json:"target"`
	Kind       ReactionKind `json:"kind"`
	Bump       uint8        `json:"bump"`
}

// counters is the common view of posts and comments used by reactions.
type counters struct {
	likes    *uint64
	dislikes *uint64
}

func (c counters) add(kind ReactionKind) error {
	switch kind {
	case Like:
		if *c.likes == ^uint64(0) {
			return ErrMaxLikesReached
		}
		*c.likes++
	case Dislike:
		if *c.dislikes == ^uint64(0) {
			return ErrMaxDislikesReached
		}
		*c.dislikes++
	default:
		return errors.Errorf("unknown reaction kind %q", kind)
	}
	return nil
}

func (c counters) remove(kind ReactionKind) error {
	switch kind {
	case Like:
		if *c.likes == 0 {
			return ErrMinLikesReached
		}
		*c.likes--
	case Dislike:
		if *c.dislikes == 0 {
			return ErrMinDislikesReached
		}
		*c.dislikes--
	default:
		return errors.Errorf("unknown reaction kind %q", kind)
	}
	return nil
}

// Ledger reads and writes program accounts in the world state.
type Ledger struct {
	Stub shim.ChaincodeStubInterface
}

func (l *Ledger) accountKey(kind string, addr program.ID) (string, error) {
	return l.Stub.CreateCompositeKey(accountIndex, []string{kind, addr.String()})
}

// Exists reports whether an account of the given kind lives at addr.
func (l *Ledger) Exists(kind string, addr program.ID) (bool, error) {
	key, err := l.accountKey(kind, addr)
	if err != nil {
		return false, err
	}
	b, err := l.Stub.GetState(key)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s %s", kind, addr)
	}
	return b != nil, nil
}

// Load unmarshals the account of the given kind at addr into v. A missing
// account yields ErrAccountNotInitialized.
func (l *Ledger) Load(kind string, addr program.ID, v interface{}) error {
	key, err := l.accountKey(kind, addr)
	if err != nil {
		return err
	}
	b, err := l.Stub.GetState(key)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s %s", kind, addr)
	}
	if b == nil {
		return errors.WithMessagef(perrors.ErrAccountNotInitialized, "%s %s", kind, addr)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return errors.WithMessagef(perrors.ErrAccountDidNotDeserialize, "%s %s: %s", kind, addr, err)
	}
	return nil
}

// Store writes the account document.
func (l *Ledger) Store(kind string, addr program.ID, v interface{}) error {
	key, err := l.accountKey(kind, addr)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s %s", kind, addr)
	}
	return errors.Wrapf(l.Stub.PutState(key, b), "failed to write %s %s", kind, addr)
}

// Init writes a new account, failing if one already exists at addr.
func (l *Ledger) Init(kind string, addr program.ID, v interface{}) error {
	exists, err := l.Exists(kind, addr)
	if err != nil {
		return err
	}
	if exists {
		return errors.WithMessagef(perrors.ErrAccountAlreadyInitialized, "%s %s", kind, addr)
	}
	return l.Store(kind, addr, v)
}

// Close removes the account.
func (l *Ledger) Close(kind string, addr program.ID) error {
	key, err := l.accountKey(kind, addr)
	if err != nil {
		return err
	}
	return errors.Wrapf(l.Stub.DelState(key), "failed to close %s %s", kind, addr)
}

// Index records that child belongs to parent under the named index.
func (l *Ledger) Index(index string, parent, child program.ID) error {
	key, err := l.Stub.CreateCompositeKey(index, []string{parent.String(), child.String()})
	if err != nil {
		return err
	}
	return errors.Wrapf(l.Stub.PutState(key, indexValue), "failed to index %s under %s", child, parent)
}

// Unindex removes the index entry linking child to parent.
func (l *Ledger) Unindex(index string, parent, child program.ID) error {
	key, err := l.Stub.CreateCompositeKey(index, []string{parent.String(), child.String()})
	if err != nil {
		return err
	}
	return errors.Wrapf(l.Stub.DelState(key), "failed to remove index of %s under %s", child, parent)
}

// Children lists the addresses indexed under parent.
func (l *Ledger) Children(index string, parent program.ID) ([]program.ID, error) {
	iter, err := l.Stub.GetStateByPartialCompositeKey(index, []string{parent.String()})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query %s for %s", index, parent)
	}
	defer iter.Close()

	var children []program.ID
	for iter.HasNext() {
		kv, err := iter.Next()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to iterate %s for %s", index, parent)
		}
		_, parts, err := l.Stub.SplitCompositeKey(kv.Key)
		if err != nil {
			return nil, err
		}
		if len(parts) != 2 {
			return nil, errors.Errorf("malformed %s key %q", index, kv.Key)
		}
		child, err := program.Parse(parts[1])
		if err != nil {
			return nil, errors.WithMessagef(err, "malformed %s key", index)
		}
		children = append(children, child)
	}
	return children, nil
}

// Posts returns every post in key order.
func (l *Ledger) Posts() ([]*Post, error) {
	iter, err := l.Stub.GetStateByPartialCompositeKey(accountIndex, []string{KindPost})
	if err != nil {
		return nil, errors.Wrap(err, "failed to query posts")
	}
	defer iter.Close()

	posts := []*Post{}
	for iter.HasNext() {
		kv, err := iter.Next()
		if err != nil {
			return nil, errors.Wrap(err, "failed to iterate posts")
		}
		post := &Post{}
		if err := json.Unmarshal(kv.Value, post); err != nil {
			return nil, errors.WithMessagef(perrors.ErrAccountDidNotDeserialize, "key %q: %s", kv.Key, err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}
