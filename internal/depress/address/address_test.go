/*
SPDX-License-Identifier: Apache-2.0
*/

package address

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/depress-xyz/depress/core/chaincode/depress"
	"github.com/depress-xyz/depress/core/program"
	"github.com/stretchr/testify/require"
)

func execute(args ...string) (string, error) {
	cmd := Cmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestProgramID(t *testing.T) {
	out, err := execute()
	require.NoError(t, err)
	require.Equal(t, "Program ID: "+program.Declared+"\n", out)
}

func TestDerivedAddresses(t *testing.T) {
	author := program.ID{1, 2, 3}
	post, postBump, err := depress.PostAddress(program.ProgramID, "gm", author)
	require.NoError(t, err)
	comment, commentBump, err := depress.CommentAddress(program.ProgramID, author, "hello", post)
	require.NoError(t, err)
	reaction, reactionBump, err := depress.ReactionAddress(program.ProgramID, depress.KindComment, author, comment)
	require.NoError(t, err)

	out, err := execute(
		"--author", author.String(),
		"--topic", "gm",
		"--post", post.String(),
		"--content", "hello",
		"--target", comment.String(),
		"--kind", "comment",
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, []string{
		"Program ID: " + program.Declared,
		fmt.Sprintf("Post: %s (bump %d)", post, postBump),
		fmt.Sprintf("Comment: %s (bump %d)", comment, commentBump),
		fmt.Sprintf("Reaction: %s (bump %d)", reaction, reactionBump),
	}, lines)
}

func TestErrors(t *testing.T) {
	author := program.ID{1}.String()
	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{name: "TrailingArgs", args: []string{"extra"}, errMsg: `unknown command "extra" for "id"`},
		{name: "BadProgramID", args: []string{"--program-id", "nope"}, errMsg: "invalid program id"},
		{name: "MissingAuthor", args: []string{"--topic", "gm"}, errMsg: "--author is required to derive addresses"},
		{name: "BadAuthor", args: []string{"--author", "0OIl"}, errMsg: "invalid author"},
		{name: "LongTopic", args: []string{"--author", author, "--topic", strings.Repeat("t", 33)}, errMsg: "failed to derive post address"},
		{name: "ContentWithoutPost", args: []string{"--author", author, "--content", "hello"}, errMsg: "--content requires --post"},
		{name: "PostWithoutContent", args: []string{"--author", author, "--post", author}, errMsg: "--post requires a non-empty --content"},
		{name: "EmptyContent", args: []string{"--author", author, "--post", author, "--content", ""}, errMsg: "--post requires a non-empty --content"},
		{name: "BadKind", args: []string{"--author", author, "--target", author, "--kind", "user"}, errMsg: `invalid reaction target kind "user"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(tt.args...)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
