/*
SPDX-License-Identifier: Apache-2.0
*/

package address

import (
	"fmt"
	"io"

	"github.com/depress-xyz/depress/core/chaincode/depress"
	"github.com/depress-xyz/depress/core/program"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type options struct {
	programID string
	author    string
	topic     string
	post      string
	content   string
	target    string
	kind      string
}

// Cmd returns the command that prints the program id and derives account
// addresses from it.
func Cmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Print the program id and derived account addresses.",
		Long: `Print the program id. Given --author, the addresses of that author's post
(--topic), comment (--post and --content) and reaction (--target and --kind)
are derived as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return o.run(cmd.OutOrStdout())
		},
	}

	o.addFlags(cmd.Flags())
	return cmd
}

func (o *options) addFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.programID, "program-id", program.Declared, "Program id the addresses are derived from")
	flags.StringVarP(&o.author, "author", "a", "", "Author address")
	flags.StringVarP(&o.topic, "topic", "t", "", "Post topic")
	flags.StringVarP(&o.post, "post", "p", "", "Post address a comment belongs to")
	flags.StringVarP(&o.content, "content", "c", "", "Comment content")
	flags.StringVar(&o.target, "target", "", "Post or comment address a reaction belongs to")
	flags.StringVar(&o.kind, "kind", depress.KindPost, "Kind of the reaction target, post or comment")
}

func (o *options) validate() error {
	switch {
	case o.content != "" && o.post == "":
		return errors.New("--content requires --post")
	case o.post != "" && o.content == "":
		return errors.New("--post requires a non-empty --content")
	case o.author == "" && (o.topic != "" || o.post != "" || o.target != ""):
		return errors.New("--author is required to derive addresses")
	}
	return nil
}

func (o *options) run(out io.Writer) error {
	if err := o.validate(); err != nil {
		return err
	}
	programID, err := program.Parse(o.programID)
	if err != nil {
		return errors.WithMessage(err, "invalid program id")
	}
	fmt.Fprintf(out, "Program ID: %s\n", programID)

	if o.author == "" {
		return nil
	}
	author, err := program.Parse(o.author)
	if err != nil {
		return errors.WithMessage(err, "invalid author")
	}

	if o.topic != "" {
		addr, bump, err := depress.PostAddress(programID, o.topic, author)
		if err != nil {
			return errors.WithMessage(err, "failed to derive post address")
		}
		fmt.Fprintf(out, "Post: %s (bump %d)\n", addr, bump)
	}

	if o.post != "" {
		post, err := program.Parse(o.post)
		if err != nil {
			return errors.WithMessage(err, "invalid post")
		}
		addr, bump, err := depress.CommentAddress(programID, author, o.content, post)
		if err != nil {
			return errors.WithMessage(err, "failed to derive comment address")
		}
		fmt.Fprintf(out, "Comment: %s (bump %d)\n", addr, bump)
	}

	if o.target != "" {
		if o.kind != depress.KindPost && o.kind != depress.KindComment {
			return errors.Errorf("invalid reaction target kind %q", o.kind)
		}
		target, err := program.Parse(o.target)
		if err != nil {
			return errors.WithMessage(err, "invalid target")
		}
		addr, bump, err := depress.ReactionAddress(programID, o.kind, author, target)
		if err != nil {
			return errors.WithMessage(err, "failed to derive reaction address")
		}
		fmt.Fprintf(out, "Reaction: %s (bump %d)\n", addr, bump)
	}

	return nil
}
