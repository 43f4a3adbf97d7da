/*
SPDX-License-Identifier: Apache-2.0
*/

package depress

import (
	perrors "github.com/depress-xyz/depress/common/errors"
)

// Program specific errors. Numbering starts at 6000 and must stay stable,
// clients match on the number.
var (
	ErrTopicTooLong       = &perrors.ProgramError{Code: 6000, Name: "TopicTooLong", Message: "Cannot initialize, topic too long"}
	ErrContentTooLong     = &perrors.ProgramError{Code: 6001, Name: "ContentTooLong", Message: "Cannot initialize, content too long"}
	ErrMaxLikesReached    = &perrors.ProgramError{Code: 6002, Name: "MaxLikesReached", Message: "Maximum number of Likes Reached"}
	ErrMaxDislikesReached = &perrors.ProgramError{Code: 6003, Name: "MaxDislikesReached", Message: "Maximum number of Dislikes Reached"}
	ErrMinLikesReached    = &perrors.ProgramError{Code: 6004, Name: "MinLikesReached", Message: "Minimum number of Likes Reached"}
	ErrMinDislikesReached = &perrors.ProgramError{Code: 6005, Name: "MinDislikesReached", Message: "Minimum number of Dislikes Reached"}
	ErrCommentTooLong     = &perrors.ProgramError{Code: 6006, Name: "CommentTooLong", Message: "Comment too long"}
	ErrTopicEmpty         = &perrors.ProgramError{Code: 6007, Name: "TopicEmpty", Message: "Topic must not be empty"}
	ErrContentEmpty       = &perrors.ProgramError{Code: 6008, Name: "ContentEmpty", Message: "Content must not be empty"}
	ErrCommentEmpty       = &perrors.ProgramError{Code: 6009, Name: "CommentEmpty", Message: "Comment must not be empty"}
	ErrUnauthorized       = &perrors.ProgramError{Code: 6010, Name: "Unauthorized", Message: "Only the author can perform this action"}
)
