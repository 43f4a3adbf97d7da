/*
SPDX-License-Identifier: Apache-2.0
*/

package version

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/depress-xyz/depress/common/metadata"
	"github.com/depress-xyz/depress/core/program"
	"github.com/stretchr/testify/require"
)

func TestCmd(t *testing.T) {
	cmd := Cmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute(), "expected version command to succeed")
	require.Equal(t, GetInfo(), out.String())
}

func TestCmdWithTrailingArgs(t *testing.T) {
	cmd := Cmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"trailingargs"})
	require.EqualError(t, cmd.Execute(), "trailing args detected")
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	require.Contains(t, info, "Version: "+metadata.Version)
	require.Contains(t, info, "Commit SHA: "+metadata.CommitSHA)
	require.Contains(t, info, "Go version: "+runtime.Version())
	require.Contains(t, info, "Program ID: "+program.Declared)
}
