package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoutesCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"routes"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Equal(t, []string{"ROUTE", "ACTION", "METHOD", "ACCESS", "CONTROLLER"}, strings.Fields(lines[0]))
	require.Equal(t, []string{"admin", `""`, "GET", "admin", "*controllers.Admin"}, strings.Fields(lines[1]))
	require.Equal(t, []string{"admin", "articles", "GET", "admin", "*controllers.Admin"}, strings.Fields(lines[2]))
	require.Equal(t, []string{"articles", `""`, "GET", "public", "*controllers.Articles"}, strings.Fields(lines[13]))
	require.Contains(t, out.String(), "process_login")
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"nope"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.Error(t, cmd.Execute())
}
