package http

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestParseOptions(t *testing.T) {
	t.Run("positionals, values and flags", func(t *testing.T) {
		opts := parseOptions([]string{"backend", "--platform", "go", "--remove", "<@U1>"})

		gt.Array(t, opts.positional).Length(2)
		gt.Value(t, opts.positional[0]).Equal("backend")
		gt.Value(t, opts.positional[1]).Equal("<@U1>")
		gt.Value(t, opts.values["platform"]).Equal("go")
		gt.Bool(t, opts.flags["remove"]).True()
	})

	t.Run("trailing option without value becomes a flag", func(t *testing.T) {
		opts := parseOptions([]string{"--remove"})
		gt.Bool(t, opts.flags["remove"]).True()
		gt.Array(t, opts.positional).Length(0)
	})

	t.Run("pointer distinguishes absent from empty", func(t *testing.T) {
		opts := parseOptions([]string{"--name", "x"})
		gt.Value(t, opts.pointer("name")).NotNil()
		gt.Value(t, opts.pointer("email")).Nil()
	})
}

func TestParseMention(t *testing.T) {
	gt.Value(t, parseMention("<@U12345>")).Equal("U12345")
	gt.Value(t, parseMention("<@U12345|alice>")).Equal("U12345")
	gt.Value(t, parseMention("U12345")).Equal("U12345")
}

func TestParseChannel(t *testing.T) {
	gt.Value(t, parseChannel("<#C12345|general>")).Equal("C12345")
	gt.Value(t, parseChannel("<#C12345>")).Equal("C12345")
	gt.Value(t, parseChannel("C12345")).Equal("C12345")
}

func TestDispatchCommand(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer()

	t.Run("empty and unknown commands print usage", func(t *testing.T) {
		gt.Value(t, srv.dispatchCommand(ctx, "U1", nil)).Equal(commandUsage)
		gt.Value(t, srv.dispatchCommand(ctx, "U1", []string{"frobnicate"})).Equal(commandUsage)
		gt.Value(t, srv.dispatchCommand(ctx, "U1", []string{"help"})).Equal(commandUsage)
	})

	t.Run("team list with no teams", func(t *testing.T) {
		reply := srv.dispatchCommand(ctx, "U1", []string{"team", "list"})
		gt.Value(t, reply).Equal("No teams yet.")
	})

	t.Run("user list with no users", func(t *testing.T) {
		reply := srv.dispatchCommand(ctx, "U1", []string{"user", "list"})
		gt.Value(t, reply).Equal("No users found.")
	})

	t.Run("user list rejects a bad permission level", func(t *testing.T) {
		reply := srv.dispatchCommand(ctx, "U1", []string{"user", "list", "--permission", "overlord"})
		gt.Value(t, reply).Equal("Unknown permission level. Use member, team_lead or admin.")
	})

	t.Run("unknown user yields a friendly message", func(t *testing.T) {
		reply := srv.dispatchCommand(ctx, "U1", []string{"karma", "view"})
		gt.Value(t, reply).Equal("User not found!")
	})

	t.Run("missing team yields a friendly message", func(t *testing.T) {
		reply := srv.dispatchCommand(ctx, "U1", []string{"team", "view", "ghost"})
		gt.Value(t, reply).Equal("Team not found!")
	})
}
