package main

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want []string
	}{
		{"version", []string{"version"}},
		{"version\n", []string{"version"}},
		{"  lpush   list a\tb ", []string{"lpush", "list", "a", "b"}},
		{"rpush list a\nrpush list b", []string{"rpush", "list", "a", "rpush", "list", "b"}},
		{`rpush "my list" "Hello there!"`, []string{"rpush", "my list", "Hello there!"}},
		{`rpush list 'single "quoted"'`, []string{"rpush", "list", `single "quoted"`}},
		{`rpush list "esc\"aped"`, []string{"rpush", "list", `esc"aped`}},
		{`rpush list ""`, []string{"rpush", "list", ""}},
		{"", []string{}},
	} {
		res, err := sanitize(tc.in)
		require.NoError(t, err, "sanitize(%q)", tc.in)
		assert.Equal(t, tc.want, res, "sanitize(%q)", tc.in)
	}

	_, err := sanitize("rpush \"error")
	assert.True(t, errors.Is(err, ErrUnbalancedQuotes))
	_, err = sanitize(`rpush "a"b`)
	assert.True(t, errors.Is(err, ErrUnbalancedQuotes))
}

func TestParse(t *testing.T) {
	res, err := ParseCommand([]string{"LPUSH", "list", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, &Command{Kind: CmdLPush, Name: "lpush", Key: "list", Values: []string{"a", "b"}}, res)

	res, err = ParseCommand([]string{"keys"})
	require.NoError(t, err)
	assert.Equal(t, &Command{Kind: CmdKeys, Name: "keys", Pattern: "*"}, res)

	res, err = ParseCommand([]string{"auth", "secret"})
	require.NoError(t, err)
	assert.Equal(t, AuthOptions{Password: "secret"}, res.Auth)

	res, err = ParseCommand([]string{"auth", "bill", "secret"})
	require.NoError(t, err)
	assert.Equal(t, AuthOptions{User: "bill", Password: "secret"}, res.Auth)

	res, err = ParseCommand([]string{"hello", "3", "auth", "bill", "secret"})
	require.NoError(t, err)
	assert.Equal(t, CmdHello, res.Kind)

	res, err = ParseCommand([]string{"del", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Keys)

	res, err = ParseCommand([]string{"ping"})
	require.NoError(t, err)
	assert.Empty(t, res.Values)

	res, err = ParseCommand([]string{"ping", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{""}, res.Values)
}

func TestParseListCommands(t *testing.T) {
	res, err := ParseCommand([]string{"lpop", "list"})
	require.NoError(t, err)
	assert.Equal(t, &Command{Kind: CmdLPop, Name: "lpop", Key: "list"}, res)

	res, err = ParseCommand([]string{"rpop", "list", "3"})
	require.NoError(t, err)
	assert.Equal(t, &Command{Kind: CmdRPop, Name: "rpop", Key: "list", Count: 3}, res)

	res, err = ParseCommand([]string{"lrange", "list", "0", "-1"})
	require.NoError(t, err)
	assert.Equal(t, &Command{Kind: CmdLRange, Name: "lrange", Key: "list", Start: 0, Stop: -1}, res)

	res, err = ParseCommand([]string{"lset", "list", "-1", "x"})
	require.NoError(t, err)
	assert.Equal(t, &Command{Kind: CmdLSet, Name: "lset", Key: "list", Index: -1, Value: "x"}, res)

	for name, kind := range map[string]CommandType{
		"llen":   CmdLLen,
		"lfront": CmdLFront,
		"lback":  CmdLBack,
		"qpop":   CmdQueuePop,
		"qlen":   CmdQueueLen,
		"qpeek":  CmdQueuePeek,
	} {
		res, err := ParseCommand([]string{name, "key"})
		require.NoError(t, err, name)
		assert.Equal(t, &Command{Kind: kind, Name: name, Key: "key"}, res)
	}

	res, err = ParseCommand([]string{"qadd", "queue", "1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, &Command{Kind: CmdQueueAdd, Name: "qadd", Key: "queue", Values: []string{"1", "2", "3"}}, res)
}

func TestParseErrors(t *testing.T) {
	_, err := ParseCommand(nil)
	assert.True(t, errors.Is(err, ErrEmptyCommand))

	_, err = ParseCommand([]string{"sadd", "set", "x"})
	assert.EqualError(t, err, "ERR unknown command 'sadd'")

	_, err = ParseCommand([]string{"lpush", "list"})
	assert.EqualError(t, err, "ERR wrong number of arguments for 'lpush' command")

	_, err = ParseCommand([]string{"lrange", "list", "a", "1"})
	assert.True(t, errors.Is(err, ErrNotInt))

	_, err = ParseCommand([]string{"lpop", "list", "0"})
	assert.True(t, errors.Is(err, ErrNotPositive))

	_, err = ParseCommand([]string{"auth"})
	assert.Error(t, err)
}
