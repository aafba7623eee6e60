package main

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/juju/errors"
)

func ErrUnknownCmd(cmd string) error {
	return errors.Errorf("ERR unknown command '%s'", cmd)
}

func ErrInvalidNArg(cmd string) error {
	return errors.Errorf("ERR wrong number of arguments for '%s' command", cmd)
}

const (
	ErrNotInt           = errors.ConstError("ERR value is not an integer or out of range")
	ErrNotPositive      = errors.ConstError("ERR value is out of range, must be positive")
	ErrUnbalancedQuotes = errors.ConstError("ERR unbalanced quotes in request")
	ErrEmptyCommand     = errors.ConstError("ERR empty command")
)

type CommandType = byte

const (
	// Server commands
	CmdVersion CommandType = iota
	CmdPing
	CmdEcho
	CmdQuit
	CmdAuth
	CmdHello
	CmdKeys
	CmdDbSize
	CmdFlushAll
	CmdDel
	CmdExists
	CmdType
	// Lists
	CmdLPush
	CmdRPush
	CmdLPop
	CmdRPop
	CmdLLen
	CmdLRange
	CmdLSet
	CmdLFront
	CmdLBack
	// Queues
	CmdQueueAdd
	CmdQueuePop
	CmdQueueLen
	CmdQueuePeek
)

type AuthOptions struct {
	User     string
	Password string
}

type Command struct {
	Kind   CommandType
	Name   string
	Key    string
	Keys   []string
	Value  string
	Values []string

	Pattern string      // keys
	Count   int         // lpop, rpop; 0 when not given
	Index   int         // lset
	Start   int         // lrange
	Stop    int         // lrange
	Auth    AuthOptions // auth
}

func ParseCommand(args []string) (*Command, error) {
	argc := len(args)
	if argc == 0 {
		return nil, ErrEmptyCommand
	}

	cmd := strings.ToLower(args[0])
	switch cmd {
	case "version":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdVersion, Name: cmd}, nil
	case "ping":
		if argc > 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		// Values tells an empty message apart from no message.
		return &Command{Kind: CmdPing, Name: cmd, Values: args[1:]}, nil
	case "echo":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdEcho, Name: cmd, Value: args[1]}, nil
	case "quit":
		return &Command{Kind: CmdQuit, Name: cmd}, nil
	case "auth":
		switch argc {
		case 2:
			return &Command{Kind: CmdAuth, Name: cmd, Auth: AuthOptions{Password: args[1]}}, nil
		case 3:
			return &Command{Kind: CmdAuth, Name: cmd, Auth: AuthOptions{User: args[1], Password: args[2]}}, nil
		}
		return nil, ErrInvalidNArg(cmd)
	case "hello":
		// Only RESP2 is spoken; the arguments do not matter.
		return &Command{Kind: CmdHello, Name: cmd}, nil
	case "keys":
		if argc > 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		keys := &Command{Kind: CmdKeys, Name: cmd, Pattern: "*"}
		if argc == 2 {
			keys.Pattern = args[1]
		}
		return keys, nil
	case "dbsize":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdDbSize, Name: cmd}, nil
	case "flushall":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdFlushAll, Name: cmd}, nil
	case "del", "exists":
		if argc < 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		kind := CmdDel
		if cmd == "exists" {
			kind = CmdExists
		}
		return &Command{Kind: kind, Name: cmd, Keys: args[1:]}, nil
	case "type":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdType, Name: cmd, Key: args[1]}, nil
	case "lpush", "rpush", "qadd":
		if argc < 3 {
			return nil, ErrInvalidNArg(cmd)
		}
		kind := map[string]CommandType{"lpush": CmdLPush, "rpush": CmdRPush, "qadd": CmdQueueAdd}[cmd]
		return &Command{Kind: kind, Name: cmd, Key: args[1], Values: args[2:]}, nil
	case "lpop", "rpop":
		if argc != 2 && argc != 3 {
			return nil, ErrInvalidNArg(cmd)
		}
		kind := CmdLPop
		if cmd == "rpop" {
			kind = CmdRPop
		}
		pop := &Command{Kind: kind, Name: cmd, Key: args[1]}
		if argc == 3 {
			count, err := parseInt(args[2])
			if err != nil {
				return nil, err
			}
			if count <= 0 {
				return nil, ErrNotPositive
			}
			pop.Count = count
		}
		return pop, nil
	case "lrange":
		if argc != 4 {
			return nil, ErrInvalidNArg(cmd)
		}
		start, err := parseInt(args[2])
		if err != nil {
			return nil, err
		}
		stop, err := parseInt(args[3])
		if err != nil {
			return nil, err
		}
		return &Command{Kind: CmdLRange, Name: cmd, Key: args[1], Start: start, Stop: stop}, nil
	case "lset":
		if argc != 4 {
			return nil, ErrInvalidNArg(cmd)
		}
		index, err := parseInt(args[2])
		if err != nil {
			return nil, err
		}
		return &Command{Kind: CmdLSet, Name: cmd, Key: args[1], Index: index, Value: args[3]}, nil
	case "llen", "lfront", "lback", "qpop", "qlen", "qpeek":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		kind := map[string]CommandType{
			"llen":   CmdLLen,
			"lfront": CmdLFront,
			"lback":  CmdLBack,
			"qpop":   CmdQueuePop,
			"qlen":   CmdQueueLen,
			"qpeek":  CmdQueuePeek,
		}[cmd]
		return &Command{Kind: kind, Name: cmd, Key: args[1]}, nil
	}

	return nil, ErrUnknownCmd(cmd)
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrNotInt
	}
	return n, nil
}

func isWhitespace(b byte) bool {
	return unicode.IsSpace(rune(b))
}

// sanitize splits an inline request into arguments. Single or double
// quotes group words; a backslash escapes the next character inside
// quotes.
func sanitize(message string) ([]string, error) {
	out := []string{}
	i := 0

	for i < len(message) {
		c := message[i]
		if isWhitespace(c) {
			i++
			continue
		}

		if c == '"' || c == '\'' {
			term := c
			i++
			var sb strings.Builder
			closed := false
			for i < len(message) {
				c = message[i]
				i++
				if c == '\\' && i < len(message) {
					sb.WriteByte(message[i])
					i++
					continue
				}
				if c == term {
					closed = true
					break
				}
				sb.WriteByte(c)
			}

			if !closed {
				return nil, ErrUnbalancedQuotes
			}
			if i < len(message) && !isWhitespace(message[i]) {
				return nil, ErrUnbalancedQuotes
			}

			out = append(out, sb.String())
			continue
		}

		start := i
		for i < len(message) && !isWhitespace(message[i]) {
			i++
		}
		out = append(out, message[start:i])
	}

	return out, nil
}
