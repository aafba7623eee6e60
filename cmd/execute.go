package main

import (
	"crypto/subtle"

	"github.com/juju/errors"

	"skabillium/memolist/cmd/resp"
)

const (
	ErrNoAuth     = errors.ConstError("NOAUTH Authentication required.")
	ErrWrongPass  = errors.ConstError("WRONGPASS invalid username-password pair or user is disabled.")
	ErrAuthNoPass = errors.ConstError("ERR AUTH called without any password configured for the default user.")
	ErrNoProto    = errors.ConstError("NOPROTO this server only speaks RESP2")
)

// execute runs a parsed command and returns the reply to send back.
func (s *Server) execute(sess *session, cmd *Command) any {
	if !sess.authenticated {
		switch cmd.Kind {
		case CmdAuth, CmdHello, CmdQuit:
		default:
			return ErrNoAuth
		}
	}

	logger.Tracef("executing %s", cmd.Name)
	switch cmd.Kind {
	case CmdVersion:
		return "Memo server version " + MemoVersion
	case CmdPing:
		if len(cmd.Values) > 0 {
			return cmd.Values[0]
		}
		return resp.SimpleString("PONG")
	case CmdEcho:
		return cmd.Value
	case CmdQuit:
		return resp.OK
	case CmdAuth:
		return s.authenticate(sess, cmd.Auth)
	case CmdHello:
		return ErrNoProto
	case CmdKeys:
		keys, err := s.db.Keys(cmd.Pattern)
		if err != nil {
			return err
		}
		return keys
	case CmdDbSize:
		return s.db.DbSize()
	case CmdFlushAll:
		s.db.FlushAll()
		return resp.OK
	case CmdDel:
		return s.db.Del(cmd.Keys...)
	case CmdExists:
		return s.db.Exists(cmd.Keys...)
	case CmdType:
		return resp.SimpleString(s.db.Type(cmd.Key))
	case CmdLPush:
		return intReply(s.db.LPush(cmd.Key, cmd.Values...))
	case CmdRPush:
		return intReply(s.db.RPush(cmd.Key, cmd.Values...))
	case CmdLPop:
		if cmd.Count > 0 {
			return arrayReply(s.db.LPopN(cmd.Key, cmd.Count))
		}
		return bulkReply(s.db.LPop(cmd.Key))
	case CmdRPop:
		if cmd.Count > 0 {
			return arrayReply(s.db.RPopN(cmd.Key, cmd.Count))
		}
		return bulkReply(s.db.RPop(cmd.Key))
	case CmdLLen:
		return intReply(s.db.LLen(cmd.Key))
	case CmdLRange:
		return arrayReply(s.db.LRange(cmd.Key, cmd.Start, cmd.Stop))
	case CmdLSet:
		if err := s.db.LSet(cmd.Key, cmd.Index, cmd.Value); err != nil {
			return err
		}
		return resp.OK
	case CmdLFront:
		return bulkReply(s.db.LFront(cmd.Key))
	case CmdLBack:
		return bulkReply(s.db.LBack(cmd.Key))
	case CmdQueueAdd:
		return intReply(s.db.QAdd(cmd.Key, cmd.Values...))
	case CmdQueuePop:
		return bulkReply(s.db.QPop(cmd.Key))
	case CmdQueueLen:
		return intReply(s.db.QLen(cmd.Key))
	case CmdQueuePeek:
		return bulkReply(s.db.QPeek(cmd.Key))
	}

	return ErrUnknownCmd(cmd.Name)
}

func (s *Server) authenticate(sess *session, auth AuthOptions) any {
	if !s.options.AuthRequired() {
		return ErrAuthNoPass
	}

	user := auth.User
	if user == "" {
		user = s.options.User
	}
	userOk := subtle.ConstantTimeCompare([]byte(user), []byte(s.options.User)) == 1
	passOk := subtle.ConstantTimeCompare([]byte(auth.Password), []byte(s.options.Password)) == 1
	if !userOk || !passOk {
		logger.Warningf("failed authentication attempt for user %q", user)
		return ErrWrongPass
	}

	sess.authenticated = true
	return resp.OK
}

func intReply(n int, err error) any {
	if err != nil {
		return err
	}
	return n
}

func bulkReply(value string, found bool, err error) any {
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return value
}

// arrayReply sends a null array for a missing key, like Redis does for
// the counted pop variants.
func arrayReply(values []string, err error) any {
	if err != nil {
		return err
	}
	if values == nil {
		return resp.NilArray{}
	}
	return values
}
