package main

import (
	"os"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/juju/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultHost       = "localhost"
	DefaultPort       = "5678"
	DefaultUser       = "default"
	DefaultLogLevel   = "INFO"
	DefaultMaxBulkLen = "512MB"
)

const ErrUnsupportedType = errors.ConstError("ERR Protocol error: expected an array of bulk strings")

type ServerOptions struct {
	Host        string
	Port        string
	AuthEnabled bool
	User        string
	Password    string
	LogLevel    string
	MaxBulkLen  datasize.ByteSize
}

// AuthRequired reports whether clients have to AUTH before running
// commands. A server without a password never asks.
func (o *ServerOptions) AuthRequired() bool {
	return o.AuthEnabled && o.Password != ""
}

// Read options from command line flags, MEMO_* environment variables and
// an optional config file, in that order of precedence.
func getServerOptions(args []string) (*ServerOptions, error) {
	fs := pflag.NewFlagSet("memo", pflag.ContinueOnError)
	fs.String("config", "", "Config file (yaml, toml or json)")
	fs.String("host", DefaultHost, "Host to bind the server to")
	fs.StringP("port", "p", DefaultPort, "Port to run server")
	fs.Bool("noauth", false, "Disable authentication")
	fs.StringP("user", "u", DefaultUser, "User for authentication")
	fs.String("password", "", "Password for authentication, empty disables it")
	fs.String("log-level", DefaultLogLevel, "Log level (TRACE, DEBUG, INFO, WARNING, ERROR)")
	fs.String("max-bulk-len", DefaultMaxBulkLen, "Largest bulk string accepted from clients")
	if err := fs.Parse(args); err != nil {
		return nil, errors.Trace(err)
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Trace(err)
	}
	v.SetEnvPrefix("memo")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		if !FileExists(file) {
			return nil, errors.NotFoundf("config file %q", file)
		}
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "reading config file %q", file)
		}
	}

	maxBulkLen, err := datasize.ParseString(v.GetString("max-bulk-len"))
	if err != nil {
		return nil, errors.Annotatef(err, "invalid max-bulk-len %q", v.GetString("max-bulk-len"))
	}

	return &ServerOptions{
		Host:        v.GetString("host"),
		Port:        v.GetString("port"),
		AuthEnabled: !v.GetBool("noauth"),
		User:        v.GetString("user"),
		Password:    v.GetString("password"),
		LogLevel:    strings.ToUpper(v.GetString("log-level")),
		MaxBulkLen:  maxBulkLen,
	}, nil
}

// Convert a parsed request to command arguments. Inline requests arrive
// as a single string and are split like a shell would.
func requestArgs(req any) ([]string, error) {
	switch req := req.(type) {
	case string:
		return sanitize(req)
	case []any:
		args := make([]string, len(req))
		for i, v := range req {
			s, ok := v.(string)
			if !ok {
				return nil, ErrUnsupportedType
			}
			args[i] = s
		}
		return args, nil
	}

	return nil, ErrUnsupportedType
}

// Check if a given file path exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !errors.Is(err, os.ErrNotExist)
}
