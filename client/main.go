package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

// Send a single command to a memo server and print the reply, e.g.
//
//	client rpush list a b c
//	client lrange list 0 -1
func main() {
	addr := pflag.StringP("addr", "a", "localhost:5678", "Server address")
	password := pflag.String("password", "", "Password for authentication")
	timeout := pflag.Duration("timeout", 5*time.Second, "Request timeout")
	pflag.Parse()

	if pflag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: client [flags] command [args...]")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	memo := redis.NewClient(&redis.Options{
		Addr:     *addr,
		Password: *password,
	})
	defer memo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	args := make([]any, pflag.NArg())
	for i, arg := range pflag.Args() {
		args[i] = arg
	}

	res, err := memo.Do(ctx, args...).Result()
	switch {
	case err == redis.Nil:
		fmt.Println("(nil)")
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	default:
		printReply(res, "")
	}
}

func printReply(v any, indent string) {
	switch v := v.(type) {
	case []any:
		if len(v) == 0 {
			fmt.Println(indent + "(empty array)")
			return
		}
		for i, el := range v {
			fmt.Printf("%s%d) ", indent, i+1)
			printReply(el, "")
		}
	case int64:
		fmt.Printf("%s(integer) %d\n", indent, v)
	case nil:
		fmt.Println(indent + "(nil)")
	default:
		fmt.Printf("%s%v\n", indent, v)
	}
}
