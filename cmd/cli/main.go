// talklog - KakaoTalk chat export parser
//
// talklog extracts dated messages from exported chat transcripts, tags them
// with keyword tables and reports the results.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ccollicutt/talklog/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
