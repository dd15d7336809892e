package main

import (
	"context"

	"giftscout-backend/cmd/giftscout-cli/commands"
	"giftscout-backend/lib/telemetry"
)

func main() {
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
