// Command shield360 runs the emergency alert relay.
package main

import (
	"context"

	"github.com/dalemusser/waffle/app"

	"github.com/drivershield/shield360/internal/app/bootstrap"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
