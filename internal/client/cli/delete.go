package cli

import (
	"context"
	"fmt"
	"log"
)

// Delete removes a package from the server.
// Usage: delete <id>
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Println("Usage: delete <id>")
		return nil
	}

	if err := a.packages.Delete(ctx, args[0]); err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Println("Deleted")
	return nil
}
