package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) getStatus() string {
	if name := a.auth.Username(); name != "" {
		return fmt.Sprintf("(%s)", name)
	}
	return ""
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to SealDrop CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
