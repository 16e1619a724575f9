package cli

import (
	"context"
	"fmt"
	"log"
)

// Send seals the given file for a recipient and uploads it.
// Usage: send <file> <recipient>
func (a *App) Send(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Println("Usage: send <file> <recipient>")
		return nil
	}
	path, recipient := args[0], args[1]

	priv, err := a.auth.PrivateKey()
	if err != nil {
		log.Println(err.Error())
		return err
	}

	out, err := a.packages.Send(ctx, path, recipient, priv)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Sent %s to %s (package %s)\n", path, recipient, out.PackageID)
	fmt.Printf("Recipient key fingerprint: %s\n", out.Fingerprint)
	return nil
}
