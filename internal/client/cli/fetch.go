package cli

import (
	"context"
	"fmt"
	"log"
)

// Fetch downloads a package via a presigned URL, opens it, and writes
// the decrypted file into the download directory.
// Usage: fetch <id>
func (a *App) Fetch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Println("Usage: fetch <id>")
		return nil
	}

	priv, err := a.auth.PrivateKey()
	if err != nil {
		log.Println(err.Error())
		return err
	}

	out, err := a.packages.Fetch(ctx, args[0], priv, false)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Saved %s to %s\n", out.Filename, out.Path)
	if out.Verification.Verified {
		fmt.Println("Integrity and signature verified")
	} else {
		fmt.Printf("WARNING: verification failed (hash ok: %v, signature ok: %v)\n",
			out.Verification.HashValid, out.Verification.SignatureValid)
	}
	return nil
}

// URL prints a direct, temporary download URL for a package.
// Usage: url <id>
func (a *App) URL(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Println("Usage: url <id>")
		return nil
	}

	url, err := a.packages.PresignURL(ctx, args[0])
	if err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Println(url)
	return nil
}
