package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

// Keygen creates a named key pair in the local keyring.
func (a *App) Keygen(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter key pair name", os.Stdout)
	if err != nil {
		return err
	}

	pair, err := a.keyring.Generate(name)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Generated key pair %q\n", name)
	fmt.Println(pair.PublicKey)
	return nil
}

// Keys lists the key pairs stored in the local keyring.
func (a *App) Keys(ctx context.Context) error {
	entries, err := a.keyring.List()
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No key pairs yet, use 'keygen'")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s\t%s\n", e.Name, e.Fingerprint)
	}
	return nil
}
