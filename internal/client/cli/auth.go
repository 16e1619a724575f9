package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sealdrop/sealdrop/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password and creates an account.
// A key pair named after the account is provisioned in the keyring; only
// the public half leaves the machine.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	out, err := a.auth.Register(ctx, userName, string(password))
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	fmt.Printf("Success! Your key fingerprint: %s\n", out.Fingerprint)
	return nil
}

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Login(ctx, userName, string(password)); err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	log.Printf("Login successful")
	return nil
}

// Logout drops the session.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout()
	return nil
}

// Whoami prints the account name and key fingerprint.
func (a *App) Whoami(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Not logged in")
		return nil
	}
	fp, err := a.auth.Fingerprint()
	if err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Printf("%s (fingerprint %s)\n", a.auth.Username(), fp)
	return nil
}
