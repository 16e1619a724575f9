package cli

import (
	"context"
	"fmt"
	"log"
)

// List prints the packages waiting for the logged-in user.
func (a *App) List(ctx context.Context) error {
	pkgs, err := a.packages.List(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if len(pkgs) == 0 {
		fmt.Println("No packages")
		return nil
	}
	for _, p := range pkgs {
		fmt.Printf("%s\t%s\t%d bytes\t%s\n", p.ID, p.OriginalFilename, p.Size, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// History prints the local send/receive log.
func (a *App) History(ctx context.Context) error {
	recs, err := a.packages.History(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if len(recs) == 0 {
		fmt.Println("No history yet")
		return nil
	}
	for _, r := range recs {
		status := "ok"
		if !r.Verified {
			status = "VERIFICATION FAILED"
		}
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", r.CreatedAt.Format("2006-01-02 15:04"), r.Direction, r.Counterparty, r.Filename, status)
	}
	return nil
}
