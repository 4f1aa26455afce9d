package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/desertthunder/lyrx/internal/contact"
	"github.com/urfave/cli/v3"
)

// Contact sends a message to the maintainers, or redelivers pending ones with --retry.
func (r *Runner) Contact(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	if cmd.Bool("retry") {
		n, err := r.contact.RetryPending(ctx)
		if n > 0 {
			r.writePlain("✓ Delivered %d pending messages\n", n)
		}
		if err != nil {
			return fmt.Errorf("retry stopped: %w", err)
		}
		if n == 0 {
			r.writePlain("No pending messages.\n")
		}
		return nil
	}

	form := contact.Form{
		Name:    cmd.String("name"),
		Email:   cmd.String("email"),
		Message: cmd.String("message"),
	}

	msg, err := r.contact.Submit(ctx, form)
	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		names := make([]string, 0, len(verr.Fields))
		for name := range verr.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r.writePlain("  --%s: %s\n", name, verr.Fields[name])
		}
		return err
	case err != nil:
		if msg != nil && msg.ID != "" {
			r.writePlain("Message saved; run `lyrx contact --retry` to resend it.\n")
		}
		return err
	}

	return r.writePlain("Sent by %s!\n", msg.Email)
}
