// Command festctl runs admin dashboard tasks against a running API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Ragul198/Event/pkg/client"
)

const usage = `usage: festctl [flags] <command> [args]

commands:
  stats                             per-event registration totals
  roster <event-id>                 participants of an event
  remove <event-id> <registration>  delete a registration and print the remaining roster
  export <event-id>                 render a roster file (-format, -out)
`

func main() {
	var (
		base    string
		token   string
		format  string
		out     string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", envOr("FESTCTL_BASE", "http://localhost:8080/api/v1"), "API base URL including prefix")
	flag.StringVar(&token, "token", os.Getenv("FESTCTL_TOKEN"), "Admin access token")
	flag.StringVar(&format, "format", "csv", "Export format (csv or pdf)")
	flag.StringVar(&out, "out", "", "Write the downloaded export to this path")
	flag.DurationVar(&timeout, "timeout", 15*time.Second, "Request timeout")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	api := client.New(base, token, nil)
	if err := run(ctx, api, os.Stdout, args, format, out); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Redirect != "" {
			log.Printf("server redirected to %s", apiErr.Redirect)
		}
		log.Fatalf("%s: %v", args[0], err)
	}
}

func run(ctx context.Context, api *client.Client, w io.Writer, args []string, format, out string) error {
	switch args[0] {
	case "stats":
		stats, err := api.Stats(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "EVENT\tTOTAL\tMALE\tFEMALE\tOTHER")
		for _, s := range stats {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", s.Title, s.Total, s.Male, s.Female, s.Other)
		}
		return tw.Flush()
	case "roster":
		if len(args) != 2 {
			return fmt.Errorf("expected <event-id>")
		}
		roster, err := api.Roster(ctx, args[1])
		if err != nil {
			return err
		}
		return printRoster(w, roster)
	case "remove":
		if len(args) != 3 {
			return fmt.Errorf("expected <event-id> <registration-id>")
		}
		roster, err := api.Roster(ctx, args[1])
		if err != nil {
			return err
		}
		if err := api.RemoveFromRoster(ctx, roster, args[2]); err != nil {
			return err
		}
		return printRoster(w, roster)
	case "export":
		if len(args) != 2 {
			return fmt.Errorf("expected <event-id>")
		}
		file, err := api.Export(ctx, args[1], format)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s expires %s\n", file.URL, file.ExpiresAt.Format(time.RFC3339))
		if out == "" {
			return nil
		}
		dst, err := os.Create(out)
		if err != nil {
			return err
		}
		n, err := api.Download(ctx, file.URL, dst)
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote %d bytes to %s\n", n, out)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRoster(w io.Writer, roster *client.Roster) error {
	fmt.Fprintf(w, "%s (%d participants)\n", roster.EventTitle, len(roster.Participants))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REGISTRATION\tNAME\tEMAIL\tYEAR\tDEPARTMENT\tGENDER")
	for _, p := range roster.Participants {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.RegistrationID, p.Name, p.Email, p.Year, p.Department, p.Gender)
	}
	return tw.Flush()
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
