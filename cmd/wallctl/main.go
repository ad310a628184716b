// Command wallctl is a small operator CLI over the REST API.
//
//	wallctl [-url URL] health
//	wallctl [-url URL] products [-q text] [-limit n]
//	wallctl [-url URL] track <order-number> <email>
//
// The base URL defaults to BACKEND_URL, API_URL, NEXT_PUBLIC_BACKEND_URL or
// NEXT_PUBLIC_API_URL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"wallapi/internal/client"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

var errUsage = errors.New("usage: wallctl [-url URL] [-lang tr|en] health | products [-q text] [-limit n] | track <order-number> <email>")

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("wallctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", "", "API base URL")
	lang := fs.String("lang", "tr", "response language")
	timeout := fs.Duration("timeout", 30*time.Second, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, errUsage)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	c := client.New(*baseURL, client.WithLanguage(*lang))

	var err error
	switch cmd, rest := fs.Arg(0), fs.Args()[1:]; cmd {
	case "health":
		err = health(ctx, c, stdout)
	case "products":
		err = products(ctx, c, rest, stdout, stderr)
	case "track":
		err = track(ctx, c, rest, stdout)
	default:
		err = errUsage
	}

	if errors.Is(err, errUsage) {
		fmt.Fprintln(stderr, errUsage)
		return 2
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func health(ctx context.Context, c *client.Client, w io.Writer) error {
	status, err := c.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, status)
	return nil
}

func products(ctx context.Context, c *client.Client, args []string, w, stderr io.Writer) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	fs.SetOutput(stderr)
	q := fs.String("q", "", "search text")
	limit := fs.Int("limit", 12, "page size")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	page, err := c.Products(ctx, *q, *limit, 0)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tNAME\tPRICE\tSTOCK")
	for _, p := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.Slug, p.Name, p.Price.StringFixed(2), p.Stock)
	}
	fmt.Fprintf(tw, "\t\t%d of %d\t\n", len(page.Items), page.Total)
	return tw.Flush()
}

func track(ctx context.Context, c *client.Client, args []string, w io.Writer) error {
	if len(args) != 2 {
		return errUsage
	}
	o, err := c.TrackOrder(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s  %s  %s %s\n", o.OrderNumber, o.Status, o.Total.StringFixed(2), o.CreatedAt.Format("2006-01-02 15:04"))
	for _, it := range o.Items {
		fmt.Fprintf(w, "  %dx %s\n", it.Quantity, it.ProductName)
	}
	return nil
}
