package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Totarae/bookmarks/internal/client"
	"github.com/Totarae/bookmarks/internal/model"
)

type rootFlags struct {
	server  string
	session string
	yes     bool
	json    bool
	verbose bool
}

// cli общее состояние команд.
type cli struct {
	flags rootFlags
	in    *bufio.Reader
	out   io.Writer
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: bufio.NewReader(in), out: out}

	rootCmd := &cobra.Command{
		Use:           "bookmarksctl",
		Short:         "Manage private bookmarks from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&c.flags.server, "server", envOr("BOOKMARKS_SERVER", "http://localhost:8080"), "server base URL")
	pf.StringVar(&c.flags.session, "session", os.Getenv("BOOKMARKS_SESSION"), "session cookie value")
	pf.BoolVarP(&c.flags.yes, "yes", "y", false, "do not ask for confirmation")
	pf.BoolVar(&c.flags.json, "json", false, "print JSON")
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "verbose mode")

	rootCmd.AddCommand(
		c.listCmd(),
		c.deletedCmd(),
		c.addCmd(),
		c.editCmd(),
		c.deleteCmd(),
		c.restoreCmd(),
		c.signOutCmd(),
		c.watchCmd(),
	)
	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *cli) app() (*client.App, error) {
	api, err := client.NewAPI(c.flags.server, c.flags.session, nil)
	if err != nil {
		return nil, err
	}
	logger := zap.NewNop()
	if c.flags.verbose {
		logger, _ = zap.NewDevelopment()
	}
	return client.NewApp(api, client.ConfirmFunc(c.confirm), nil, logger), nil
}

// confirm спрашивает y/N; --yes отвечает за пользователя.
func (c *cli) confirm(prompt string) bool {
	if c.flags.yes {
		return true
	}
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (c *cli) printList(list []*model.Bookmark) error {
	if c.flags.json {
		return c.printJSON(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(c.out, "No bookmarks.")
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, b := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ID, b.Title, b.URL, b.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func (c *cli) printBookmark(message string, b *model.Bookmark) error {
	if c.flags.json {
		return c.printJSON(b)
	}
	fmt.Fprintf(c.out, "%s: %s %s (%s)\n", message, b.Title, b.URL, b.ID)
	return nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
