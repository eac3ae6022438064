package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Totarae/bookmarks/internal/client"
	"github.com/Totarae/bookmarks/internal/model"
)

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list active bookmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.app()
			if err != nil {
				return err
			}
			if err := app.Refresh(cmd.Context()); err != nil {
				return err
			}
			return c.printList(app.Bookmarks())
		},
	}
}

func (c *cli) deletedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deleted",
		Short: "list bookmarks in the trash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := client.NewAPI(c.flags.server, c.flags.session, nil)
			if err != nil {
				return err
			}
			list, err := api.ListDeleted(cmd.Context())
			if err != nil {
				return err
			}
			return c.printList(list)
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add TITLE URL",
		Short: "add a bookmark",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.app()
			if err != nil {
				return err
			}
			b, err := app.Create(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return c.printBookmark("Bookmark created", b)
		},
	}
}

func (c *cli) editCmd() *cobra.Command {
	var title, rawURL string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "change title and/or url of a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := client.NewAPI(c.flags.server, c.flags.session, nil)
			if err != nil {
				return err
			}
			var t, u *string
			if cmd.Flags().Changed("title") {
				t = &title
			}
			if cmd.Flags().Changed("url") {
				u = &rawURL
			}
			b, err := api.Update(cmd.Context(), args[0], t, u)
			if err != nil {
				return err
			}
			return c.printBookmark("Bookmark updated", b)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&rawURL, "url", "u", "", "new url")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "move a bookmark to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.app()
			if err != nil {
				return err
			}
			done, err := app.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !done {
				fmt.Fprintln(c.out, "Cancelled.")
				return nil
			}
			fmt.Fprintln(c.out, "Bookmark deleted")
			return nil
		},
	}
}

func (c *cli) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore ID",
		Short: "restore a bookmark from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := client.NewAPI(c.flags.server, c.flags.session, nil)
			if err != nil {
				return err
			}
			b, err := api.Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printBookmark("Bookmark restored", b)
		},
	}
}

func (c *cli) signOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "revoke the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.app()
			if err != nil {
				return err
			}
			done, err := app.SignOut(cmd.Context())
			if err != nil {
				return err
			}
			if done {
				fmt.Fprintln(c.out, "Signed out")
			} else {
				fmt.Fprintln(c.out, "Cancelled.")
			}
			return nil
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "print bookmark changes as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.app()
			if err != nil {
				return err
			}
			if err := app.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := c.printList(app.Bookmarks()); err != nil {
				return err
			}
			return app.Watch(cmd.Context(), func(change model.Change, st client.State) {
				if c.flags.json {
					_ = c.printJSON(change)
					return
				}
				if change.Record == nil {
					fmt.Fprintf(c.out, "%s (%d active)\n", change.Type, len(st.Bookmarks))
					return
				}
				fmt.Fprintf(c.out, "%s %s %s (%d active)\n", change.Type, change.Record.Title, change.Record.URL, len(st.Bookmarks))
			})
		},
	}
}
