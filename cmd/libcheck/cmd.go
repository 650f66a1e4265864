// Command definitions for the libcheck CLI.
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
	}
}

func rootCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "libcheck",
		Usage:  "Track reading-list books and their library availability",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Tui,
		Commands: []*cli.Command{
			{
				Name:   "tui",
				Usage:  "Open the interactive dashboard (default)",
				Flags:  []cli.Flag{configFlag()},
				Action: r.Tui,
			},
			{
				Name:  "sync",
				Usage: "Import the reading list from its RSS feed",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "rss-url",
						Usage: "Feed URL (defaults to rss_url from config)",
					},
				},
				Action: r.Sync,
			},
			{
				Name:  "books",
				Usage: "List books with current availability",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.Books,
			},
			{
				Name:  "check",
				Usage: "Check availability for one book or all books",
				Flags: []cli.Flag{
					configFlag(),
					&cli.Int64Flag{
						Name:  "book",
						Usage: "Book ID to check (omit with --all)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Run the bulk check across all books",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Bypass the backend's freshness cache",
					},
				},
				Action: r.Check,
			},
			{
				Name:    "libraries",
				Aliases: []string{"lib"},
				Usage:   "Manage library catalog credentials",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List configured libraries",
						Flags:  []cli.Flag{configFlag()},
						Action: r.LibrariesList,
					},
					{
						Name:  "add",
						Usage: "Add a library catalog",
						Flags: []cli.Flag{
							configFlag(),
							&cli.StringFlag{Name: "name", Usage: "Display name", Required: true},
							&cli.StringFlag{Name: "url", Usage: "OverDrive base URL", Required: true},
							&cli.StringFlag{Name: "card", Usage: "Library card number"},
							&cli.BoolFlag{Name: "inactive", Usage: "Add without enabling checks"},
						},
						Action: r.LibrariesAdd,
					},
					{
						Name:  "update",
						Usage: "Update a library catalog",
						Flags: []cli.Flag{
							configFlag(),
							&cli.Int64Flag{Name: "id", Usage: "Library ID", Required: true},
							&cli.StringFlag{Name: "name", Usage: "Display name"},
							&cli.StringFlag{Name: "url", Usage: "OverDrive base URL"},
							&cli.StringFlag{Name: "card", Usage: "Library card number"},
							&cli.StringFlag{Name: "active", Usage: "Set active state (true/false)"},
						},
						Action: r.LibrariesUpdate,
					},
					{
						Name:    "remove",
						Aliases: []string{"rm"},
						Usage:   "Remove a library catalog",
						Flags: []cli.Flag{
							configFlag(),
							&cli.Int64Flag{Name: "id", Usage: "Library ID", Required: true},
						},
						Action: r.LibrariesRemove,
					},
				},
			},
			{
				Name:  "borrow",
				Usage: "Borrow a book from a library",
				Flags: []cli.Flag{
					configFlag(),
					&cli.Int64Flag{Name: "book", Usage: "Book ID", Required: true},
					&cli.Int64Flag{Name: "library", Usage: "Library ID", Required: true},
				},
				Action: r.Borrow,
			},
			{
				Name:  "hold",
				Usage: "Place a hold on a book at a library",
				Flags: []cli.Flag{
					configFlag(),
					&cli.Int64Flag{Name: "book", Usage: "Book ID", Required: true},
					&cli.Int64Flag{Name: "library", Usage: "Library ID", Required: true},
				},
				Action: r.Hold,
			},
		},
	}
}
