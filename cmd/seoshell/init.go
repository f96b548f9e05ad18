package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/satinau/seoshell/scaffold"
)

func runInit(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("init", stderr)
	var data scaffold.Data
	fs.StringVar(&data.SiteName, "name", "", "site name (default derived from the directory)")
	fs.StringVar(&data.SiteURL, "url", "", "public site URL")
	fs.StringVar(&data.ContentBase, "content", "", "content base URL")
	fs.StringVar(&data.URLStyle, "style", "query", `post URL style: "query" or "slug"`)
	fs.StringVar(&data.Lang, "lang", "", "site language")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	created, err := scaffold.Write(afero.NewOsFs(), dir, data)
	for _, p := range created {
		fmt.Fprintf(stdout, "  created %s\n", p)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "\nEdit contentBase in seoshell.yaml, then run 'seoshell build' or 'seoshell serve'.")
	return nil
}
