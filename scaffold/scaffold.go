// Package scaffold writes a starter seoshell configuration.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/afero"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// Data holds the template variables passed to every scaffold template.
type Data struct {
	ProjectName string
	SiteName    string
	SiteURL     string
	ContentBase string
	URLStyle    string
	Lang        string
}

func (d *Data) setDefaults() {
	if d.SiteName == "" {
		d.SiteName = toTitle(d.ProjectName)
	}
	if d.SiteURL == "" {
		d.SiteURL = "http://localhost:3000"
	}
	if d.ContentBase == "" {
		d.ContentBase = "https://example.com/blog/"
	}
	if d.URLStyle == "" {
		d.URLStyle = "query"
	}
	if d.Lang == "" {
		d.Lang = "en"
	}
}

// Write renders every template into dir and returns the created paths.
// Existing files are never overwritten.
func Write(fsys afero.Fs, dir string, data Data) ([]string, error) {
	if data.ProjectName == "" {
		data.ProjectName = filepath.Base(filepath.Clean(dir))
	}
	data.setDefaults()

	const root = "templates"
	var created []string
	err := fs.WalkDir(Templates, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		out := filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(rel, ".tmpl")))
		if path.Base(rel) == "dotenv.tmpl" {
			out = filepath.Join(filepath.Dir(out), ".env")
		}
		if d.IsDir() {
			return fsys.MkdirAll(out, 0o755)
		}

		if exists, err := afero.Exists(fsys, out); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("%s already exists", out)
		}

		src, err := Templates.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		tmpl, err := template.New(path.Base(p)).Option("missingkey=error").Parse(string(src))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", p, err)
		}

		f, err := fsys.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()
		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", p, err)
		}
		created = append(created, out)
		return nil
	})
	return created, err
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
