package static

import (
	"html"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sjanel/aeronet-go/httpdate"
)

// listDirectory reads dir's entries, filtering hidden names unless
// cfg.ShowHiddenFiles, sorting directories before files and then
// lexically by name, and truncating to cfg.MaxEntriesToList if set.
func listDirectory(dir string, cfg Config) ([]DirectoryEntry, bool, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, false, err
	}

	entries := make([]DirectoryEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if !cfg.ShowHiddenFiles && isHiddenName(name) {
			continue
		}
		entry := DirectoryEntry{Name: name, IsDir: de.IsDir()}
		if info, err := de.Info(); err == nil {
			entry.LastModified = info.ModTime()
			if !entry.IsDir {
				entry.SizeKnown = true
				entry.Size = info.Size()
			}
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})

	truncated := false
	if cfg.MaxEntriesToList > 0 && len(entries) > cfg.MaxEntriesToList {
		entries = entries[:cfg.MaxEntriesToList]
		truncated = true
	}

	return entries, truncated, nil
}

func isHiddenName(name string) bool {
	return strings.HasPrefix(name, ".")
}

// renderDefaultListing builds the built-in HTML directory index.
func renderDefaultListing(requestPath string, entries []DirectoryEntry, truncated bool, customCSS string) []byte {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>Index of ")
	b.WriteString(html.EscapeString(requestPath))
	b.WriteString("</title>\n<style>")
	if customCSS != "" {
		b.WriteString(customCSS)
	} else {
		b.WriteString(defaultListingCSS)
	}
	b.WriteString("</style>\n</head>\n<body>\n<h1>Index of ")
	b.WriteString(html.EscapeString(requestPath))
	b.WriteString("</h1>\n<table>\n<thead><tr><th>Name</th><th>Size</th><th>Last Modified</th></tr></thead>\n<tbody>\n")

	if requestPath != "" && requestPath != "/" {
		b.WriteString(`<tr><td><a href="../" class="dir">..</a></td><td>-</td><td>-</td></tr>` + "\n")
	}

	for _, e := range entries {
		href := url.PathEscape(e.Name)
		if e.IsDir {
			href += "/"
		}
		b.WriteString(`<tr><td><a href="`)
		b.WriteString(href)
		b.WriteByte('"')
		if e.IsDir {
			b.WriteString(` class="dir"`)
		}
		b.WriteByte('>')
		b.WriteString(html.EscapeString(e.Name))
		b.WriteString("</a></td><td>")
		if e.SizeKnown && !e.IsDir {
			b.WriteString(formatSize(e.Size))
		} else {
			b.WriteByte('-')
		}
		b.WriteString("</td><td>")
		if e.LastModified.IsZero() {
			b.WriteByte('-')
		} else {
			b.WriteString(httpdate.Format(e.LastModified))
		}
		b.WriteString("</td></tr>\n")
	}

	b.WriteString("</tbody>\n</table>\n")
	if truncated {
		b.WriteString("<p>Listing truncated after ")
		b.WriteString(strconv.Itoa(len(entries)))
		b.WriteString(" entries.</p>\n")
	}
	b.WriteString("<footer>Served by aeronet</footer>\n</body>\n</html>\n")
	return []byte(b.String())
}

const defaultListingCSS = `
body{font-family:system-ui,-apple-system,BlinkMacSystemFont,"Segoe UI",sans-serif;margin:2rem;}
table{border-collapse:collapse;width:100%;max-width:960px;}
th,td{padding:0.3rem 0.6rem;text-align:left;border-bottom:1px solid #e0e0e0;}
a.dir::after{content:"/";}
`

// formatSize renders n bytes in binary units (KB = 1024 bytes, etc.),
// matching the one-decimal-under-10 rule of the algorithm this ports.
func formatSize(n int64) string {
	const unit = 1024
	units := []string{"B", "KB", "MB", "GB", "TB"}
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	size := float64(n)
	idx := 0
	for size >= unit && idx < len(units)-1 {
		size /= unit
		idx++
	}
	if size < 10 {
		return strconv.FormatFloat(size, 'f', 1, 64) + " " + units[idx]
	}
	return strconv.FormatFloat(size, 'f', 0, 64) + " " + units[idx]
}
