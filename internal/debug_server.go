package internal

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Development aid: an HTML view over a badger key prefix. Not wired
// into the public API; enabled through INSPECT_PORT.

const inspectTemplate = `<!DOCTYPE html>
<html>
<head><title>chat-hub inspect</title>
<style>
body { font-family: monospace; margin: 2em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #999; padding: 4px 8px; text-align: left; }
th { background: #eee; }
</style>
</head>
<body>
<h1>Prefix: {{.Prefix}}</h1>
<form method="get"><input name="prefix" value="{{.Prefix}}"/><button>Scan</button></form>
<table>
<tr><th>Key</th><th>Namespace</th><th>Entity</th><th>Size</th></tr>
{{range .Items}}<tr><td>{{.Key}}</td><td>{{.Namespace}}</td><td>{{.EntityID}}</td><td>{{.Detail}}</td></tr>
{{end}}
</table>
</body>
</html>`

type InspectRow struct {
	Key       string
	Namespace string
	EntityID  string
	Detail    string
}

type PageData struct {
	Prefix string
	Items  []InspectRow
}

// StartInspectServer serves /inspect?prefix=channel: over the live
// store. Listens in the background; errors only surface in logs.
func StartInspectServer(db *badger.DB, port int) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.New("inspect").Parse(inspectTemplate))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "channel:"
		}

		data := PageData{Prefix: prefix}
		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapRow(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("localhost:%d", port), mux)
	}()
}

// mapRow splits keys like "msg:{channel}:{seq}:{id}" into displayable
// segments. Unknown layouts fall back to the raw key.
func mapRow(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:       key,
		Namespace: "default",
		EntityID:  "--------",
		Detail:    fmt.Sprintf("%d bytes", len(val)),
	}
	if len(parts) >= 2 {
		row.Namespace = parts[0]
		row.EntityID = parts[len(parts)-1]
		if len(row.EntityID) > 8 {
			row.EntityID = row.EntityID[:8]
		}
	}
	return row
}
