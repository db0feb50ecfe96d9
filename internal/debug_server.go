package internal

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"roster-lab/repositories"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key      string
	Type     string
	EntityID string
	Status   string
	Members  string
	Counter  string
	Drift    bool
	Detail   string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// NewDebugServer serves a read-only view of the store on /inspect.
// Rosters are decoded so drift shows up at a glance; other keys are listed raw.
func NewDebugServer(db *badger.DB, port int, statsProvider StatsProvider, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "roster:"
		}

		data := PageData{Prefix: prefix, Stats: make(map[string]any)}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		err := db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				key := string(item.Key())
				if err := item.Value(func(val []byte) error {
					data.Items = append(data.Items, MapRow(key, val))
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Warn("Inspect scan failed", "prefix", prefix, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	return &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", port),
		Handler: mux,
	}
}

// MapRow decodes roster keys and falls back to a raw row for anything else.
func MapRow(key string, val []byte) InspectRow {
	if strings.HasPrefix(key, "roster:") {
		if ros, err := repositories.DecodeRoster(val); err == nil {
			return InspectRow{
				Key:      key,
				Type:     string(ros.Kind),
				EntityID: ros.ID,
				Status:   string(ros.Status),
				Members:  strconv.Itoa(ros.TrueCount()) + "/" + strconv.Itoa(ros.Capacity),
				Counter:  strconv.Itoa(ros.MemberCount),
				Drift:    ros.HasDrift(),
				Detail:   ros.Name,
			}
		}
	}
	return DefaultMapper(key, val)
}

func DefaultMapper(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:      key,
		Type:     "RAW",
		EntityID: "--------",
		Status:   "-",
		Members:  "-",
		Counter:  "-",
		Detail:   "Size: " + strconv.Itoa(len(val)) + " bytes",
	}
	if len(parts) >= 2 {
		row.Type = strings.ToUpper(parts[0])
		row.EntityID = parts[1]
	}
	return row
}
