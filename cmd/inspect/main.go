package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Read-only table dump of the directory store. Opens the database with
// BypassLockGuard so it works while the gateway holds the lock.
func main() {
	dbPath := flag.String("db", "./badger", "Path to badger DB")
	prefix := flag.String("prefix", "conv:", "Prefix to scan (conv:, msg:, user:, project:, task:, session:)")
	flag.Parse()

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Value"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				table.Append([]string{string(item.Key()), rowKind(v), compactJSON(v)})
				count++
				return nil
			})
			if err != nil {
				fmt.Printf("Error reading key %s: %v\n", string(item.Key()), err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Scan failed: ", err)
	}

	table.Render()
	fmt.Printf("\n%d entries under %q\n", count, *prefix)
}

// rowKind colourises the conversation kind when the value carries one.
func rowKind(val []byte) string {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(val, &probe); err != nil || probe.Kind == "" {
		return "-"
	}
	switch probe.Kind {
	case "direct":
		return color.Cyan.Sprint(probe.Kind)
	case "project":
		return color.Green.Sprint(probe.Kind)
	case "task":
		return color.Yellow.Sprint(probe.Kind)
	default:
		return probe.Kind
	}
}

func compactJSON(val []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, val); err != nil {
		return fmt.Sprintf("<%d raw bytes>", len(val))
	}
	s := buf.String()
	if len(s) > 100 {
		s = s[:97] + "..."
	}
	return s
}
