// Command inspect prints the accounts and messages stored in a relay's
// Badger directory. The database is opened read-only, so it can run next
// to a live server.
package main

import (
	"direct-chat/domain"
	"direct-chat/repositories"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
)

const timeLayout = "2006-01-02 15:04:05.000"

func main() {
	dbPath := flag.String("db", os.Getenv("BADGER_FILEPATH"), "Path to the relay's Badger directory")
	what := flag.String("show", "all", "What to print: users, messages or all")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("missing -db (or BADGER_FILEPATH)")
	}

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if err := inspect(os.Stdout, db, *what); err != nil {
		log.Fatal(err)
	}
}

func inspect(w io.Writer, db *badger.DB, what string) error {
	names := map[uuid.UUID]string{}
	users := newTable(w, "ID", "Username", "Created")
	err := repositories.ScanUsers(db, func(u domain.User) error {
		names[u.ID] = u.Username
		users.Append([]string{u.ID.String(), u.Username, u.CreatedAt.Format(timeLayout)})
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan users: %w", err)
	}

	switch what {
	case "users":
		users.Render()
	case "messages":
		return renderMessages(w, db, names)
	case "all":
		users.Render()
		fmt.Fprintln(w)
		return renderMessages(w, db, names)
	default:
		return fmt.Errorf("unknown -show value %q", what)
	}
	return nil
}

func renderMessages(w io.Writer, db *badger.DB, names map[uuid.UUID]string) error {
	table := newTable(w, "Key", "At", "From", "To", "Content")
	err := repositories.ScanMessages(db, func(key string, m domain.Message) error {
		table.Append([]string{
			key,
			m.CreatedAt.Format(timeLayout),
			displayName(names, m.SenderID),
			displayName(names, m.ReceiverID),
			m.Content,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan messages: %w", err)
	}
	table.Render()
	return nil
}

// displayName falls back to the short id for accounts missing from the scan.
func displayName(names map[uuid.UUID]string, id uuid.UUID) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id.String()[:8]
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
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
	return table
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
