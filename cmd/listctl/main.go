package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	infra "github.com/zots0127/docdesk/internal/infrastructure/repository"
	"github.com/zots0127/docdesk/pkg/listquery"
	"github.com/zots0127/docdesk/pkg/logging"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "listctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("listctl", flag.ContinueOnError)
	var (
		snapshotPath = fs.String("snapshot", "snapshot.json", "Snapshot JSON file")
		search       = fs.String("search", "", "Search term")
		fileType     = fs.String("file-type", listquery.All, "File extension filter")
		status       = fs.String("status", listquery.All, "Status value or name, e.g. APPROVED")
		sortKey      = fs.String("sort", string(listquery.DefaultSortKey), "Sort key")
		page         = fs.Int("page", 1, "Page number")
		pageSize     = fs.Int("page-size", listquery.DefaultPageSize, "Items per page")
		format       = fs.String("format", "table", "Output format: table or json")
		importDB     = fs.String("import-db", "", "Import the snapshot into this database instead of listing (sqlite path or postgres URL)")
		dbType       = fs.String("db-type", "sqlite", "Database type for -import-db: sqlite or postgres")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	repo := infra.NewFileSnapshotRepository(*snapshotPath, logging.Discard())
	snap, err := repo.Load(ctx)
	if err != nil {
		return err
	}

	if *importDB != "" {
		return importSnapshot(ctx, infra.Dialect(*dbType), *importDB, snap, stdout)
	}

	result := listquery.Run(snap.Projects, listquery.RawCriteria{
		SearchTerm:     *search,
		FileTypeFilter: *fileType,
		StatusFilter:   *status,
		SortKey:        *sortKey,
		Page:           *page,
		PageSize:       *pageSize,
	}, listquery.DefaultOptions())

	switch *format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "table":
		return printTable(stdout, result)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

func printTable(w io.Writer, result listquery.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tSTATUS\tFILES\tCREATED")
	for i, p := range result.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			result.StartIndex+i+1, p.ID, p.Name, p.Status, len(p.Files), p.CreatedAt.Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	first := result.StartIndex + 1
	if result.TotalItems == 0 {
		first = 0
	}
	_, err := fmt.Fprintf(w, "\nShowing %d-%d of %d (page %d/%d, sort %s)\n",
		first, result.EndIndex, result.TotalItems, result.Page.Page, result.TotalPages, result.Criteria.SortKey)
	return err
}
