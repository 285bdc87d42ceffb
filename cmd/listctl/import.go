package main

import (
	"context"
	"fmt"
	"io"

	"github.com/zots0127/docdesk/internal/domain/entities"
	infra "github.com/zots0127/docdesk/internal/infrastructure/repository"
)

// importSnapshot replaces the sql snapshot tables with snap
func importSnapshot(ctx context.Context, dialect infra.Dialect, dsn string, snap *entities.Snapshot, w io.Writer) error {
	db, err := infra.OpenDatabase(ctx, infra.DatabaseOptions{Dialect: dialect, DSN: dsn, MaxOpenConns: 1})
	if err != nil {
		return err
	}
	defer db.Close()

	repo := infra.NewSQLSnapshotRepository(db, dialect)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := repo.Import(ctx, snap); err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "Imported %d projects and %d orphan files\n", len(snap.Projects), len(snap.OrphanFiles))
	return err
}
