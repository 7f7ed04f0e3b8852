package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"forgerepo/internal/core"
	"forgerepo/internal/ports"
	"forgerepo/internal/types"
)

// DependencyIndexSQLiteAdapter persists the per-repository dependency
// index as a single SQLite file: one row per "author/name" key holding
// the JSON-encoded ordered release list. The serving API can answer
// point lookups against the file without scanning the whole index.
type DependencyIndexSQLiteAdapter struct {
	Checksum ports.ChecksumPort
}

func NewDependencyIndexSQLiteAdapter(checksum ports.ChecksumPort) DependencyIndexSQLiteAdapter {
	return DependencyIndexSQLiteAdapter{Checksum: checksum}
}

const depIndexSchema = `CREATE TABLE IF NOT EXISTS releases (
	module   TEXT PRIMARY KEY,
	releases TEXT NOT NULL
)`

func (a DependencyIndexSQLiteAdapter) Build(ctx context.Context, units []types.ContentUnit, repoPath string, dbPath string) error {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return indexWriteFailure(err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return indexWriteFailure(err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, depIndexSchema); err != nil {
		return indexWriteFailure(err)
	}

	// Accumulate records per key first so that versions keep the order
	// the units were presented in.
	keys := []string{}
	records := map[string][]types.ReleaseRecord{}
	for _, unit := range units {
		module := unit.Module
		checksum, err := a.Checksum.Checksum(unit.StoragePath)
		if err != nil {
			return err
		}
		key := module.ID().Key()
		if _, seen := records[key]; !seen {
			keys = append(keys, key)
		}
		records[key] = append(records[key], types.ReleaseRecord{
			File:         path.Join(repoPath, core.HostedRelativePath(module.Author, path.Base(unit.StoragePath))),
			Version:      module.Version,
			Dependencies: module.Dependencies,
			FileChecksum: checksum,
		})
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return indexWriteFailure(err)
	}
	for _, key := range keys {
		encoded, err := json.Marshal(records[key])
		if err != nil {
			tx.Rollback()
			return indexWriteFailure(err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO releases (module, releases) VALUES (?, ?)`, key, string(encoded)); err != nil {
			tx.Rollback()
			return indexWriteFailure(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return indexWriteFailure(err)
	}
	log.Debug().Str("db", dbPath).Int("modules", len(keys)).Msg("dependency index written")
	return nil
}

func (a DependencyIndexSQLiteAdapter) Lookup(dbPath string, moduleKey string) ([]types.ReleaseRecord, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open dependency index").
			WithCause(err)
	}
	defer db.Close()

	var encoded string
	err = db.QueryRow(`SELECT releases FROM releases WHERE module = ?`, moduleKey).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to query dependency index").
			WithCause(err)
	}
	var records []types.ReleaseRecord
	if err := json.Unmarshal([]byte(encoded), &records); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode dependency index record").
			WithCause(err)
	}
	return records, nil
}

func indexWriteFailure(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to write dependency index").
		WithCause(err)
}

var _ ports.DependencyIndexPort = DependencyIndexSQLiteAdapter{}
