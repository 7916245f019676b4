package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/netir/internal/ir"
)

// ErrNotFound is returned when no graph matches the requested ID.
var ErrNotFound = errors.New("graph not found")

// ErrAmbiguousID is returned when an ID prefix matches more than one graph.
var ErrAmbiguousID = errors.New("graph id prefix is ambiguous")

// GraphSummary is one row of ListGraphs.
type GraphSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	IRVersion string `json:"ir_version"`
	OpCount   int    `json:"op_count"`
	HasArena  bool   `json:"has_arena"`
}

// ImportRecord is one provenance row: a graph imported from a source.
type ImportRecord struct {
	ID      string `json:"id"`
	GraphID string `json:"graph_id"`
	Source  string `json:"source"`
	Seq     int64  `json:"seq"`
}

// WriteNetDef stores a frozen graph under its content hash and returns the
// hash. Uses ON CONFLICT(id) DO NOTHING, so storing the same graph again
// is a no-op.
func (s *Store) WriteNetDef(ctx context.Context, net *ir.NetDef) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write graph: begin: %w", err)
	}
	defer tx.Rollback()

	id, err := writeNetDef(ctx, tx, net)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write graph: commit: %w", err)
	}
	return id, nil
}

// Import stores a graph and records where it came from, atomically.
func (s *Store) Import(ctx context.Context, net *ir.NetDef, source string) (ImportRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportRecord{}, fmt.Errorf("import graph: begin: %w", err)
	}
	defer tx.Rollback()

	graphID, err := writeNetDef(ctx, tx, net)
	if err != nil {
		return ImportRecord{}, err
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM imports`).Scan(&seq); err != nil {
		return ImportRecord{}, fmt.Errorf("import graph: next seq: %w", err)
	}
	rec := ImportRecord{ID: s.ids.Generate(), GraphID: graphID, Source: source, Seq: seq}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO imports (id, graph_id, source, seq)
		VALUES (?, ?, ?, ?)
	`, rec.ID, rec.GraphID, rec.Source, rec.Seq); err != nil {
		return ImportRecord{}, fmt.Errorf("import graph: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ImportRecord{}, fmt.Errorf("import graph: commit: %w", err)
	}
	slog.Debug("imported graph", "id", graphID, "import_id", rec.ID, "source", source)
	return rec, nil
}

func writeNetDef(ctx context.Context, tx *sql.Tx, net *ir.NetDef) (string, error) {
	id, err := ir.GraphID(net)
	if err != nil {
		return "", fmt.Errorf("write graph: %w", err)
	}
	body, err := json.Marshal(net)
	if err != nil {
		return "", fmt.Errorf("write graph: marshal: %w", err)
	}

	name, _ := net.Name()
	version, _ := net.Version()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO graphs (id, name, version, ir_version, op_count, has_arena, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, name, version, ir.IRVersion, net.OpSize(), net.HasMemArena(), string(body))
	if err != nil {
		return "", fmt.Errorf("write graph: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		slog.Debug("graph already stored", "id", id)
		return id, nil
	}

	for i, t := range net.Tensors() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tensors (graph_id, ordinal, name, data_type, byte_size, digest)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, i, t.Name(), t.DataType().String(), t.ByteSize(), ir.TensorDigest(t)); err != nil {
			return "", fmt.Errorf("write graph: tensor %q: %w", t.Name(), err)
		}
	}
	slog.Debug("stored graph", "id", id, "name", name, "ops", net.OpSize(), "tensors", net.TensorSize())
	return id, nil
}

// ReadNetDef loads a graph by ID and verifies that its content still
// hashes to that ID.
func (s *Store) ReadNetDef(ctx context.Context, id string) (*ir.NetDef, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM graphs WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read graph %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read graph %s: %w", id, err)
	}

	var net ir.NetDef
	if err := json.Unmarshal([]byte(body), &net); err != nil {
		return nil, fmt.Errorf("read graph %s: %w", id, err)
	}
	if got := ir.MustGraphID(&net); got != id {
		return nil, fmt.Errorf("read graph %s: stored body hashes to %s", id, got)
	}
	return &net, nil
}

// ResolveID expands a unique ID prefix to a full graph ID.
func (s *Store) ResolveID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", fmt.Errorf("resolve graph id: %w", ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM graphs
		WHERE substr(id, 1, ?) = ?
		ORDER BY id COLLATE BINARY ASC
		LIMIT 2
	`, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("resolve graph id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("resolve graph id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve graph id: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("resolve graph id %q: %w", prefix, ErrNotFound)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("resolve graph id %q: %w", prefix, ErrAmbiguousID)
	}
}

// ListGraphs returns every stored graph ordered by name, then ID.
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListGraphs(ctx context.Context) ([]GraphSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, version, ir_version, op_count, has_arena
		FROM graphs
		ORDER BY name COLLATE BINARY ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer rows.Close()

	graphs := []GraphSummary{}
	for rows.Next() {
		var g GraphSummary
		if err := rows.Scan(&g.ID, &g.Name, &g.Version, &g.IRVersion, &g.OpCount, &g.HasArena); err != nil {
			return nil, fmt.Errorf("scan graph: %w", err)
		}
		graphs = append(graphs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graphs: %w", err)
	}
	return graphs, nil
}

// ListImports returns the import history of a graph in seq order.
func (s *Store) ListImports(ctx context.Context, graphID string) ([]ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, graph_id, source, seq
		FROM imports
		WHERE graph_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, graphID)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	records := []ImportRecord{}
	for rows.Next() {
		var r ImportRecord
		if err := rows.Scan(&r.ID, &r.GraphID, &r.Source, &r.Seq); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}
	return records, nil
}

// GraphsWithTensor returns the IDs of graphs holding a tensor whose bytes
// hash to digest (see ir.TensorDigest).
func (s *Store) GraphsWithTensor(ctx context.Context, digest string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT graph_id FROM tensors
		WHERE digest = ? AND digest != ''
		ORDER BY graph_id COLLATE BINARY ASC
	`, digest)
	if err != nil {
		return nil, fmt.Errorf("graphs with tensor: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan graph id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graph ids: %w", err)
	}
	return ids, nil
}

// DeleteGraph removes a graph together with its tensor and import rows.
func (s *Store) DeleteGraph(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM graphs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete graph %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete graph %s: %w", id, ErrNotFound)
	}
	return nil
}
