package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/lipidflow-cli/internal/sankey"
)

// ErrRunNotFound is returned by LoadRun and DeleteRun for unknown IDs.
var ErrRunNotFound = errors.New("run not found")

// Run is one persisted preparation.
type Run struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	InputPath  string             `json:"input_path,omitempty"`
	Columns    sankey.Columns     `json:"columns"`
	Thresholds map[string]float64 `json:"thresholds,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`

	Grouped []sankey.GroupedFlowRecord `json:"grouped,omitempty"`
	Flows   []sankey.FlowRecord        `json:"flows,omitempty"`
	Colors  []sankey.NodeColor         `json:"colors,omitempty"`
}

// Graph rebuilds the link graph of the run's grouped flows.
func (r *Run) Graph() *sankey.Graph { return sankey.BuildGraph(r.Grouped) }

// RunFromDataset captures a dataset and its node colors as a Run ready for SaveRun.
func RunFromDataset(name, inputPath string, ds *sankey.Dataset, thresholds sankey.Thresholds, colors sankey.ColorAssignment) Run {
	th := map[string]float64{}
	for _, col := range ds.Columns.Stages() {
		th[col] = thresholds.For(col)
	}
	return Run{
		Name:       name,
		InputPath:  inputPath,
		Columns:    ds.Columns,
		Thresholds: th,
		Grouped:    ds.Grouped,
		Flows:      ds.Flows,
		Colors:     colors.Pairs(),
	}
}

// SaveRun stores r in one transaction and returns its new ID.
func (d *DB) SaveRun(ctx context.Context, r Run) (string, error) {
	id := uuid.NewString()
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	th, err := json.Marshal(r.Thresholds)
	if err != nil {
		return "", fmt.Errorf("encoding thresholds: %w", err)
	}

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, input_path, start_column, mid_column, end_column, value_column, thresholds, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.Name, r.InputPath, r.Columns.Start, r.Columns.Mid, r.Columns.End, r.Columns.Value, string(th), created.UnixMilli())
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	for i, g := range r.Grouped {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO grouped_flows (run_id, idx, source_label, target_label, value, ratio) VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, g.SourceLabel, g.TargetLabel, g.Value, g.Ratio); err != nil {
			return "", fmt.Errorf("inserting grouped flow %d: %w", i, err)
		}
	}
	for i, f := range r.Flows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO flow_records (run_id, idx, key, row_id, source_label, target_label, source_node, target_node, value, row_ratio, ratio)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, f.Key, f.RowID, f.SourceLabel, f.TargetLabel, f.SourceNode, f.TargetNode, f.Value, f.RowRatio, f.Ratio); err != nil {
			return "", fmt.Errorf("inserting flow record %d: %w", i, err)
		}
	}
	for i, c := range r.Colors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO node_colors (run_id, idx, label, color) VALUES (?, ?, ?, ?)`,
			id, i, c.Label, c.Color); err != nil {
			return "", fmt.Errorf("inserting color %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// ListRuns returns run headers, newest first. Flow and color rows are not loaded.
func (d *DB) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, name, input_path, start_column, mid_column, end_column, value_column, thresholds, created_at
		 FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r       Run
		th      string
		created int64
	)
	if err := s.Scan(&r.ID, &r.Name, &r.InputPath, &r.Columns.Start, &r.Columns.Mid, &r.Columns.End, &r.Columns.Value, &th, &created); err != nil {
		return r, err
	}
	if err := json.Unmarshal([]byte(th), &r.Thresholds); err != nil {
		return r, fmt.Errorf("decoding thresholds of run %s: %w", r.ID, err)
	}
	r.CreatedAt = time.UnixMilli(created)
	return r, nil
}

// LoadRun returns the run with the given ID including its flows and colors.
func (d *DB) LoadRun(ctx context.Context, id string) (*Run, error) {
	row := d.conn.QueryRowContext(ctx,
		`SELECT id, name, input_path, start_column, mid_column, end_column, value_column, thresholds, created_at
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}

	if r.Grouped, err = d.loadGrouped(ctx, id); err != nil {
		return nil, err
	}
	if r.Flows, err = d.loadFlows(ctx, id); err != nil {
		return nil, err
	}
	if r.Colors, err = d.loadColors(ctx, id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (d *DB) loadGrouped(ctx context.Context, id string) ([]sankey.GroupedFlowRecord, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT idx, source_label, target_label, value, ratio FROM grouped_flows WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("loading grouped flows: %w", err)
	}
	defer rows.Close()
	var out []sankey.GroupedFlowRecord
	for rows.Next() {
		var g sankey.GroupedFlowRecord
		if err := rows.Scan(&g.Index, &g.SourceLabel, &g.TargetLabel, &g.Value, &g.Ratio); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (d *DB) loadFlows(ctx context.Context, id string) ([]sankey.FlowRecord, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT idx, key, row_id, source_label, target_label, source_node, target_node, value, row_ratio, ratio
		 FROM flow_records WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("loading flow records: %w", err)
	}
	defer rows.Close()
	var out []sankey.FlowRecord
	for rows.Next() {
		var f sankey.FlowRecord
		if err := rows.Scan(&f.Index, &f.Key, &f.RowID, &f.SourceLabel, &f.TargetLabel, &f.SourceNode, &f.TargetNode, &f.Value, &f.RowRatio, &f.Ratio); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (d *DB) loadColors(ctx context.Context, id string) ([]sankey.NodeColor, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT label, color FROM node_colors WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("loading colors: %w", err)
	}
	defer rows.Close()
	var out []sankey.NodeColor
	for rows.Next() {
		var c sankey.NodeColor
		if err := rows.Scan(&c.Label, &c.Color); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and, through cascading keys, its flows and colors.
func (d *DB) DeleteRun(ctx context.Context, id string) error {
	res, err := d.conn.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
