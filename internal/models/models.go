// Package models holds the JSON bodies the API returns.
package models

import (
	"wagedash/internal/engine"
	"wagedash/internal/views"
)

// ColumnMeta describes one column of a view table.
type ColumnMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ViewResponse is one assembled view with its rows in column order.
type ViewResponse struct {
	View      views.Kind             `json:"view"`
	Selection views.Selection        `json:"selection"`
	Columns   []ColumnMeta           `json:"columns"`
	Rows      [][]any                `json:"rows"`
	Empty     bool                   `json:"empty"`
	Merge     *engine.MergeStats     `json:"merge,omitempty"`
	Map       *views.MapSettings     `json:"map,omitempty"`
	Scatter   *views.ScatterSettings `json:"scatter,omitempty"`
	Bar       *views.BarSettings     `json:"bar,omitempty"`
	Range     *views.AxisRange       `json:"range,omitempty"`
}

// NewViewResponse flattens a view result for JSON.
func NewViewResponse(res *views.Result) ViewResponse {
	t := res.Table
	names := t.Columns()
	cols := make([]ColumnMeta, len(names))
	for i, name := range names {
		c, _ := t.Column(name)
		cols[i] = ColumnMeta{Name: name, Type: c.Kind().String()}
	}
	return ViewResponse{
		View:      res.View,
		Selection: res.Selection,
		Columns:   cols,
		Rows:      t.Records(),
		Empty:     res.Empty,
		Merge:     res.Merge,
		Map:       res.Map,
		Scatter:   res.Scatter,
		Bar:       res.Bar,
		Range:     res.Range,
	}
}

// APIError is the error payload.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	View    string `json:"view,omitempty"`
	Stage   string `json:"stage,omitempty"`
}

// ErrorResponse wraps APIError.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ViewStatus is the per-view entry of the all-views response. Exactly one
// of Result and Error is set.
type ViewStatus struct {
	View   views.Kind    `json:"view"`
	OK     bool          `json:"ok"`
	Result *ViewResponse `json:"result,omitempty"`
	Error  *APIError     `json:"error,omitempty"`
}

// AllViewsResponse lists every view computed for one selection.
type AllViewsResponse struct {
	Selection views.Selection `json:"selection"`
	Views     []ViewStatus    `json:"views"`
}

// DatasetStatus reports one input of the health check.
type DatasetStatus struct {
	Rows  int    `json:"rows"`
	Error string `json:"error,omitempty"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status   string                   `json:"status"`
	Datasets map[string]DatasetStatus `json:"datasets,omitempty"`
}
