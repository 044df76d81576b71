// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package viz owns the lifecycle of rendered charts.
package viz

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/chart"
	"github.com/jeranaias/siemspeak/internal/model"
)

var (
	// ErrEmptyTarget is returned when an operation names no chart id.
	ErrEmptyTarget = errors.New("chart target id is empty")

	// ErrNoChart is returned when no live chart exists for an id.
	ErrNoChart = errors.New("no live chart for id")
)

// =============================================================================
// HANDLE
// =============================================================================

// Handle binds a target id to its live chart instance and the data it was
// last drawn from.
type Handle struct {
	ID       string
	Kind     model.ChartKind
	Data     model.SeriesData
	Instance chart.Instance
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager is the registry of live charts. It is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	surface chart.Surface
	palette chart.Palette
	width   int
	height  int
	handles map[string]*Handle
	order   []string
	logger  *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithPalette sets the initial palette.
func WithPalette(p chart.Palette) Option {
	return func(m *Manager) { m.palette = p }
}

// WithSize sets the default chart size in terminal cells.
func WithSize(width, height int) Option {
	return func(m *Manager) {
		if width > 0 {
			m.width = width
		}
		if height > 0 {
			m.height = height
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates an empty registry drawing on surface.
func NewManager(surface chart.Surface, opts ...Option) *Manager {
	m := &Manager{
		surface: surface,
		palette: chart.DefaultPalette(),
		width:   chart.DefaultWidth,
		height:  chart.DefaultHeight,
		handles: make(map[string]*Handle),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RenderOne draws data as a chart of kind into id. A live chart already
// bound to id is destroyed first.
func (m *Manager) RenderOne(kind model.ChartKind, data model.SeriesData, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyTarget
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderLocked(kind, data.Clone(), id, m.width, m.height)
}

func (m *Manager) renderLocked(kind model.ChartKind, data model.SeriesData, id string, width, height int) error {
	m.destroyLocked(id)

	cfg := buildConfig(kind, data, m.palette, width, height)
	inst, err := m.surface.Create(id, cfg)
	if err != nil {
		return fmt.Errorf("create chart %s: %w", id, err)
	}
	m.handles[id] = &Handle{ID: id, Kind: kind, Data: data, Instance: inst}
	m.order = append(m.order, id)
	m.logger.Debug("chart created",
		zap.String("id", id),
		zap.String("kind", string(kind)),
		zap.String("type", string(cfg.Type)),
		zap.Int("points", data.Len()))
	return nil
}

// RenderPayload replaces every live chart with one chart per series in the
// payload. Series are drawn in ChartKinds order; a failing series does not
// stop the others.
func (m *Manager) RenderPayload(p *model.ResponsePayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.destroyAllLocked()
	if p == nil {
		return nil
	}

	var errs []error
	for _, kind := range p.ChartKinds() {
		if err := m.renderLocked(kind, p.ChartData[kind].Clone(), ChartID(kind), m.width, m.height); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Destroy tears down the chart bound to id. Unknown ids are ignored.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyLocked(id)
}

func (m *Manager) destroyLocked(id string) {
	h, ok := m.handles[id]
	if !ok {
		return
	}
	h.Instance.Destroy()
	delete(m.handles, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.logger.Debug("chart destroyed", zap.String("id", id))
}

// DestroyAll tears down every live chart. Calling it on an empty registry is
// a no-op.
func (m *Manager) DestroyAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyAllLocked()
}

func (m *Manager) destroyAllLocked() {
	for _, id := range append([]string(nil), m.order...) {
		m.destroyLocked(id)
	}
}

// RerenderAll destroys and recreates every live chart with palette, keeping
// each chart's id, kind, data and size. With nothing live only the palette
// changes.
func (m *Manager) RerenderAll(palette chart.Palette) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.palette = palette
	if len(m.order) == 0 {
		return nil
	}

	type redraw struct {
		handle        Handle
		width, height int
	}
	pending := make([]redraw, 0, len(m.order))
	for _, id := range m.order {
		h := m.handles[id]
		cfg := h.Instance.Config()
		pending = append(pending, redraw{handle: *h, width: cfg.Width, height: cfg.Height})
	}

	var errs []error
	for _, r := range pending {
		if err := m.renderLocked(r.handle.Kind, r.handle.Data, r.handle.ID, r.width, r.height); err != nil {
			errs = append(errs, err)
		}
	}
	m.logger.Debug("charts re-rendered", zap.String("palette", palette.Name), zap.Int("count", len(pending)))
	return errors.Join(errs...)
}

// Resize changes the drawn size of a live chart.
func (m *Manager) Resize(id string, width, height int) error {
	h, err := m.lookup(id)
	if err != nil {
		return err
	}
	return h.Instance.Resize(width, height)
}

// ResizeAll applies a new default size and resizes every live chart.
func (m *Manager) ResizeAll(width, height int) error {
	if width <= 0 || height <= 0 {
		return chart.ErrInvalidSize
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width, m.height = width, height

	var errs []error
	for _, id := range m.order {
		if err := m.handles[id].Instance.Resize(width, height); err != nil {
			errs = append(errs, fmt.Errorf("resize %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// View renders the chart bound to id as terminal text.
func (m *Manager) View(id string) (string, error) {
	h, err := m.lookup(id)
	if err != nil {
		return "", err
	}
	return h.Instance.Render()
}

// ViewAll renders every live chart in creation order, separated by a blank
// line.
func (m *Manager) ViewAll() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	parts := make([]string, 0, len(m.order))
	for _, id := range m.order {
		out, err := m.handles[id].Instance.Render()
		if err != nil {
			m.logger.Warn("chart render failed", zap.String("id", id), zap.Error(err))
			continue
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n\n")
}

// ExportImage serializes the chart bound to id as PNG.
func (m *Manager) ExportImage(id string) ([]byte, error) {
	h, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	data, err := h.Instance.PNG()
	if err != nil {
		return nil, fmt.Errorf("export image %s: %w", id, err)
	}
	return data, nil
}

// ExportTable returns the series behind the chart bound to id as CSV with a
// label,value header.
func (m *Manager) ExportTable(id string) (string, error) {
	h, err := m.lookup(id)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"label", "value"})
	for i := 0; i < h.Data.Len(); i++ {
		_ = w.Write([]string{h.Data.Labels[i], strconv.FormatFloat(h.Data.Values[i], 'f', -1, 64)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("export table %s: %w", id, err)
	}
	return buf.String(), nil
}

// lookup returns a copy of the handle bound to id.
func (m *Manager) lookup(id string) (Handle, error) {
	if strings.TrimSpace(id) == "" {
		return Handle{}, ErrEmptyTarget
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.handles[id]
	if !ok {
		return Handle{}, fmt.Errorf("%w: %s", ErrNoChart, id)
	}
	return *h, nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Get returns a copy of the handle bound to id.
func (m *Manager) Get(id string) (Handle, bool) {
	h, err := m.lookup(id)
	return h, err == nil
}

// Handles returns copies of every live handle in creation order.
func (m *Manager) Handles() []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Handle, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.handles[id])
	}
	return out
}

// IDs returns the live chart ids in creation order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// Count returns the number of live charts.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// Palette returns the palette new charts are drawn with.
func (m *Manager) Palette() chart.Palette {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.palette
}
