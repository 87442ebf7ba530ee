// Package inference classifies customer RFM profiles against the fitted
// scaler and clustering artifacts.
package inference

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/harperclay/rfmflow/internal/cleaning"
	"github.com/harperclay/rfmflow/internal/cluster"
	"github.com/harperclay/rfmflow/internal/common"
	"github.com/harperclay/rfmflow/internal/model"
	"github.com/harperclay/rfmflow/internal/rfm"
	"github.com/harperclay/rfmflow/internal/scale"
)

// Context bundles the persisted scaler, clustering model and segment
// catalog. Build it once at startup and share it by reference: it is
// immutable and safe for concurrent use. Predictions never refit either
// model.
type Context struct {
	scaler  *scale.StandardScaler
	model   *cluster.Model
	catalog model.Catalog
	policy  cleaning.Policy
	runID   string
}

// NewContext validates the loaded artifact pair and wraps it with segment
// metadata and the cleaning policy used for raw-transaction inference.
func NewContext(scaler *scale.StandardScaler, m *cluster.Model, catalog model.Catalog, policy cleaning.Policy, runID string) (*Context, error) {
	if scaler == nil {
		return nil, fmt.Errorf("%w: scaler", common.ErrNotFitted)
	}
	if m == nil || len(m.Centroids) == 0 {
		return nil, fmt.Errorf("%w: clustering model", common.ErrNotFitted)
	}
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}

	return &Context{
		scaler:  scaler,
		model:   m,
		catalog: catalog,
		policy:  policy,
		runID:   runID,
	}, nil
}

// RunID returns the training run that produced the loaded artifacts.
func (c *Context) RunID() string {
	return c.runID
}

// Clusters returns the number of clusters in the loaded model.
func (c *Context) Clusters() int {
	return c.model.K
}

// Catalog returns the segment metadata attached to this context.
func (c *Context) Catalog() model.Catalog {
	return c.catalog
}

// Result is a single classified customer profile.
type Result struct {
	RFM     model.RFMRecord `json:"rfm"`
	Segment model.Segment   `json:"segment"`
	Cluster int             `json:"cluster"`
}

// PredictRFM classifies a direct RFM triple. Out-of-domain values are
// rejected with a ValidationError, never clamped.
func (c *Context) PredictRFM(record model.RFMRecord) (*Result, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	scaled := c.scaler.TransformVector(record.Vector())
	id := c.model.Predict(scaled)

	slog.Debug("classified customer profile",
		"recency", record.Recency,
		"frequency", record.Frequency,
		"monetary", record.Monetary,
		"cluster", id)

	return &Result{
		RFM:     record,
		Cluster: id,
		Segment: c.catalog.Lookup(id),
	}, nil
}

// PredictTransactions classifies one customer from their raw transaction
// history, applying the same cleaning and aggregation as training. A zero
// ref defaults to the current time: recency must measure how long the
// customer has been quiet, so the reference can never come from their own
// last purchase.
func (c *Context) PredictTransactions(txns []model.Transaction, ref time.Time) (*Result, error) {
	if ref.IsZero() {
		ref = time.Now().UTC()
	}
	if len(txns) == 0 {
		return nil, common.NewValidationError("transactions", "at least one transaction is required")
	}

	valid, report := cleaning.Clean(txns, c.policy)
	if len(valid) == 0 {
		return nil, common.NewValidationError("transactions",
			fmt.Sprintf("no valid sale lines after cleaning (%d dropped)", report.Dropped()))
	}

	records, err := rfm.Compute(valid, ref)
	if err != nil {
		if errors.Is(err, common.ErrNoTransactions) {
			return nil, common.NewValidationError("transactions", "no valid sale lines")
		}
		return nil, err
	}
	if len(records) != 1 {
		return nil, common.NewValidationError("transactions",
			fmt.Sprintf("expected a single customer, found %d", len(records)))
	}

	return c.PredictRFM(records[0])
}

// Swapper holds the live inference context and supports replacing it
// atomically on artifact reload. Readers always observe a complete
// context; the loaded pair is never mutated in place.
type Swapper struct {
	ptr atomic.Pointer[Context]
}

// NewSwapper creates a swapper seeded with an initial context, which may
// be nil when artifacts are not yet available.
func NewSwapper(ctx *Context) *Swapper {
	s := &Swapper{}
	if ctx != nil {
		s.ptr.Store(ctx)
	}
	return s
}

// Load returns the current context, or nil if none is loaded.
func (s *Swapper) Load() *Context {
	return s.ptr.Load()
}

// Swap replaces the current context.
func (s *Swapper) Swap(ctx *Context) {
	s.ptr.Store(ctx)
}
