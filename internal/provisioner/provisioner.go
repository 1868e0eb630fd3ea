/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package provisioner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ocomsoft/fleetschema/internal/analyzer"
	"github.com/ocomsoft/fleetschema/internal/catalog"
	"github.com/ocomsoft/fleetschema/internal/errors"
	"github.com/ocomsoft/fleetschema/internal/parser"
	"github.com/ocomsoft/fleetschema/internal/providers"
	"github.com/ocomsoft/fleetschema/internal/state"
	"github.com/ocomsoft/fleetschema/internal/types"
	"github.com/ocomsoft/fleetschema/internal/validator"
)

// CheckpointStore persists the last completed state of a run
type CheckpointStore interface {
	Load() (*types.Checkpoint, error)
	Save(cp types.Checkpoint) error
}

// Options configures a Provisioner
type Options struct {
	Verbose bool
	// Out receives progress output, stdout when nil
	Out io.Writer
	// StrictDuplicateIndexes fails planning when an index name is defined more than once
	StrictDuplicateIndexes bool
	// StatementTimeout bounds each statement, 0 for no limit
	StatementTimeout time.Duration
	// Checkpoint enables resuming a run that failed part way, nil to disable
	Checkpoint CheckpointStore
}

// Provisioner materializes a schema script on one database
type Provisioner struct {
	provider providers.Provider
	opts     Options
	parser   *parser.Parser
	analyzer *analyzer.Analyzer
	out      io.Writer
}

func New(provider providers.Provider, opts Options) *Provisioner {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	a := analyzer.New(opts.Verbose)
	a.SetOutput(out)
	return &Provisioner{
		provider: provider,
		opts:     opts,
		parser:   parser.New(),
		analyzer: a,
		out:      out,
	}
}

// run carries the state of one Run call
type run struct {
	report      *types.Report
	fingerprint string
}

func (r *run) transition(s types.State) {
	r.report.State = s
	r.report.Transitions = append(r.report.Transitions, s)
}

// Run provisions script on q and validates the result against manifest. Tables are created
// only when none of the manifest tables exist yet, or when a matching checkpoint shows an
// earlier run stopped part way. Foreign keys and indexes are added only when absent, so
// repeating a successful run executes no statements. The first failing statement stops the
// run; nothing is rolled back.
func (p *Provisioner) Run(ctx context.Context, q catalog.Queryer, script string, manifest types.Manifest) (*types.Report, error) {
	r := &run{
		report:      &types.Report{Dialect: p.provider.Dialect()},
		fingerprint: state.Fingerprint(script, p.provider.Dialect()),
	}
	r.transition(types.StateUnchecked)

	plan, err := p.Plan(script, manifest)
	if err != nil {
		return p.fail(r, err)
	}
	r.report.Warnings = append(r.report.Warnings, plan.Warnings...)
	for _, w := range plan.Warnings {
		p.logf("Warning: %s\n", w)
	}

	cat := p.provider.Catalog(q)
	snapshot, err := catalog.Load(ctx, cat)
	if err != nil {
		return p.fail(r, err)
	}

	resume := p.shouldResume(r)
	if resume || !snapshot.AnyTable(manifest.Tables) {
		p.saveCheckpoint(r, types.StateUnchecked)
		for _, step := range plan.Tables {
			if resume && snapshot.HasTable(step.Object.Name) {
				r.report.Skipped = append(r.report.Skipped, step.Object)
				continue
			}
			if err := p.exec(ctx, q, r, step); err != nil {
				return p.fail(r, err)
			}
		}
		r.transition(types.StateTablesCreated)
	} else {
		p.logf("Existing tables found, skipping table creation\n")
		for _, step := range plan.Tables {
			r.report.Skipped = append(r.report.Skipped, step.Object)
		}
		r.transition(types.StateTablesSkipped)
	}
	p.saveCheckpoint(r, r.report.State)

	for _, step := range plan.Constraints {
		if snapshot.HasForeignKey(step.Object.Name) {
			r.report.Skipped = append(r.report.Skipped, step.Object)
			continue
		}
		if err := p.exec(ctx, q, r, step); err != nil {
			return p.fail(r, err)
		}
	}
	r.transition(types.StateConstraintsApplied)
	p.saveCheckpoint(r, r.report.State)

	for _, step := range plan.Indexes {
		if snapshot.HasIndex(step.Object.Name) {
			r.report.Skipped = append(r.report.Skipped, step.Object)
			continue
		}
		if err := p.exec(ctx, q, r, step); err != nil {
			return p.fail(r, err)
		}
	}
	r.transition(types.StateIndexesApplied)
	p.saveCheckpoint(r, r.report.State)

	after, err := catalog.Load(ctx, cat)
	if err != nil {
		return p.fail(r, err)
	}
	v := validator.New(cat, p.opts.Verbose)
	v.SetOutput(p.out)
	result, err := v.Compare(after, manifest)
	r.report.Missing = result.Missing
	if err != nil {
		return p.fail(r, err)
	}

	r.transition(types.StateValidated)
	r.report.OK = true
	p.saveCheckpoint(r, types.StateValidated)
	p.logf("Schema validated: %d created, %d already present\n", len(r.report.Created), len(r.report.Skipped))

	return r.report, nil
}

func (p *Provisioner) exec(ctx context.Context, q catalog.Queryer, r *run, step Step) error {
	if p.opts.StatementTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.StatementTimeout)
		defer cancel()
	}

	p.logf("Creating %s\n", step.Object)
	if _, err := q.ExecContext(ctx, step.SQL); err != nil {
		return errors.NewExecutionError(step.Phase, step.SQL, err)
	}
	r.report.Created = append(r.report.Created, step.Object)
	return nil
}

func (p *Provisioner) fail(r *run, err error) (*types.Report, error) {
	r.transition(types.StateFailed)
	r.report.FailureReason = err.Error()
	p.logf("Provisioning failed: %v\n", err)
	return r.report, err
}

// shouldResume reports whether a stored checkpoint belongs to this script and dialect and
// records a run that never reached validation
func (p *Provisioner) shouldResume(r *run) bool {
	if p.opts.Checkpoint == nil {
		return false
	}
	cp, err := p.opts.Checkpoint.Load()
	if err != nil {
		r.report.Warnings = append(r.report.Warnings, fmt.Sprintf("ignoring unreadable checkpoint: %v", err))
		return false
	}
	if cp == nil || cp.ScriptHash != r.fingerprint || cp.State == types.StateValidated {
		return false
	}
	p.logf("Resuming from checkpoint (last state %s)\n", cp.State)
	return true
}

func (p *Provisioner) saveCheckpoint(r *run, s types.State) {
	if p.opts.Checkpoint == nil {
		return
	}
	cp := types.Checkpoint{
		ScriptHash: r.fingerprint,
		Dialect:    p.provider.Dialect(),
		State:      s,
	}
	if err := p.opts.Checkpoint.Save(cp); err != nil {
		r.report.Warnings = append(r.report.Warnings, fmt.Sprintf("failed to save checkpoint: %v", err))
	}
}

func (p *Provisioner) logf(format string, args ...any) {
	if p.opts.Verbose {
		fmt.Fprintf(p.out, format, args...)
	}
}
