package telemetry

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/HendryAvila/nexus/internal/updater"
)

const gitScopeName = "github.com/HendryAvila/nexus/git"

// InstrumentedRunner wraps updater.Runner with a span per git command and
// nexus.git.* metrics. Use WrapRunner to create one.
type InstrumentedRunner struct {
	inner  updater.Runner
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapRunner returns r decorated with OTel instrumentation. When telemetry
// is disabled, r is returned as-is.
func WrapRunner(r updater.Runner) updater.Runner {
	if !Enabled() {
		return r
	}
	return newInstrumentedRunner(r)
}

func newInstrumentedRunner(r updater.Runner) *InstrumentedRunner {
	m := Meter(gitScopeName)
	ops, _ := m.Int64Counter("nexus.git.commands",
		metric.WithDescription("Total git commands executed"),
	)
	dur, _ := m.Float64Histogram("nexus.git.command.duration",
		metric.WithDescription("Git command duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("nexus.git.errors",
		metric.WithDescription("Total failed git commands"),
	)
	return &InstrumentedRunner{
		inner:  r,
		tracer: Tracer(gitScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

// Run implements updater.Runner.
func (r *InstrumentedRunner) Run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	sub := "git"
	if len(args) > 0 {
		sub = args[0]
	}
	attrs := []attribute.KeyValue{attribute.String("git.subcommand", sub)}

	ctx, span := r.tracer.Start(ctx, "git."+sub,
		trace.WithAttributes(append(attrs, attribute.String("git.args", strings.Join(args, " ")))...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()
	r.ops.Add(ctx, 1, metric.WithAttributes(attrs...))

	start := time.Now()
	out, err := r.inner.Run(ctx, timeout, args...)
	r.dur.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	return out, err
}
