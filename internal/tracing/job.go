package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type TraceCarrier struct {
	TraceParent string `json:"trace_parent,omitempty"`
	TraceState  string `json:"trace_state,omitempty"`
}

func InjectTraceContext(ctx context.Context) TraceCarrier {
	carrier := TraceCarrier{}
	propagator := propagation.TraceContext{}

	mapCarrier := propagation.MapCarrier{}
	propagator.Inject(ctx, mapCarrier)

	carrier.TraceParent = mapCarrier.Get("traceparent")
	carrier.TraceState = mapCarrier.Get("tracestate")

	return carrier
}

func ExtractTraceContext(ctx context.Context, carrier TraceCarrier) context.Context {
	if carrier.TraceParent == "" {
		return ctx
	}

	propagator := propagation.TraceContext{}
	mapCarrier := propagation.MapCarrier{
		"traceparent": carrier.TraceParent,
		"tracestate":  carrier.TraceState,
	}

	return propagator.Extract(ctx, mapCarrier)
}

func StartJobSpan(ctx context.Context, resolution, jobID string) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, "transcode.process."+resolution,
		trace.WithSpanKind(trace.SpanKindConsumer),
	)
	span.SetAttributes(
		attribute.String("job.resolution", resolution),
		attribute.String("job.id", jobID),
	)
	return ctx, span
}

func StartJobEnqueueSpan(ctx context.Context, resolution string) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, "transcode.enqueue."+resolution,
		trace.WithSpanKind(trace.SpanKindProducer),
	)
	span.SetAttributes(
		attribute.String("job.resolution", resolution),
	)
	return ctx, span
}
