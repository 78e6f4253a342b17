// Package importer turns class file contents into a linked class graph.
// Files are decoded in parallel and registered with a Session; after a
// single barrier the graph is built on one goroutine.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/classgraph/java"
)

var (
	log    = commonlog.GetLogger("classgraph.importer")
	tracer = otel.Tracer("classgraph.importer")
)

// Input is one class file to import. URI identifies the file in the
// resulting Source; Checksum is recorded as given.
type Input struct {
	URI      string
	Content  []byte
	Checksum java.Checksum
}

// FileError is an input that was skipped because it could not be decoded.
type FileError struct {
	URI string
	Err error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.URI, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

type Result struct {
	SessionID  string
	Classes    *java.Classes
	FileErrors []*FileError
	Duration   time.Duration
}

// Degraded reports whether any input was skipped or the graph contains
// stubs or fallbacks.
func (r *Result) Degraded() bool {
	return len(r.FileErrors) > 0 || r.Classes.Report().Degraded()
}

type Importer struct {
	options Options
}

func New(opts ...Option) *Importer {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	options.normalize()
	return &Importer{options: options}
}

func (imp *Importer) Options() Options { return imp.options }

// Import decodes inputs, registers them and builds the class graph.
// Malformed files are skipped and listed in Result.FileErrors. Import fails
// when ctx is cancelled, when the resolver fails or when a type variable
// cannot be attributed to any declaring scope.
func (imp *Importer) Import(ctx context.Context, inputs []Input) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Importer.Import",
		trace.WithAttributes(
			attribute.Int("inputs", len(inputs)),
			attribute.Int("workers", imp.options.Workers),
		),
	)
	defer span.End()
	start := time.Now()

	session := NewSession(imp.options.Resolver)
	span.SetAttributes(attribute.String("session.id", session.ID()))

	fileErrors, err := imp.register(ctx, session, inputs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "registration failed")
		return nil, err
	}
	session.Seal()

	classes, err := imp.finalize(ctx, session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "finalization failed")
		return nil, err
	}

	result := &Result{
		SessionID:  session.ID(),
		Classes:    classes,
		FileErrors: fileErrors,
		Duration:   time.Since(start),
	}
	importDurationSeconds.Observe(result.Duration.Seconds())
	log.Infof("session %s: imported %d of %d inputs into %d classes in %s (%d skipped, %d stubs)",
		session.ID(), session.Len(), len(inputs), classes.Len(), result.Duration, len(fileErrors), len(classes.Report().Stubs))
	return result, nil
}

func (imp *Importer) register(ctx context.Context, session *Session, inputs []Input) ([]*FileError, error) {
	ctx, span := tracer.Start(ctx, "Importer.register")
	defer span.End()

	// Indexed by input position so the error list does not depend on
	// scheduling.
	skipped := make([]*FileError, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imp.options.Workers)
	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			in := &inputs[i]
			desc, err := ReadDescriptor(in.URI, in.Content)
			if err != nil {
				log.Warningf("skipping %s: %s", in.URI, err)
				filesTotal.WithLabelValues("malformed").Inc()
				skipped[i] = &FileError{URI: in.URI, Err: err}
				return nil
			}
			desc.Order = i
			desc.Source.Checksum = in.Checksum
			filesTotal.WithLabelValues("imported").Inc()
			return session.Register(desc)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var fileErrors []*FileError
	for _, fe := range skipped {
		if fe != nil {
			fileErrors = append(fileErrors, fe)
		}
	}
	span.SetAttributes(
		attribute.Int("registered", session.Len()),
		attribute.Int("skipped", len(fileErrors)),
	)
	return fileErrors, nil
}

func (imp *Importer) finalize(ctx context.Context, session *Session) (*java.Classes, error) {
	_, span := tracer.Start(ctx, "Importer.finalize")
	defer span.End()

	descriptors := session.Descriptors()
	opts := java.BuildOptions{MaxResolveDepth: imp.options.MaxResolveDepth}
	if imp.options.Resolver != nil {
		opts.Resolver = session
	}

	classes, err := java.Build(descriptors, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build class graph: %w", err)
	}

	resolved := len(classes.Imported()) - len(descriptors)
	stubs := len(classes.Report().Stubs)
	classesTotal.WithLabelValues("imported").Add(float64(len(descriptors)))
	classesTotal.WithLabelValues("resolved").Add(float64(resolved))
	classesTotal.WithLabelValues("stub").Add(float64(stubs))
	span.SetAttributes(
		attribute.Int("classes.imported", len(descriptors)),
		attribute.Int("classes.resolved", resolved),
		attribute.Int("classes.stubs", stubs),
	)
	return classes, nil
}
