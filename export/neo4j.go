// Package export loads an imported class graph into Neo4j.
package export

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/classgraph/java"
)

var log = commonlog.GetLogger("classgraph.export")

// DefaultBatchSize bounds the rows sent with one UNWIND statement.
const DefaultBatchSize = 1000

// Runner executes a single Cypher statement.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) error
}

// Neo4jRunner runs statements against a Neo4j database.
type Neo4jRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jRunner connects to Neo4j. An empty database selects the server
// default.
func NewNeo4jRunner(ctx context.Context, uri, user, password, database string) (*Neo4jRunner, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to %s: %w", uri, err)
	}
	return &Neo4jRunner{driver: driver, database: database}, nil
}

func (r *Neo4jRunner) Run(ctx context.Context, cypher string, params map[string]any) error {
	var opts []neo4j.ExecuteQueryConfigurationOption
	if r.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(r.database))
	}
	_, err := neo4j.ExecuteQuery(ctx, r.driver, cypher, params, neo4j.EagerResultTransformer, opts...)
	return err
}

// Close releases the underlying driver resources.
func (r *Neo4jRunner) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

const (
	loadClasses = `UNWIND $batch AS row
MERGE (c:JavaClass {name: row.name})
SET c.simple_name = row.simple, c.package = row.package, c.kind = row.kind,
    c.modifiers = row.modifiers, c.source = row.source, c.checksum = row.checksum,
    c.stub = false`

	loadMembers = `UNWIND $batch AS row
MERGE (m:JavaMember {key: row.key})
SET m.name = row.name, m.full_name = row.full_name, m.descriptor = row.descriptor,
    m.kind = row.kind, m.modifiers = row.modifiers
WITH m, row
MATCH (c:JavaClass {name: row.owner})
MERGE (c)-[:DECLARES]->(m)`

	loadDependencies = `UNWIND $batch AS row
MATCH (o:JavaClass {name: row.origin})
MERGE (t:JavaClass {name: row.target})
ON CREATE SET t.stub = row.stub
MERGE (o)-[:DEPENDS_ON {kind: row.kind}]->(t)`

	loadMemberAccesses = `UNWIND $batch AS row
MATCH (o:JavaMember {key: row.origin}), (t:JavaMember {key: row.target})
MERGE (o)-[r:ACCESSES {kind: row.kind, line: row.line}]->(t)`

	loadClassAccesses = `UNWIND $batch AS row
MATCH (o:JavaMember {key: row.origin})
MERGE (t:JavaClass {name: row.target})
ON CREATE SET t.stub = true
MERGE (o)-[r:ACCESSES {kind: row.kind, line: row.line}]->(t)
SET r.member = row.member`
)

// Exporter writes classes, members and their relationships through a Runner.
type Exporter struct {
	run       Runner
	batchSize int
}

func NewExporter(run Runner, batchSize int) *Exporter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Exporter{run: run, batchSize: batchSize}
}

// Clean removes every node written by a previous export.
func (e *Exporter) Clean(ctx context.Context) error {
	log.Info("cleaning existing class graph")
	for _, q := range []string{
		"MATCH (n:JavaMember) DETACH DELETE n",
		"MATCH (n:JavaClass) DETACH DELETE n",
	} {
		if err := e.run.Run(ctx, q, nil); err != nil {
			return fmt.Errorf("cleaning graph: %w", err)
		}
	}
	return nil
}

// CreateIndexes ensures the lookup indexes used by the export exist.
func (e *Exporter) CreateIndexes(ctx context.Context) error {
	for _, q := range []string{
		"CREATE INDEX java_class_name IF NOT EXISTS FOR (n:JavaClass) ON (n.name)",
		"CREATE INDEX java_member_key IF NOT EXISTS FOR (n:JavaMember) ON (n.key)",
	} {
		if err := e.run.Run(ctx, q, nil); err != nil {
			return fmt.Errorf("creating indexes: %w", err)
		}
	}
	return nil
}

// Stats counts the rows sent per statement.
type Stats struct {
	Classes        int
	Members        int
	Dependencies   int
	MemberAccesses int
	ClassAccesses  int
}

// Export writes the imported classes of the graph. Classes go first so
// relationship statements can match their endpoints.
func (e *Exporter) Export(ctx context.Context, classes *java.Classes) (Stats, error) {
	var stats Stats
	toMember, toClass := AccessRows(classes)
	steps := []struct {
		what  string
		query string
		rows  []Row
		count *int
	}{
		{"classes", loadClasses, ClassRows(classes), &stats.Classes},
		{"members", loadMembers, MemberRows(classes), &stats.Members},
		{"dependencies", loadDependencies, DependencyRows(classes), &stats.Dependencies},
		{"member accesses", loadMemberAccesses, toMember, &stats.MemberAccesses},
		{"class accesses", loadClassAccesses, toClass, &stats.ClassAccesses},
	}

	for _, step := range steps {
		log.Infof("loading %d %s", len(step.rows), step.what)
		if err := e.batch(ctx, step.query, step.rows); err != nil {
			return stats, fmt.Errorf("loading %s: %w", step.what, err)
		}
		*step.count = len(step.rows)
	}
	return stats, nil
}

func (e *Exporter) batch(ctx context.Context, query string, rows []Row) error {
	for start := 0; start < len(rows); start += e.batchSize {
		end := start + e.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := e.run.Run(ctx, query, map[string]any{"batch": rows[start:end]}); err != nil {
			return err
		}
	}
	return nil
}
