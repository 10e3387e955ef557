package graph

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/reactome/goa-release/internal/models"
)

const (
	neo4jDialTimeout  = 10 * time.Second
	neo4jReadTimeout  = 60 * time.Second
	neo4jPoolSize     = 16
	neo4jAcquireLimit = 30 * time.Second
)

// rootLabel is carried by every instance node and backs the dbId index.
const rootLabel = "DatabaseObject"

// Labels and relationship types cannot be query parameters, so they are
// interpolated after this check.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Neo4jStore implements Store on a Neo4j graph where every instance is a node
// carrying dbId, schemaClass and displayName, instance-valued attributes are
// relationships named after the attribute (ordered by their "order" property),
// and scalar attributes are node properties.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jStore connects to Neo4j and verifies connectivity.
func NewNeo4jStore(uri, username, password, database string, logger *slog.Logger) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""), func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = neo4jPoolSize
		c.ConnectionAcquisitionTimeout = neo4jAcquireLimit
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating neo4j driver for %s: %w", ErrStoreAccess, uri, err)
	}

	dialCtx, cancel := context.WithTimeout(context.Background(), neo4jDialTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(dialCtx); err != nil {
		_ = driver.Close(context.Background())
		return nil, fmt.Errorf("%w: verifying neo4j connection at %s: %w", ErrStoreAccess, uri, err)
	}

	logger.Info("connected to Neo4j", "uri", uri, "database", database)

	return &Neo4jStore{
		driver:   driver,
		database: database,
		logger:   logger,
	}, nil
}

func (s *Neo4jStore) read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, neo4jReadTimeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer func() { _ = session.Close(ctx) }()

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreAccess, err)
	}
	return result.([]*neo4j.Record), nil
}

// FetchInstancesByClass matches on the class label; nodes carry one label per ancestor class.
func (s *Neo4jStore) FetchInstancesByClass(ctx context.Context, class string) ([]models.Instance, error) {
	if !identifierPattern.MatchString(class) {
		return nil, fmt.Errorf("invalid schema class %q", class)
	}
	cypher := fmt.Sprintf(`
		MATCH (n:%s)
		RETURN n.dbId AS dbId, n.schemaClass AS schemaClass, n.displayName AS displayName
		ORDER BY n.dbId`, class)

	records, err := s.read(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s instances: %w", class, err)
	}

	out := make([]models.Instance, 0, len(records))
	for _, rec := range records {
		out = append(out, recordInstance(rec.AsMap()))
	}
	s.logger.Debug("fetched instances", "class", class, "count", len(out))
	return out, nil
}

// AttributeValue returns the first value of attr or nil.
func (s *Neo4jStore) AttributeValue(ctx context.Context, inst models.Instance, attr string) (*models.Value, error) {
	values, err := s.AttributeValues(ctx, inst, attr)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return &values[0], nil
}

// AttributeValues prefers outgoing relationships named attr and falls back to the node property.
func (s *Neo4jStore) AttributeValues(ctx context.Context, inst models.Instance, attr string) ([]models.Value, error) {
	if !identifierPattern.MatchString(attr) {
		return nil, fmt.Errorf("invalid attribute name %q", attr)
	}
	records, err := s.read(ctx, attributeValuesQuery(attr), map[string]any{"dbId": inst.DBID, "attr": attr})
	if err != nil {
		return nil, fmt.Errorf("reading %s of %d: %w", attr, inst.DBID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	row := records[0].AsMap()
	if refs, ok := row["refs"].([]any); ok && len(refs) > 0 {
		values := make([]models.Value, 0, len(refs))
		for _, r := range refs {
			if m, ok := r.(map[string]any); ok {
				values = append(values, models.Ref(recordInstance(m)))
			}
		}
		return values, nil
	}
	return scalarValues(row["scalar"]), nil
}

// Referers follows attr relationships backwards.
func (s *Neo4jStore) Referers(ctx context.Context, inst models.Instance, attr string) ([]models.Instance, error) {
	if !identifierPattern.MatchString(attr) {
		return nil, fmt.Errorf("invalid attribute name %q", attr)
	}
	records, err := s.read(ctx, referersQuery(attr), map[string]any{"dbId": inst.DBID})
	if err != nil {
		return nil, fmt.Errorf("reading referers of %d via %s: %w", inst.DBID, attr, err)
	}

	out := make([]models.Instance, 0, len(records))
	for _, rec := range records {
		out = append(out, recordInstance(rec.AsMap()))
	}
	return out, nil
}

func attributeValuesQuery(attr string) string {
	return fmt.Sprintf(`
		MATCH (n:%[1]s {dbId: $dbId})
		OPTIONAL MATCH (n)-[r:%[2]s]->(m)
		WITH n, r, m ORDER BY r.order
		RETURN n[$attr] AS scalar,
		       collect(CASE WHEN m IS NULL THEN NULL
		               ELSE {dbId: m.dbId, schemaClass: m.schemaClass, displayName: m.displayName} END) AS refs`,
		rootLabel, attr)
}

func referersQuery(attr string) string {
	return fmt.Sprintf(`
		MATCH (m:%[1]s)-[:%[2]s]->(n:%[1]s {dbId: $dbId})
		RETURN DISTINCT m.dbId AS dbId, m.schemaClass AS schemaClass, m.displayName AS displayName
		ORDER BY dbId`, rootLabel, attr)
}

// Ping verifies connectivity.
func (s *Neo4jStore) Ping(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreAccess, err)
	}
	return nil
}

// Close closes the driver and its connection pool.
func (s *Neo4jStore) Close() error {
	return s.driver.Close(context.Background())
}

func recordInstance(m map[string]any) models.Instance {
	inst := models.Instance{
		Class:       textOf(m["schemaClass"]),
		DisplayName: textOf(m["displayName"]),
	}
	switch id := m["dbId"].(type) {
	case int64:
		inst.DBID = id
	case float64:
		inst.DBID = int64(id)
	case string:
		inst.DBID, _ = strconv.ParseInt(id, 10, 64)
	}
	return inst
}

// scalarValues flattens a node property that may be a single value or a list.
func scalarValues(v any) []models.Value {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]models.Value, 0, len(t))
		for _, e := range t {
			if e != nil {
				out = append(out, models.Scalar(textOf(e)))
			}
		}
		return out
	default:
		return []models.Value{models.Scalar(textOf(t))}
	}
}

func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
