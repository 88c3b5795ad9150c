package layer

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/philipparndt/rectdraw/internal/feature"
	"github.com/philipparndt/rectdraw/internal/logger"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

const postgisWriteTimeout = 10 * time.Second

// PostGIS is a polygon layer stored in a PostGIS table
type PostGIS struct {
	db     *sql.DB
	schema string
	table  string
	column string
	multi  bool
	srid   int
	fields feature.Schema
}

// postgisTarget is the table selection carried in the layer URL
type postgisTarget struct {
	dsn    string
	schema string
	table  string
	column string
}

// parsePostGISURL splits the rectdraw specific query parameters
// (table, schema, column) from the connection DSN.
func parsePostGISURL(rawURL string) (postgisTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return postgisTarget{}, fmt.Errorf("invalid postgres url: %w", err)
	}
	q := u.Query()
	t := postgisTarget{
		schema: q.Get("schema"),
		table:  q.Get("table"),
		column: q.Get("column"),
	}
	if t.table == "" {
		return postgisTarget{}, fmt.Errorf("postgres url needs a table parameter")
	}
	if schema, table, ok := strings.Cut(t.table, "."); ok && t.schema == "" {
		t.schema, t.table = schema, table
	}
	if t.schema == "" {
		t.schema = "public"
	}
	q.Del("schema")
	q.Del("table")
	q.Del("column")
	u.RawQuery = q.Encode()
	t.dsn = u.String()
	return t, nil
}

// OpenPostGIS connects to the database and reads the table metadata
func OpenPostGIS(ctx context.Context, rawURL string) (*PostGIS, error) {
	target, err := parsePostGISURL(rawURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", target.dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	l := &PostGIS{db: db, schema: target.schema, table: target.table, column: target.column}
	if err := l.loadMetadata(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.L().Info("opened postgis layer", "table", l.qualifiedName(), "column", l.column, "srid", l.srid, "multi", l.multi)
	return l, nil
}

func (l *PostGIS) loadMetadata(ctx context.Context) error {
	query := `SELECT f_geometry_column, srid, type FROM geometry_columns
		WHERE f_table_schema = $1 AND f_table_name = $2`
	args := []any{l.schema, l.table}
	if l.column != "" {
		query += " AND f_geometry_column = $3"
		args = append(args, l.column)
	}

	var geomType string
	row := l.db.QueryRowContext(ctx, query+" LIMIT 1", args...)
	if err := row.Scan(&l.column, &l.srid, &geomType); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%s has no registered geometry column", l.qualifiedName())
		}
		return fmt.Errorf("failed to read geometry_columns: %w", err)
	}
	switch strings.ToUpper(geomType) {
	case "POLYGON":
	case "MULTIPOLYGON":
		l.multi = true
	default:
		return fmt.Errorf("%s.%s holds %s, not polygons", l.qualifiedName(), l.column, geomType)
	}

	rows, err := l.db.QueryContext(ctx, `SELECT column_name, data_type FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2 AND column_name <> $3
		ORDER BY ordinal_position`, l.schema, l.table, l.column)
	if err != nil {
		return fmt.Errorf("failed to read columns: %w", err)
	}
	defer rows.Close()

	l.fields = nil
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return err
		}
		l.fields = append(l.fields, feature.Field{Name: name, Type: feature.ParseFieldType(dataType)})
	}
	return rows.Err()
}

func (l *PostGIS) qualifiedName() string {
	return pq.QuoteIdentifier(l.schema) + "." + pq.QuoteIdentifier(l.table)
}

func (l *PostGIS) Name() string                { return l.schema + "." + l.table }
func (l *PostGIS) Type() Type                  { return TypeVector }
func (l *PostGIS) GeometryType() geometry.Kind { return geometry.KindPolygon }
func (l *PostGIS) Fields() feature.Schema      { return l.fields }
func (l *PostGIS) CRS() crs.CRS                { return crs.CRS{Code: fmt.Sprintf("EPSG:%d", l.srid)} }

// Close releases the connection pool
func (l *PostGIS) Close() error { return l.db.Close() }

// insertStatement builds the INSERT for a feature. Attributes that are
// nil are left out so that column defaults apply.
func (l *PostGIS) insertStatement(f *feature.Feature) (string, []any) {
	geomExpr := "ST_GeomFromText($1, $2)"
	if l.multi {
		geomExpr = "ST_Multi(" + geomExpr + ")"
	}
	cols := []string{pq.QuoteIdentifier(l.column)}
	vals := []string{geomExpr}
	args := []any{f.Geometry().WKT(), l.srid}

	for i, field := range f.Fields() {
		v := f.Attributes()[i]
		if v == nil || l.fields.Index(field.Name) < 0 {
			continue
		}
		args = append(args, v)
		cols = append(cols, pq.QuoteIdentifier(field.Name))
		vals = append(vals, fmt.Sprintf("$%d", len(args)))
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		l.qualifiedName(), strings.Join(cols, ", "), strings.Join(vals, ", "))
	return stmt, args
}

// AddFeature implements Layer
func (l *PostGIS) AddFeature(f *feature.Feature) bool {
	if err := checkGeometry(f); err != nil {
		logger.L().Warn("postgis layer rejected feature", "table", l.Name(), "err", err)
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), postgisWriteTimeout)
	defer cancel()

	stmt, args := l.insertStatement(f)
	if _, err := l.db.ExecContext(ctx, stmt, args...); err != nil {
		logger.L().Error("postgis insert failed", "table", l.Name(), "err", err)
		return false
	}
	return true
}
