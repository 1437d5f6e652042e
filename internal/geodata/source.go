package geodata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	pgx "github.com/jackc/pgx/v5"
	"github.com/paulmach/orb/geojson"

	apperrors "github.com/rcesaret/new-caledonia-commune-locator/internal/errors"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

// Source supplies a complete region collection. Sources are tried in priority
// order on every refresh; the first success wins the cycle.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Region, error)
}

// FileSource reads a GeoJSON FeatureCollection from the local filesystem.
type FileSource struct {
	Path         string
	NameProperty string
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Fetch(ctx context.Context) ([]models.Region, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, apperrors.DatasetError{Source: s.Name(), Err: err}
	}
	regions, err := DecodeFeatureCollection(data, s.NameProperty)
	if err != nil {
		return nil, apperrors.DatasetError{Source: s.Name(), Err: err}
	}
	return regions, nil
}

// HTTPSource fetches a GeoJSON FeatureCollection from a remote URL with a
// bounded timeout.
type HTTPSource struct {
	URL          string
	NameProperty string
	Client       *http.Client
}

func NewHTTPSource(url, nameProperty string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:          url,
		NameProperty: nameProperty,
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) Fetch(ctx context.Context) ([]models.Region, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, apperrors.DatasetError{Source: s.Name(), Err: err}
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, apperrors.DatasetError{Source: s.Name(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.DatasetError{Source: s.Name(), Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, apperrors.DatasetError{Source: s.Name(), Err: err}
	}
	regions, err := DecodeFeatureCollection(data, s.NameProperty)
	if err != nil {
		return nil, apperrors.DatasetError{Source: s.Name(), Err: err}
	}
	return regions, nil
}

// RowQuerier is the slice of the pgx pool the Postgres source needs.
type RowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource loads regions from the communes table in insertion order.
type PostgresSource struct {
	DB RowQuerier
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Fetch(ctx context.Context) ([]models.Region, error) {
	rows, err := s.DB.Query(ctx, `SELECT name, geometry FROM communes ORDER BY position ASC`)
	if err != nil {
		return nil, apperrors.DatasetError{Source: s.Name(), Err: err}
	}
	defer rows.Close()

	var regions []models.Region
	for rows.Next() {
		var name string
		var raw []byte
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, apperrors.DatasetError{Source: s.Name(), Err: err}
		}
		geom, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, apperrors.DatasetError{Source: s.Name(), Err: fmt.Errorf("region %q: %w", name, err)}
		}
		mp, ok := toMultiPolygon(geom.Geometry())
		if !ok {
			return nil, apperrors.DatasetError{Source: s.Name(), Err: fmt.Errorf("region %q: not a polygon", name)}
		}
		regions = append(regions, models.Region{
			Name:     name,
			Geometry: mp,
			Index:    len(regions),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatasetError{Source: s.Name(), Err: err}
	}
	return regions, nil
}
