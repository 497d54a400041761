// Package history persists where searches happen. Locations are stored
// with reduced precision; only the search log lives on disk, never the
// station data itself.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	decimalBase = 10
	// Two decimal places is roughly a 1km bucket, enough to group a
	// neighborhood without storing precise user positions.
	defaultPrecisionDecimalPlaces = 2

	defaultCacheSize = -1024 * 1024 // negative value for pages
	defaultPageSize  = 4096
)

// Storage is the sqlite-backed search log.
type Storage struct {
	db  *sql.DB
	log *slog.Logger
}

func NewStorage(ctx context.Context, dbPath string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := configureSQLitePragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := createSearchLogTable(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating search_log table: %w", err)
	}

	return &Storage{db: db, log: logger}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func createSearchLogTable(ctx context.Context, db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS search_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		search_count INTEGER NOT NULL DEFAULT 1,
		first_search TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_search TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_search_log_coordinates ON search_log (latitude, longitude);
	`

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}
	return nil
}

func configureSQLitePragmas(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 10000;"); err != nil {
		return fmt.Errorf("error setting busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("error setting journal mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		return fmt.Errorf("error setting synchronous: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA cache_size = %d;", defaultCacheSize)); err != nil {
		return fmt.Errorf("error setting cache size: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA page_size = %d;", defaultPageSize)); err != nil {
		return fmt.Errorf("error setting page size: %w", err)
	}
	return nil
}

// LogSearch records a search at the given coordinate, bumping the count
// when the same reduced-precision location was searched before.
func (s *Storage) LogSearch(ctx context.Context, latitude, longitude float64) error {
	lat, lng := reduceLocationPrecision(latitude, longitude, defaultPrecisionDecimalPlaces)

	var id int64
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, search_count FROM search_log
		WHERE latitude = ? AND longitude = ?
		LIMIT 1
	`, lat, lng).Scan(&id, &count)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("error checking for existing location: %w", err)
	}

	if err == sql.ErrNoRows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO search_log (latitude, longitude)
			VALUES (?, ?)
		`, lat, lng)
		if err != nil {
			return fmt.Errorf("error logging search location: %w", err)
		}
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE search_log
		SET search_count = search_count + 1, last_search = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("error updating search location: %w", err)
	}
	return nil
}

// SearchLog represents a row in the search_log table.
type SearchLog struct {
	ID          int64
	Latitude    float64
	Longitude   float64
	SearchCount int64
	FirstSearch time.Time
	LastSearch  time.Time
}

// RecentSearches returns logged locations, most searched first.
// limit 0 returns all.
func (s *Storage) RecentSearches(ctx context.Context, limit int) ([]SearchLog, error) {
	query := `SELECT id, latitude, longitude, search_count, first_search, last_search
			  FROM search_log
			  ORDER BY search_count DESC `
	if limit > 0 {
		query += fmt.Sprintf("LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving search log: %w", err)
	}
	defer rows.Close()

	var logs []SearchLog
	for rows.Next() {
		var entry SearchLog
		if err := rows.Scan(
			&entry.ID,
			&entry.Latitude,
			&entry.Longitude,
			&entry.SearchCount,
			&entry.FirstSearch,
			&entry.LastSearch,
		); err != nil {
			return nil, fmt.Errorf("error scanning search log: %w", err)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}

	return logs, nil
}

// PopularLocation is a clustered area of searches with its popularity.
type PopularLocation struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lng"`
	SearchCount int64   `json:"weight"`
}

// Approximately 1km in degrees.
const clusterDistance = 0.01

// PopularLocations clusters logged searches into popular areas, most
// searched first.
func (s *Storage) PopularLocations(ctx context.Context, limit int) ([]PopularLocation, error) {
	logs, err := s.RecentSearches(ctx, 0)
	if err != nil {
		return nil, err
	}

	processed := make(map[int64]bool)
	var popular []PopularLocation

	for i, entry := range logs {
		if processed[entry.ID] {
			continue
		}
		processed[entry.ID] = true

		cluster := PopularLocation{
			Latitude:    entry.Latitude,
			Longitude:   entry.Longitude,
			SearchCount: entry.SearchCount,
		}

		for j, other := range logs {
			if i == j || processed[other.ID] {
				continue
			}
			distance := math.Hypot(entry.Latitude-other.Latitude, entry.Longitude-other.Longitude)
			if distance > clusterDistance {
				continue
			}
			processed[other.ID] = true

			// Weighted average keeps the cluster centered on searches.
			total := cluster.SearchCount + other.SearchCount
			cluster.Latitude = (cluster.Latitude*float64(cluster.SearchCount) +
				other.Latitude*float64(other.SearchCount)) / float64(total)
			cluster.Longitude = (cluster.Longitude*float64(cluster.SearchCount) +
				other.Longitude*float64(other.SearchCount)) / float64(total)
			cluster.SearchCount = total
		}

		popular = append(popular, cluster)
	}

	sort.Slice(popular, func(i, j int) bool {
		return popular[i].SearchCount > popular[j].SearchCount
	})

	if limit > 0 && len(popular) > limit {
		popular = popular[:limit]
	}
	return popular, nil
}

func reduceLocationPrecision(lat, lng float64, decimalPlaces int) (roundedLat, roundedLng float64) {
	factor := math.Pow(decimalBase, float64(decimalPlaces))
	roundedLat = math.Round(lat*factor) / factor
	roundedLng = math.Round(lng*factor) / factor
	return
}
